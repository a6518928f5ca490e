package lens

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/daccred/txlens.attest.so/models"
)

// Resolver is the asynchronous token-metadata capability the classifier's
// asset resolution leans on. Cached must be local and non-blocking; Resolve
// may hit the network and returns whatever it could find, never an error:
// a failed lookup is simply metadata absent.
type Resolver interface {
	Cached(contractID string) (models.TokenMetadata, bool)
	Resolve(ctx context.Context, contractIDs []string) map[string]models.TokenMetadata
}

// Input is everything one transaction's reconstruction consumes. All slices
// are read-only and already ordered by the supplying layer.
type Input struct {
	Operations []models.RawOperation `json:"operations"`
	Effects    []models.RawEffect    `json:"effects"`
	Events     []models.RawEvent     `json:"events"`
	Invoker    string                `json:"invoker,omitempty"`
}

type Result struct {
	OperationEffects map[int][]models.ClassifiedEffect `json:"operation_effects"`
	BalanceChanges   []models.ClassifiedEffect         `json:"balance_changes"`
	Deltas           []models.BalanceDelta             `json:"deltas"`
	Invocations      []*models.Invocation              `json:"invocations"`
}

// Engine runs one reconstruction: a synchronous classify/match/aggregate
// pass plus the call-tree build. The only asynchronous boundary is token
// metadata: a first pass uses locally resolvable information, and if that
// left contract ids unresolved and the resolver can supply them, the
// identical pipeline is replayed over the same raw inputs. Already-produced
// results are never patched in place.
type Engine struct {
	resolver Resolver
	logger   *logrus.Entry
}

func NewEngine(resolver Resolver, logger *logrus.Entry) *Engine {
	return &Engine{resolver: resolver, logger: logger}
}

func (e *Engine) Reconstruct(ctx context.Context, in Input) Result {
	result, missing := e.runPass(in)
	if len(missing) > 0 && e.resolver != nil && ctx.Err() == nil {
		resolved := e.resolver.Resolve(ctx, missing)
		if len(resolved) > 0 {
			e.logger.WithFields(logrus.Fields{
				"missing":  len(missing),
				"resolved": len(resolved),
			}).Debug("replaying reconstruction with resolved token metadata")
			result, _ = e.runPass(in)
		}
	}
	return result
}

func (e *Engine) runPass(in Input) (Result, []string) {
	classifier := NewClassifier(cachedLookup{e.resolver}, e.logger)
	matcher := NewMatcher(classifier, e.logger)

	opEffects := matcher.Match(in.Operations, in.Effects)

	// Classify whatever no predicate probed so the filter stage and the
	// aggregator see the whole stream.
	for i, eff := range in.Effects {
		classifier.Classify(eff, i, OpContext{})
	}
	balanceChanges := FilterBalanceChanges(classifier.Classified(len(in.Effects)))

	result := Result{
		OperationEffects: opEffects,
		BalanceChanges:   balanceChanges,
		Deltas:           Aggregate(balanceChanges),
		Invocations:      NewCallTreeBuilder(e.logger).Build(in.Events, in.Invoker),
	}
	return result, classifier.MissingContracts()
}

// cachedLookup exposes only the resolver's local cache to the classifier.
type cachedLookup struct {
	resolver Resolver
}

func (l cachedLookup) Lookup(contractID string) (models.TokenMetadata, bool) {
	if l.resolver == nil {
		return models.TokenMetadata{}, false
	}
	return l.resolver.Cached(contractID)
}
