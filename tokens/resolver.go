package tokens

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/daccred/txlens.attest.so/models"
)

// ErrNotFound means the source has no metadata for the contract. Callers
// treat it as absence, not failure.
var ErrNotFound = errors.New("token metadata not found")

// Source fetches token metadata from wherever it lives (metadata API,
// on-chain reader). Must be idempotent; results are cacheable indefinitely
// within a session.
type Source interface {
	FetchToken(ctx context.Context, contractID, network string) (models.TokenMetadata, error)
}

// Store is an optional persistent cache sitting between the in-memory cache
// and the source.
type Store interface {
	GetToken(ctx context.Context, contractID, network string) (models.TokenMetadata, error)
	PutToken(ctx context.Context, meta models.TokenMetadata) error
}

// Resolver answers token-metadata lookups keyed by (contract id, network).
// Lookups already held or in flight are never re-dispatched; distinct
// contract ids resolve concurrently. At-least-once request semantics are
// fine since lookups are pure.
type Resolver struct {
	source  Source
	store   Store
	network string
	logger  *logrus.Entry

	mu    sync.RWMutex
	cache map[string]models.TokenMetadata

	group singleflight.Group
}

func NewResolver(source Source, store Store, network string, logger *logrus.Entry) *Resolver {
	return &Resolver{
		source:  source,
		store:   store,
		network: network,
		logger:  logger,
		cache:   make(map[string]models.TokenMetadata),
	}
}

func (r *Resolver) key(contractID string) string {
	return contractID + "|" + r.network
}

// Cached returns locally held metadata without ever blocking.
func (r *Resolver) Cached(contractID string) (models.TokenMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.cache[r.key(contractID)]
	return meta, ok
}

// Resolve fetches metadata for every given contract id, deduplicating
// against the cache and in-flight requests. Failures are logged and omitted
// from the result; a reconstruction must degrade, not abort, when metadata
// is unavailable.
func (r *Resolver) Resolve(ctx context.Context, contractIDs []string) map[string]models.TokenMetadata {
	out := make(map[string]models.TokenMetadata, len(contractIDs))
	var outMu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range contractIDs {
		if meta, ok := r.Cached(id); ok {
			out[id] = meta
			continue
		}
		wg.Add(1)
		go func(contractID string) {
			defer wg.Done()
			meta, err := r.resolveOne(ctx, contractID)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					r.logger.WithError(err).WithField("contract", contractID).Debug("token lookup failed")
				}
				return
			}
			outMu.Lock()
			out[contractID] = meta
			outMu.Unlock()
		}(id)
	}
	wg.Wait()
	return out
}

func (r *Resolver) resolveOne(ctx context.Context, contractID string) (models.TokenMetadata, error) {
	v, err, _ := r.group.Do(r.key(contractID), func() (any, error) {
		if meta, ok := r.Cached(contractID); ok {
			return meta, nil
		}
		meta, err := r.lookup(ctx, contractID)
		if err != nil {
			return models.TokenMetadata{}, err
		}
		r.mu.Lock()
		r.cache[r.key(contractID)] = meta
		r.mu.Unlock()
		return meta, nil
	})
	if err != nil {
		return models.TokenMetadata{}, err
	}
	return v.(models.TokenMetadata), nil
}

func (r *Resolver) lookup(ctx context.Context, contractID string) (models.TokenMetadata, error) {
	if r.store != nil {
		meta, err := r.store.GetToken(ctx, contractID, r.network)
		if err == nil {
			return meta, nil
		}
		if !errors.Is(err, ErrNotFound) {
			r.logger.WithError(err).WithField("contract", contractID).Debug("token store read failed")
		}
	}
	if r.source == nil {
		return models.TokenMetadata{}, ErrNotFound
	}
	meta, err := r.source.FetchToken(ctx, contractID, r.network)
	if err != nil {
		return models.TokenMetadata{}, err
	}
	meta.Contract = contractID
	meta.Network = r.network
	meta.UpdatedAt = time.Now().UTC()
	if r.store != nil {
		if err := r.store.PutToken(ctx, meta); err != nil {
			r.logger.WithError(err).WithField("contract", contractID).Warn("failed to persist token metadata")
		}
	}
	return meta, nil
}

// CacheSize reports how many (contract, network) entries are held.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
