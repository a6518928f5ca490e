package lens

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/daccred/txlens.attest.so/models"
)

// placeholderCode is the sentinel the converted-event layer emits when it
// could not name a token. It only wins as the very last resolution tier.
const placeholderCode = "TOKEN"

// TokenLookup provides already-resolved token metadata. Lookups must be
// cheap and local; the classifier never blocks on the network.
type TokenLookup interface {
	Lookup(contractID string) (models.TokenMetadata, bool)
}

// OpContext carries what the classifier may use from the operation that is
// being matched when an effect record is incomplete.
type OpContext struct {
	SourceAccount string
}

// Classifier normalizes raw effects into the canonical categories and
// resolves an asset identity for each. One instance covers one logical
// classification pass: results are memoized per stream index and logically
// identical effects are recorded once.
type Classifier struct {
	tokens  TokenLookup
	logger  *logrus.Entry
	seen    map[dedupKey]struct{}
	memo    map[int]*models.ClassifiedEffect
	missing map[string]struct{}
}

type dedupKey struct {
	account  string
	code     string
	amount   string
	category models.Category
}

func NewClassifier(tokens TokenLookup, logger *logrus.Entry) *Classifier {
	return &Classifier{
		tokens:  tokens,
		logger:  logger,
		seen:    make(map[dedupKey]struct{}),
		memo:    make(map[int]*models.ClassifiedEffect),
		missing: make(map[string]struct{}),
	}
}

// Classify canonicalizes one raw effect. Returns nil for kinds outside the
// balance-change taxonomy, for unrecognized kinds, and for duplicates of an
// effect already recorded in this pass. Never returns an error: a record we
// cannot read is a record we skip.
func (c *Classifier) Classify(effect models.RawEffect, index int, op OpContext) *models.ClassifiedEffect {
	if cached, done := c.memo[index]; done {
		return cached
	}
	result := c.classify(effect, index, op)
	if result != nil {
		key := dedupKey{result.AccountID, result.Asset.Code, result.Amount, result.Category}
		if _, dup := c.seen[key]; dup {
			c.logger.WithFields(logrus.Fields{
				"index":    index,
				"category": result.Category,
				"code":     result.Asset.Code,
			}).Debug("dropping duplicate effect")
			result = nil
		} else {
			c.seen[key] = struct{}{}
		}
	}
	c.memo[index] = result
	return result
}

func (c *Classifier) classify(effect models.RawEffect, index int, op OpContext) *models.ClassifiedEffect {
	source := models.SourceClassic
	if strings.HasPrefix(effect.Kind, "contract_") {
		source = models.SourceSoroban
	}

	var category models.Category
	account := effect.Account
	amount := effect.Amount
	asset := c.resolveEffectAsset(effect)

	switch effect.Kind {
	case "account_created":
		category = models.CategoryCredited
		amount = effect.StartingBalance
		asset = models.AssetIdentity{IsNative: true, Code: "XLM"}
	case "account_credited", "contract_credited":
		category = models.CategoryCredited
	case "account_debited", "contract_debited":
		category = models.CategoryDebited
	case "contract_mint":
		category = models.CategoryMinted
	case "contract_burn", "contract_clawback":
		category = models.CategoryBurned
	case "contract_transfer":
		// Converted transfer events carry from/to; the owning side decides
		// the direction. With no account at all, attribute the debit to the
		// operation source.
		switch {
		case account != "" && account == effect.To:
			category = models.CategoryCredited
		case account != "" && account == effect.From:
			category = models.CategoryDebited
		case account == "" && effect.To != "":
			category = models.CategoryCredited
			account = effect.To
		case account == "" && op.SourceAccount != "":
			category = models.CategoryDebited
			account = op.SourceAccount
		default:
			return nil
		}
	case "trade":
		category = models.CategoryTrade
		amount = effect.SoldAmount
		asset = c.resolveAsset(effect.SoldAssetType, effect.SoldAssetCode, effect.SoldAssetIssuer, "", effect.Contract)
	case "liquidity_pool_trade":
		category = models.CategoryPoolTrade
		amount = effect.SoldAmount
		asset = c.resolveAsset(effect.SoldAssetType, effect.SoldAssetCode, effect.SoldAssetIssuer, "", effect.Contract)
	case "liquidity_pool_deposited", "liquidity_pool_withdrew",
		"liquidity_pool_created", "liquidity_pool_removed":
		category = models.CategoryPoolUpdated
	case "offer_created", "offer_updated", "offer_removed":
		category = models.CategoryOfferUpdated
	default:
		// Trustline, signer, data, sponsorship and claim markers carry no
		// balance semantics; unknown kinds degrade to nothing.
		return nil
	}

	if account == "" {
		account = op.SourceAccount
	}

	// Self-issuance: an issuer moving its own asset is economically a mint.
	if category == models.CategoryDebited && !asset.IsNative &&
		account != "" && account == asset.IssuerOrContract {
		category = models.CategoryMinted
	}

	return &models.ClassifiedEffect{
		Category:      category,
		AccountID:     account,
		Asset:         asset,
		Amount:        amount,
		SourceKind:    source,
		OriginalIndex: index,
	}
}

func (c *Classifier) resolveEffectAsset(effect models.RawEffect) models.AssetIdentity {
	return c.resolveAsset(effect.AssetType, effect.AssetCode, effect.AssetIssuer, effect.Asset, effect.Contract)
}

// resolveAsset walks the resolution ladder; the first tier that produces a
// code wins.
func (c *Classifier) resolveAsset(assetType, code, issuer, composite, contract string) models.AssetIdentity {
	if assetType == "native" || composite == "native" || (code == "XLM" && issuer == "" && contract == "") {
		return models.AssetIdentity{IsNative: true, Code: "XLM"}
	}
	if contract != "" {
		if c.tokens != nil {
			if meta, ok := c.tokens.Lookup(contract); ok && meta.Symbol != "" {
				return models.AssetIdentity{Code: meta.Symbol, IssuerOrContract: contract}
			}
		}
		c.missing[contract] = struct{}{}
	}
	if code != "" && code != placeholderCode {
		ref := issuer
		if ref == "" {
			ref = contract
		}
		return models.AssetIdentity{Code: code, IssuerOrContract: ref}
	}
	if parsedCode, parsedIssuer, ok := splitAssetString(composite); ok {
		return models.AssetIdentity{Code: parsedCode, IssuerOrContract: parsedIssuer}
	}
	if contract != "" {
		return models.AssetIdentity{Code: abbreviateContract(contract), IssuerOrContract: contract}
	}
	if code != "" {
		return models.AssetIdentity{Code: code, IssuerOrContract: issuer}
	}
	return models.AssetIdentity{Code: placeholderCode}
}

// MissingContracts lists contract ids the pass could not resolve locally,
// sorted for deterministic lookup dispatch.
func (c *Classifier) MissingContracts() []string {
	out := make([]string, 0, len(c.missing))
	for id := range c.missing {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Classified returns every memoized non-nil effect in stream order.
func (c *Classifier) Classified(total int) []models.ClassifiedEffect {
	out := make([]models.ClassifiedEffect, 0, len(c.memo))
	for i := 0; i < total; i++ {
		if eff, done := c.memo[i]; done && eff != nil {
			out = append(out, *eff)
		}
	}
	return out
}

// FilterBalanceChanges keeps only effects that represent an actual balance
// movement: the four flow categories, a named asset, and a nonzero numeric
// amount.
func FilterBalanceChanges(effects []models.ClassifiedEffect) []models.ClassifiedEffect {
	out := make([]models.ClassifiedEffect, 0, len(effects))
	for _, eff := range effects {
		switch eff.Category {
		case models.CategoryCredited, models.CategoryDebited, models.CategoryMinted, models.CategoryBurned:
		default:
			continue
		}
		if eff.Asset.Code == "" || eff.Asset.Code == placeholderCode {
			continue
		}
		amount, ok := ParseAmount(eff.Amount)
		if !ok || amount.IsZero() {
			continue
		}
		out = append(out, eff)
	}
	return out
}

func splitAssetString(s string) (code, issuer string, ok bool) {
	if s == "" || s == "native" {
		return "", "", false
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func abbreviateContract(contract string) string {
	if len(contract) <= 9 {
		return contract
	}
	return contract[:4] + "…" + contract[len(contract)-4:]
}
