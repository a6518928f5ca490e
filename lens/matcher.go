package lens

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/daccred/txlens.attest.so/models"
)

// pathPaymentLookahead bounds the forward scan for a path payment's closing
// credit so adversarial effect streams cannot force unbounded work.
const pathPaymentLookahead = 100

// Matcher assigns effects to the operation that caused them. One forward-only
// cursor is shared across all operations; effects are never revisited or
// reordered, and each effect is claimed by at most one operation.
type Matcher struct {
	classifier *Classifier
	logger     *logrus.Entry
}

func NewMatcher(classifier *Classifier, logger *logrus.Entry) *Matcher {
	return &Matcher{classifier: classifier, logger: logger}
}

// Match walks the operations in order, letting each claim a contiguous run
// of upcoming effects via its kind-specific predicate set. An operation whose
// pattern matches nothing receives an empty list; the matcher is approximate
// by design and that is not an error.
func (m *Matcher) Match(ops []models.RawOperation, effects []models.RawEffect) map[int][]models.ClassifiedEffect {
	result := make(map[int][]models.ClassifiedEffect, len(ops))
	cursor := 0
	for i, op := range ops {
		var claimed []int
		claimed, cursor = m.claim(op, effects, cursor)
		list := make([]models.ClassifiedEffect, 0, len(claimed))
		for _, idx := range claimed {
			if eff := m.classifier.Classify(effects[idx], idx, OpContext{SourceAccount: op.Source()}); eff != nil {
				list = append(list, *eff)
			}
		}
		result[i] = list
	}
	return result
}

// claim returns the indexes the operation owns and the advanced cursor. The
// cursor never moves backwards.
func (m *Matcher) claim(op models.RawOperation, effects []models.RawEffect, cursor int) ([]int, int) {
	switch op.Kind {
	case "payment":
		return m.claimPayment(op, effects, cursor)
	case "path_payment_strict_send", "path_payment_strict_receive":
		return m.claimPathPayment(op, effects, cursor)
	case "create_account":
		return m.claimCreateAccount(op, effects, cursor)
	case "change_trust":
		return m.claimChangeTrust(op, effects, cursor)
	case "claim_claimable_balance":
		return m.claimClaimableBalance(op, effects, cursor)
	case "manage_data":
		return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
			switch eff.Kind {
			case "data_created", "data_updated", "data_removed":
				return eff.Account == op.Source()
			}
			return false
		})
	case "manage_sell_offer", "manage_buy_offer", "create_passive_sell_offer":
		return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
			switch eff.Kind {
			case "trade", "offer_created", "offer_updated", "offer_removed":
				return true
			}
			return false
		})
	case "set_options":
		return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
			switch eff.Kind {
			case "signer_created", "signer_updated", "signer_removed",
				"account_flags_updated", "account_home_domain_updated", "account_thresholds_updated":
				return eff.Account == op.Source()
			}
			return false
		})
	case "account_merge":
		return m.claimAccountMerge(op, effects, cursor)
	case "invoke_host_function":
		return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
			return strings.HasPrefix(eff.Kind, "contract_")
		})
	default:
		return nil, cursor
	}
}

// claimRun claims effects while the predicate accepts the next one; matching
// stops the first time the upcoming effect fails, which bounds an operation's
// effect set to a contiguous run.
func claimRun(effects []models.RawEffect, cursor int, pred func(claimedSoFar int, eff models.RawEffect) bool) ([]int, int) {
	var claimed []int
	for cursor < len(effects) && pred(len(claimed), effects[cursor]) {
		claimed = append(claimed, cursor)
		cursor++
	}
	return claimed, cursor
}

func (m *Matcher) claimPayment(op models.RawOperation, effects []models.RawEffect, cursor int) ([]int, int) {
	src := op.Source()
	dest := paymentDestination(op)
	return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
		switch k {
		case 0:
			return isDebitKind(eff.Kind) && eff.Account == src &&
				assetMatches(eff, op.AssetType, op.AssetCode, op.AssetIssuer) &&
				(op.Amount == "" || amountsEqual(eff.Amount, op.Amount))
		case 1:
			return isCreditKind(eff.Kind) && eff.Account == dest &&
				assetMatches(eff, op.AssetType, op.AssetCode, op.AssetIssuer) &&
				(op.Amount == "" || amountsEqual(eff.Amount, op.Amount))
		}
		return false
	})
}

// claimPathPayment claims the debit of the source asset, then scans forward
// past trading effects until it finds any credit to the destination. The
// credit is accepted without asset verification; that matches the upstream
// behaviour and can misattribute in multi-asset scenarios, so a mismatch is
// logged for observability but still claimed.
func (m *Matcher) claimPathPayment(op models.RawOperation, effects []models.RawEffect, cursor int) ([]int, int) {
	if cursor >= len(effects) {
		return nil, cursor
	}
	src := op.Source()
	dest := paymentDestination(op)
	first := effects[cursor]
	if !(isDebitKind(first.Kind) && first.Account == src &&
		assetMatches(first, op.SourceAssetType, op.SourceAssetCode, op.SourceAssetIssuer)) {
		return nil, cursor
	}
	claimed := []int{cursor}
	limit := cursor + 1 + pathPaymentLookahead
	for scan := cursor + 1; scan < len(effects) && scan < limit; scan++ {
		eff := effects[scan]
		if isCreditKind(eff.Kind) && eff.Account == dest {
			if !assetMatches(eff, op.AssetType, op.AssetCode, op.AssetIssuer) {
				m.logger.WithFields(logrus.Fields{
					"destination": dest,
					"asset_code":  eff.AssetCode,
				}).Debug("path payment credit asset differs from operation asset")
			}
			return append(claimed, scan), scan + 1
		}
		if !isTradingKind(eff.Kind) {
			break
		}
	}
	return claimed, cursor + 1
}

func (m *Matcher) claimCreateAccount(op models.RawOperation, effects []models.RawEffect, cursor int) ([]int, int) {
	dest := op.Account
	if dest == "" {
		dest = op.Destination
	}
	funder := op.Funder
	if funder == "" {
		funder = op.SourceAccount
	}
	return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
		switch eff.Kind {
		case "account_created":
			return eff.Account == dest
		case "account_debited":
			return eff.Account == funder && isNativeEffect(eff) &&
				(op.StartingBalance == "" || amountsEqual(eff.Amount, op.StartingBalance))
		case "signer_created":
			return eff.Account == dest
		}
		return false
	})
}

// claimChangeTrust derives the expected trustline effect kind from the
// operation's limit: zero means removal, anything else creation or update.
func (m *Matcher) claimChangeTrust(op models.RawOperation, effects []models.RawEffect, cursor int) ([]int, int) {
	removing := false
	if limit, ok := ParseAmount(op.Limit); ok && limit.IsZero() {
		removing = true
	}
	return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
		if eff.Account != op.Source() {
			return false
		}
		if removing {
			return eff.Kind == "trustline_removed"
		}
		return eff.Kind == "trustline_created" || eff.Kind == "trustline_updated"
	})
}

// claimClaimableBalance expects the ordered triple: the claim marker, the
// first subsequent credit to the claimant, and an optional sponsorship
// removal.
func (m *Matcher) claimClaimableBalance(op models.RawOperation, effects []models.RawEffect, cursor int) ([]int, int) {
	src := op.Source()
	return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
		switch k {
		case 0:
			return eff.Kind == "claimable_balance_claimed" &&
				(op.BalanceID == "" || eff.BalanceID == op.BalanceID)
		case 1:
			return isCreditKind(eff.Kind) && eff.Account == src
		case 2:
			return eff.Kind == "claimable_balance_sponsorship_removed"
		}
		return false
	})
}

func (m *Matcher) claimAccountMerge(op models.RawOperation, effects []models.RawEffect, cursor int) ([]int, int) {
	src := op.Source()
	dest := paymentDestination(op)
	return claimRun(effects, cursor, func(k int, eff models.RawEffect) bool {
		switch k {
		case 0:
			return eff.Kind == "account_debited" && eff.Account == src && isNativeEffect(eff)
		case 1:
			return eff.Kind == "account_credited" && eff.Account == dest && isNativeEffect(eff)
		case 2:
			return eff.Kind == "account_removed" && eff.Account == src
		}
		return false
	})
}

func paymentDestination(op models.RawOperation) string {
	if op.To != "" {
		return op.To
	}
	return op.Destination
}

func isDebitKind(kind string) bool {
	return kind == "account_debited" || kind == "contract_debited"
}

func isCreditKind(kind string) bool {
	return kind == "account_credited" || kind == "contract_credited"
}

func isTradingKind(kind string) bool {
	switch kind {
	case "trade", "liquidity_pool_trade", "offer_created", "offer_updated", "offer_removed":
		return true
	}
	return false
}

func isNativeEffect(eff models.RawEffect) bool {
	return eff.AssetType == "native" || eff.Asset == "native" ||
		(eff.AssetType == "" && eff.AssetCode == "" && eff.Asset == "")
}

// assetMatches compares an effect's asset descriptors to an operation's.
// Empty operation descriptors match anything: partial records should not
// block a claim.
func assetMatches(eff models.RawEffect, assetType, code, issuer string) bool {
	if assetType == "" && code == "" {
		return true
	}
	if assetType == "native" {
		return isNativeEffect(eff)
	}
	if code != "" && eff.AssetCode != code {
		return false
	}
	if issuer != "" && eff.AssetIssuer != "" && eff.AssetIssuer != issuer {
		return false
	}
	return true
}
