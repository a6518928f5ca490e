package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daccred/txlens.attest.so/models"
)

func newTestMatcher() *Matcher {
	return NewMatcher(NewClassifier(nil, testLogger()), testLogger())
}

func TestMatchPaymentPair(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{
		Kind:          "payment",
		SourceAccount: "GSRC",
		To:            "GDST",
		Amount:        "10",
		AssetType:     "native",
	}}
	effects := []models.RawEffect{
		{Kind: "account_debited", Account: "GSRC", Amount: "10", AssetType: "native"},
		{Kind: "account_credited", Account: "GDST", Amount: "10", AssetType: "native"},
	}

	got := m.Match(ops, effects)
	require.Len(t, got[0], 2)
	assert.Equal(t, models.CategoryDebited, got[0][0].Category)
	assert.Equal(t, models.CategoryCredited, got[0][1].Category)
	assert.Equal(t, 0, got[0][0].OriginalIndex)
	assert.Equal(t, 1, got[0][1].OriginalIndex)
}

func TestMatchPaymentRejectsWrongAmount(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{
		Kind:          "payment",
		SourceAccount: "GSRC",
		To:            "GDST",
		Amount:        "10",
		AssetType:     "native",
	}}
	effects := []models.RawEffect{
		{Kind: "account_debited", Account: "GSRC", Amount: "99", AssetType: "native"},
	}

	got := m.Match(ops, effects)
	assert.Empty(t, got[0])
}

// Claims never overlap and never look backwards: two payments over a shared
// stream each take their own pair.
func TestMatchClaimsAreDisjointAndMonotonic(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{
		{Kind: "payment", SourceAccount: "GA", To: "GB", Amount: "1", AssetType: "native"},
		{Kind: "payment", SourceAccount: "GB", To: "GC", Amount: "2", AssetType: "native"},
	}
	effects := []models.RawEffect{
		{Kind: "account_debited", Account: "GA", Amount: "1", AssetType: "native"},
		{Kind: "account_credited", Account: "GB", Amount: "1", AssetType: "native"},
		{Kind: "account_debited", Account: "GB", Amount: "2", AssetType: "native"},
		{Kind: "account_credited", Account: "GC", Amount: "2", AssetType: "native"},
	}

	got := m.Match(ops, effects)
	require.Len(t, got[0], 2)
	require.Len(t, got[1], 2)

	seen := make(map[int]bool)
	last := -1
	for op := 0; op < 2; op++ {
		for _, eff := range got[op] {
			assert.False(t, seen[eff.OriginalIndex], "effect claimed twice")
			seen[eff.OriginalIndex] = true
			assert.Greater(t, eff.OriginalIndex, last, "cursor moved backwards")
			last = eff.OriginalIndex
		}
	}
}

func TestMatchUnknownOperationClaimsNothing(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{
		{Kind: "bump_sequence", SourceAccount: "GA"},
		{Kind: "payment", SourceAccount: "GA", To: "GB", Amount: "1", AssetType: "native"},
	}
	effects := []models.RawEffect{
		{Kind: "account_debited", Account: "GA", Amount: "1", AssetType: "native"},
		{Kind: "account_credited", Account: "GB", Amount: "1", AssetType: "native"},
	}

	got := m.Match(ops, effects)
	assert.Empty(t, got[0])
	// The unknown op left the cursor alone, so the payment still claims.
	require.Len(t, got[1], 2)
}

func TestMatchPathPaymentScansPastTrades(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{
		Kind:            "path_payment_strict_send",
		SourceAccount:   "GSRC",
		To:              "GDST",
		SourceAssetType: "native",
		AssetCode:       "USDC",
		AssetIssuer:     "GISS",
	}}
	effects := []models.RawEffect{
		{Kind: "account_debited", Account: "GSRC", Amount: "10", AssetType: "native"},
		{Kind: "trade", Account: "GMM1", SoldAmount: "10", SoldAssetType: "native"},
		{Kind: "trade", Account: "GMM2", SoldAmount: "9", SoldAssetCode: "AQUA", SoldAssetIssuer: "GAQUA"},
		{Kind: "account_credited", Account: "GDST", Amount: "8", AssetCode: "USDC", AssetIssuer: "GISS"},
	}

	got := m.Match(ops, effects)
	require.Len(t, got[0], 2)
	assert.Equal(t, 0, got[0][0].OriginalIndex)
	assert.Equal(t, 3, got[0][1].OriginalIndex)
	assert.Equal(t, models.CategoryDebited, got[0][0].Category)
	assert.Equal(t, models.CategoryCredited, got[0][1].Category)
}

func TestMatchPathPaymentScanStopsAtNonTradingEffect(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{
		Kind:            "path_payment_strict_receive",
		SourceAccount:   "GSRC",
		To:              "GDST",
		SourceAssetType: "native",
	}}
	effects := []models.RawEffect{
		{Kind: "account_debited", Account: "GSRC", Amount: "10", AssetType: "native"},
		{Kind: "trustline_created", Account: "GOTHER"},
		{Kind: "account_credited", Account: "GDST", Amount: "8", AssetCode: "USDC", AssetIssuer: "GISS"},
	}

	got := m.Match(ops, effects)
	// Only the debit: the scan aborted at the unrelated effect.
	require.Len(t, got[0], 1)
	assert.Equal(t, 0, got[0][0].OriginalIndex)
}

func TestMatchPathPaymentLookaheadIsBounded(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{
		Kind:            "path_payment_strict_send",
		SourceAccount:   "GSRC",
		To:              "GDST",
		SourceAssetType: "native",
	}}

	effects := []models.RawEffect{
		{Kind: "account_debited", Account: "GSRC", Amount: "10", AssetType: "native"},
	}
	for i := 0; i < pathPaymentLookahead+5; i++ {
		effects = append(effects, models.RawEffect{Kind: "trade", SoldAmount: "1", SoldAssetType: "native"})
	}
	effects = append(effects, models.RawEffect{Kind: "account_credited", Account: "GDST", Amount: "8", AssetType: "native"})

	got := m.Match(ops, effects)
	// The credit sits past the scan window, so only the debit is claimed.
	require.Len(t, got[0], 1)
	assert.Equal(t, 0, got[0][0].OriginalIndex)
}

func TestMatchCreateAccount(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{
		Kind:            "create_account",
		SourceAccount:   "GFUNDER",
		Account:         "GNEW",
		StartingBalance: "100",
	}}
	effects := []models.RawEffect{
		{Kind: "account_created", Account: "GNEW", StartingBalance: "100"},
		{Kind: "account_debited", Account: "GFUNDER", Amount: "100", AssetType: "native"},
		{Kind: "signer_created", Account: "GNEW"},
	}

	got := m.Match(ops, effects)
	// signer_created carries no balance semantics, so two classified effects
	// survive from the three claimed records.
	require.Len(t, got[0], 2)
	assert.Equal(t, models.CategoryCredited, got[0][0].Category)
	assert.Equal(t, "100", got[0][0].Amount)
	assert.Equal(t, models.CategoryDebited, got[0][1].Category)
}

func TestMatchChangeTrust(t *testing.T) {
	tests := []struct {
		name   string
		limit  string
		effect string
		want   bool
	}{
		{"create claims trustline_created", "922337203685.4775807", "trustline_created", true},
		{"update claims trustline_updated", "500", "trustline_updated", true},
		{"zero limit claims trustline_removed", "0", "trustline_removed", true},
		{"zero limit rejects trustline_created", "0", "trustline_created", false},
		{"nonzero limit rejects trustline_removed", "500", "trustline_removed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Trustline markers classify to nothing, so observe the claim via
			// the shared cursor: a trailing payment only lines up with its
			// pair if the marker was consumed.
			m := newTestMatcher()
			ops := []models.RawOperation{
				{Kind: "change_trust", SourceAccount: "GA", Limit: tt.limit},
				{Kind: "payment", SourceAccount: "GX", To: "GY", AssetType: "native"},
			}
			effects := []models.RawEffect{
				{Kind: tt.effect, Account: "GA"},
				{Kind: "account_debited", Account: "GX", AssetType: "native", Amount: "1"},
				{Kind: "account_credited", Account: "GY", AssetType: "native", Amount: "1"},
			}
			both := m.Match(ops, effects)
			if tt.want {
				// Marker consumed; the payment pair lines up for op 1.
				require.Len(t, both[1], 2)
			} else {
				// Marker not consumed; it blocks the payment's debit slot.
				assert.Empty(t, both[1])
			}
		})
	}
}

func TestMatchClaimableBalanceTriple(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{
		Kind:          "claim_claimable_balance",
		SourceAccount: "GCLAIMANT",
		BalanceID:     "00000000abc",
	}}
	effects := []models.RawEffect{
		{Kind: "claimable_balance_claimed", Account: "GCLAIMANT", BalanceID: "00000000abc"},
		{Kind: "account_credited", Account: "GCLAIMANT", Amount: "25", AssetCode: "USDC", AssetIssuer: "GISS"},
		{Kind: "claimable_balance_sponsorship_removed", Account: "GSPONSOR"},
	}

	got := m.Match(ops, effects)
	// Only the credit classifies; the two markers are consumed silently.
	require.Len(t, got[0], 1)
	assert.Equal(t, models.CategoryCredited, got[0][0].Category)
	assert.Equal(t, "25", got[0][0].Amount)
}

func TestMatchAccountMerge(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{
		Kind:          "account_merge",
		SourceAccount: "GOLD",
		Destination:   "GNEW",
	}}
	effects := []models.RawEffect{
		{Kind: "account_debited", Account: "GOLD", Amount: "42", AssetType: "native"},
		{Kind: "account_credited", Account: "GNEW", Amount: "42", AssetType: "native"},
		{Kind: "account_removed", Account: "GOLD"},
	}

	got := m.Match(ops, effects)
	require.Len(t, got[0], 2)
	assert.Equal(t, models.CategoryDebited, got[0][0].Category)
	assert.Equal(t, models.CategoryCredited, got[0][1].Category)
}

func TestMatchInvokeHostFunctionClaimsContractRun(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{Kind: "invoke_host_function", SourceAccount: "GCALLER"}}
	effects := []models.RawEffect{
		{Kind: "contract_debited", Account: "GCALLER", Amount: "5", AssetCode: "USDC", Contract: "CAAA"},
		{Kind: "contract_credited", Account: "GB", Amount: "5", AssetCode: "USDC", Contract: "CAAA"},
		{Kind: "account_debited", Account: "GX", Amount: "1", AssetType: "native"},
	}

	got := m.Match(ops, effects)
	// The run stops at the first non-contract effect.
	require.Len(t, got[0], 2)
	assert.Equal(t, models.SourceSoroban, got[0][0].SourceKind)
	assert.Equal(t, models.SourceSoroban, got[0][1].SourceKind)
}

func TestMatchOfferOperation(t *testing.T) {
	m := newTestMatcher()
	ops := []models.RawOperation{{Kind: "manage_sell_offer", SourceAccount: "GMAKER"}}
	effects := []models.RawEffect{
		{Kind: "trade", Account: "GMAKER", SoldAmount: "10", SoldAssetType: "native"},
		{Kind: "offer_removed", Account: "GMAKER"},
	}

	got := m.Match(ops, effects)
	require.Len(t, got[0], 2)
	assert.Equal(t, models.CategoryTrade, got[0][0].Category)
	assert.Equal(t, models.CategoryOfferUpdated, got[0][1].Category)
}
