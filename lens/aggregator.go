package lens

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/daccred/txlens.attest.so/models"
)

type flowTotals struct {
	account  string
	asset    models.AssetIdentity
	credited decimal.Decimal
	debited  decimal.Decimal
	minted   decimal.Decimal
	burned   decimal.Decimal
}

// Aggregate derives net per-account/per-asset deltas from classified
// effects. Pure re-derivation: no incremental state, recomputed in full on
// each call. Only nonzero nets are emitted.
func Aggregate(effects []models.ClassifiedEffect) []models.BalanceDelta {
	groups := make(map[string]*flowTotals)
	var order []string

	for _, eff := range effects {
		amount, ok := ParseAmount(eff.Amount)
		if !ok || amount.IsZero() {
			continue
		}
		key := eff.AccountID + "|" + eff.Asset.Key()
		g, seen := groups[key]
		if !seen {
			g = &flowTotals{account: eff.AccountID, asset: eff.Asset}
			groups[key] = g
			order = append(order, key)
		}
		switch eff.Category {
		case models.CategoryCredited:
			g.credited = g.credited.Add(amount)
		case models.CategoryDebited:
			g.debited = g.debited.Add(amount)
		case models.CategoryMinted:
			g.minted = g.minted.Add(amount)
		case models.CategoryBurned:
			g.burned = g.burned.Add(amount)
		}
	}

	sort.Strings(order)
	out := make([]models.BalanceDelta, 0, len(order))
	for _, key := range order {
		g := groups[key]
		grossIn := g.credited.Add(g.minted)
		// A mint surfaced through both source lenses arrives once as minted
		// and once as credited; when they agree exactly, count it once.
		if !g.minted.IsZero() && g.minted.Equal(g.credited) {
			grossIn = g.minted
		}
		net := grossIn.Sub(g.debited).Sub(g.burned)
		if net.IsZero() {
			continue
		}
		out = append(out, models.BalanceDelta{
			AccountID: g.account,
			Asset:     g.asset,
			NetAmount: FormatAmount(net),
		})
	}
	return out
}
