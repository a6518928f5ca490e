package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daccred/txlens.attest.so/models"
)

var (
	xlm  = models.AssetIdentity{IsNative: true, Code: "XLM"}
	usdc = models.AssetIdentity{Code: "USDC", IssuerOrContract: "GISS"}
)

func TestAggregateNetsFlowsPerAccountAsset(t *testing.T) {
	effects := []models.ClassifiedEffect{
		{Category: models.CategoryCredited, AccountID: "GA", Asset: xlm, Amount: "10"},
		{Category: models.CategoryDebited, AccountID: "GA", Asset: xlm, Amount: "3"},
		{Category: models.CategoryDebited, AccountID: "GA", Asset: usdc, Amount: "5"},
		{Category: models.CategoryCredited, AccountID: "GB", Asset: xlm, Amount: "3"},
	}

	deltas := Aggregate(effects)
	require.Len(t, deltas, 3)

	byKey := make(map[string]models.BalanceDelta)
	for _, d := range deltas {
		byKey[d.AccountID+"|"+d.Asset.Key()] = d
	}
	assert.Equal(t, "7", byKey["GA|native"].NetAmount)
	assert.Equal(t, "-5", byKey["GA|USDC:GISS"].NetAmount)
	assert.Equal(t, "3", byKey["GB|native"].NetAmount)
}

// A mint observed through both the classic and contract lenses shows up as an
// equal minted and credited amount; it must count once.
func TestAggregateCollapsesMintCreditEcho(t *testing.T) {
	effects := []models.ClassifiedEffect{
		{Category: models.CategoryMinted, AccountID: "GA", Asset: usdc, Amount: "10"},
		{Category: models.CategoryCredited, AccountID: "GA", Asset: usdc, Amount: "10"},
	}

	deltas := Aggregate(effects)
	require.Len(t, deltas, 1)
	assert.Equal(t, "10", deltas[0].NetAmount)
}

func TestAggregateKeepsDistinctMintAndCredit(t *testing.T) {
	effects := []models.ClassifiedEffect{
		{Category: models.CategoryMinted, AccountID: "GA", Asset: usdc, Amount: "10"},
		{Category: models.CategoryCredited, AccountID: "GA", Asset: usdc, Amount: "4"},
	}

	deltas := Aggregate(effects)
	require.Len(t, deltas, 1)
	assert.Equal(t, "14", deltas[0].NetAmount)
}

func TestAggregateBurnSubtracts(t *testing.T) {
	effects := []models.ClassifiedEffect{
		{Category: models.CategoryCredited, AccountID: "GA", Asset: usdc, Amount: "10"},
		{Category: models.CategoryBurned, AccountID: "GA", Asset: usdc, Amount: "4"},
	}

	deltas := Aggregate(effects)
	require.Len(t, deltas, 1)
	assert.Equal(t, "6", deltas[0].NetAmount)
}

func TestAggregateDropsZeroNetAndBadAmounts(t *testing.T) {
	effects := []models.ClassifiedEffect{
		{Category: models.CategoryCredited, AccountID: "GA", Asset: xlm, Amount: "5"},
		{Category: models.CategoryDebited, AccountID: "GA", Asset: xlm, Amount: "5"},
		{Category: models.CategoryCredited, AccountID: "GB", Asset: xlm, Amount: "zero"},
		{Category: models.CategoryCredited, AccountID: "GC", Asset: xlm, Amount: "0"},
	}

	assert.Empty(t, Aggregate(effects))
}

func TestAggregateOrderIsDeterministic(t *testing.T) {
	effects := []models.ClassifiedEffect{
		{Category: models.CategoryCredited, AccountID: "GB", Asset: xlm, Amount: "1"},
		{Category: models.CategoryCredited, AccountID: "GA", Asset: xlm, Amount: "1"},
	}

	deltas := Aggregate(effects)
	require.Len(t, deltas, 2)
	assert.Equal(t, "GA", deltas[0].AccountID)
	assert.Equal(t, "GB", deltas[1].AccountID)
}
