package models

// Category is the canonical balance-change classification of an effect.
type Category string

const (
	CategoryCredited     Category = "credited"
	CategoryDebited      Category = "debited"
	CategoryMinted       Category = "minted"
	CategoryBurned       Category = "burned"
	CategoryTrade        Category = "trade"
	CategoryPoolTrade    Category = "pool_trade"
	CategoryPoolUpdated  Category = "pool_updated"
	CategoryOfferUpdated Category = "offer_updated"
)

// SourceKind tells which record universe produced an effect.
type SourceKind string

const (
	SourceClassic SourceKind = "classic"
	SourceSoroban SourceKind = "soroban"
)

// RawEffect is one effect record as the ledger/indexing layer hands it to us,
// either a classic Horizon effect or a contract-event-converted one. Fields
// are kind-specific; absent fields stay empty.
type RawEffect struct {
	Kind            string `json:"type"`
	Account         string `json:"account,omitempty"`
	Amount          string `json:"amount,omitempty"`
	AssetType       string `json:"asset_type,omitempty"`
	AssetCode       string `json:"asset_code,omitempty"`
	AssetIssuer     string `json:"asset_issuer,omitempty"`
	Asset           string `json:"asset,omitempty"` // "CODE:ISSUER" composite or "native"
	Contract        string `json:"contract,omitempty"`
	From            string `json:"from,omitempty"`
	To              string `json:"to,omitempty"`
	StartingBalance string `json:"starting_balance,omitempty"`
	LiquidityPoolID string `json:"liquidity_pool_id,omitempty"`
	OfferID         string `json:"offer_id,omitempty"`
	BalanceID       string `json:"balance_id,omitempty"`
	Limit           string `json:"limit,omitempty"`

	// Trade effects
	Seller           string `json:"seller,omitempty"`
	SoldAmount       string `json:"sold_amount,omitempty"`
	SoldAssetType    string `json:"sold_asset_type,omitempty"`
	SoldAssetCode    string `json:"sold_asset_code,omitempty"`
	SoldAssetIssuer  string `json:"sold_asset_issuer,omitempty"`
	BoughtAmount     string `json:"bought_amount,omitempty"`
	BoughtAssetType  string `json:"bought_asset_type,omitempty"`
	BoughtAssetCode  string `json:"bought_asset_code,omitempty"`
	BoughtAssetIssuer string `json:"bought_asset_issuer,omitempty"`
}

// AssetIdentity is the resolved semantic identity of a fungible asset.
type AssetIdentity struct {
	IsNative         bool   `json:"is_native"`
	Code             string `json:"code"`
	IssuerOrContract string `json:"issuer_or_contract,omitempty"`
}

// Key returns a stable grouping key for the asset.
func (a AssetIdentity) Key() string {
	if a.IsNative {
		return "native"
	}
	return a.Code + ":" + a.IssuerOrContract
}

// ClassifiedEffect is the canonical output of the classifier.
type ClassifiedEffect struct {
	Category      Category      `json:"category"`
	AccountID     string        `json:"account_id"`
	Asset         AssetIdentity `json:"asset"`
	Amount        string        `json:"amount"`
	SourceKind    SourceKind    `json:"source_kind"`
	OriginalIndex int           `json:"original_index"`
}
