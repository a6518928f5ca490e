package models

// RawOperation describes one transaction operation as supplied by the
// external ledger layer, Horizon-shaped. Ordered within its transaction.
type RawOperation struct {
	Kind          string `json:"type"`
	SourceAccount string `json:"source_account,omitempty"`

	// Payments and merges
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Destination string `json:"destination,omitempty"`
	Amount      string `json:"amount,omitempty"`
	AssetType   string `json:"asset_type,omitempty"`
	AssetCode   string `json:"asset_code,omitempty"`
	AssetIssuer string `json:"asset_issuer,omitempty"`

	// Path payments
	SourceAmount      string `json:"source_amount,omitempty"`
	SourceAssetType   string `json:"source_asset_type,omitempty"`
	SourceAssetCode   string `json:"source_asset_code,omitempty"`
	SourceAssetIssuer string `json:"source_asset_issuer,omitempty"`

	// Account creation
	Account         string `json:"account,omitempty"`
	Funder          string `json:"funder,omitempty"`
	StartingBalance string `json:"starting_balance,omitempty"`

	// Trustlines, claimable balances, data entries
	Limit     string `json:"limit,omitempty"`
	BalanceID string `json:"balance_id,omitempty"`
	Name      string `json:"name,omitempty"`

	// Soroban
	Function string `json:"function,omitempty"`
}

// Source returns the account the operation acts for.
func (op RawOperation) Source() string {
	if op.SourceAccount != "" {
		return op.SourceAccount
	}
	return op.From
}
