package models

// BalanceDelta is the net movement for one (account, asset) pair across a
// reconstruction run. Recomputed from scratch on each aggregation.
type BalanceDelta struct {
	AccountID string        `json:"account_id"`
	Asset     AssetIdentity `json:"asset"`
	NetAmount string        `json:"net_amount"`
}
