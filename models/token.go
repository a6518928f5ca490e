package models

import "time"

// TokenMetadata is the resolved metadata for one Soroban token contract on
// one network, as returned by the external metadata lookup.
type TokenMetadata struct {
	Contract  string    `json:"contract"`
	Network   string    `json:"network"`
	Symbol    string    `json:"symbol,omitempty"`
	Name      string    `json:"name,omitempty"`
	Decimals  uint32    `json:"decimals,omitempty"`
	Functions []string  `json:"functions,omitempty"`
	Events    []string  `json:"events,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
