package models

// RawEvent is one diagnostic/contract event from a Soroban execution trace,
// strictly ordered by emission time. Topics and data arrive in whatever
// shape the RPC layer produced (strings, numbers, byte carriers); the
// decoder makes sense of them.
type RawEvent struct {
	ContractID               string `json:"contract_id,omitempty"`
	Type                     string `json:"type,omitempty"`
	Topics                   []any  `json:"topics"`
	Data                     any    `json:"data,omitempty"`
	InSuccessfulContractCall bool   `json:"in_successful_contract_call,omitempty"`
}
