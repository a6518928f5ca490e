package models

// DecodedValue is a display-safe rendering of an opaque topic/data value.
type DecodedValue struct {
	Kind    string `json:"kind"` // address, hex, text, number, bool
	Display string `json:"display"`
}

// InvokerKind distinguishes who issued a contract call.
const (
	InvokerAccount  = "account"
	InvokerContract = "contract"
)

// Invocation is one node of the reconstructed contract call tree. Built
// bottom-up in a single pass over the diagnostic events; not mutated after
// the pass completes.
type Invocation struct {
	Depth        int            `json:"depth"`
	Invoker      string         `json:"invoker,omitempty"`
	InvokerKind  string         `json:"invoker_kind,omitempty"`
	ContractID   string         `json:"contract_id"`
	FunctionName string         `json:"function_name"`
	Parameters   []DecodedValue `json:"parameters"`
	ReturnValue  *DecodedValue  `json:"return_value,omitempty"`
	Children     []*Invocation  `json:"children,omitempty"`
	Events       []RawEvent     `json:"events,omitempty"`
}
