package models

import "time"

type Stats struct {
	RequestCount      int64     `json:"request_count"`
	EffectsClassified int64     `json:"effects_classified"`
	InvocationsBuilt  int64     `json:"invocations_built"`
	TokensResolved    int64     `json:"tokens_resolved"`
	StartTime         time.Time `json:"start_time"`
	LastUpdateTime    time.Time `json:"last_update_time"`
}
