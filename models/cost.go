package models

import "time"

// Metered unit kinds.
const (
	UnitMinutes    = "minutes"
	UnitCharacters = "characters"
	UnitTokens     = "tokens"
)

// CostEntry is one append-only usage record for an external AI service call.
type CostEntry struct {
	ID        string    `bson:"id" json:"id"`
	SessionID string    `bson:"session_id" json:"sessionId"`
	Service   string    `bson:"service" json:"service"` // "stt", "tts", "llm"
	Units     float64   `bson:"units" json:"units"`
	UnitKind  string    `bson:"unit_kind" json:"unitKind"`
	CostUSD   float64   `bson:"cost_usd" json:"costUsd"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ServiceCost is the accumulated usage for one service within a session.
type ServiceCost struct {
	Units    float64 `bson:"units" json:"units"`
	UnitKind string  `bson:"unit_kind" json:"unitKind"`
	CostUSD  float64 `bson:"cost_usd" json:"costUsd"`
}

// CostBreakdown is the per-service and total cost of one session.
type CostBreakdown struct {
	Services map[string]ServiceCost `bson:"services,omitempty" json:"services,omitempty"`
	TotalUSD float64                `bson:"total_usd" json:"totalUsd"`
}
