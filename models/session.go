package models

import (
	"encoding/json"
	"time"
)

// Voice session terminal statuses.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// VoiceSession is the persisted record of one live voice call. It is owned
// exclusively by its orchestrator while active and never mutated after the
// session ends.
type VoiceSession struct {
	ID              string            `bson:"id" json:"id"`
	RoomName        string            `bson:"room_name" json:"roomName"`
	CallerID        string            `bson:"caller_id,omitempty" json:"callerId,omitempty"`
	ContactNumber   string            `bson:"contact_number,omitempty" json:"contactNumber,omitempty"`
	StartedAt       time.Time         `bson:"started_at" json:"startedAt"`
	EndedAt         time.Time         `bson:"ended_at,omitempty" json:"endedAt,omitempty"`
	DurationSeconds int               `bson:"duration_seconds,omitempty" json:"durationSeconds,omitempty"`
	Status          string            `bson:"status" json:"status"`
	Summary         string            `bson:"summary,omitempty" json:"summary,omitempty"`
	Cost            CostBreakdown     `bson:"cost_breakdown,omitempty" json:"costBreakdown,omitempty"`
	Transcript      []TranscriptEntry `bson:"transcript,omitempty" json:"transcript,omitempty"`
}

// TranscriptEntry is one ordered line of the session's transcript / tool-call log.
type TranscriptEntry struct {
	Role      string          `bson:"role" json:"role"` // "user", "assistant", "tool"
	Text      string          `bson:"text,omitempty" json:"text,omitempty"`
	ToolName  string          `bson:"tool_name,omitempty" json:"toolName,omitempty"`
	ToolArgs  json.RawMessage `bson:"tool_args,omitempty" json:"toolArgs,omitempty"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
}
