package voice

import (
	"encoding/json"

	"superbryn/models"
)

// Inbound frame types sent by the voice agent over the session socket.
const (
	FrameSessionConnect   = "session.connect"
	FrameToolCall         = "tool.call"
	FrameTranscriptAppend = "transcript.append"
	FrameUsageReport      = "usage.report"
	FrameSessionEnd       = "session.end"
)

// Outbound frame types.
const (
	FrameSessionReady   = "session.ready"
	FrameToolResult     = "tool.result"
	FrameTranscriptAck  = "transcript.ack"
	FrameSessionSummary = "session.summary"
	FrameSessionError   = "session.error"
)

// InboundFrame is the envelope for every frame the agent sends. Fields beyond
// Type are populated per frame type.
type InboundFrame struct {
	Type string `json:"type"`

	// session.connect
	RoomName      string `json:"roomName,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
	CallerName    string `json:"callerName,omitempty"`

	// tool.call
	CallID string          `json:"callId,omitempty"`
	Tool   string          `json:"tool,omitempty"`
	Args   json.RawMessage `json:"args,omitempty"`

	// transcript.append
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`

	// usage.report
	Service  string  `json:"service,omitempty"`
	Units    float64 `json:"units,omitempty"`
	UnitKind string  `json:"unitKind,omitempty"`

	// session.end
	Summary string `json:"summary,omitempty"`
}

// ReadyFrame acknowledges session.connect and carries the primed caller context.
type ReadyFrame struct {
	Type          string                `json:"type"`
	SessionID     string                `json:"sessionId"`
	CallerContext *models.CallerContext `json:"callerContext,omitempty"`
}

// ToolError is the structured failure payload of a tool result.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToolResultFrame is the reply to one tool.call. Results are emitted in
// submission order regardless of per-tool completion order.
type ToolResultFrame struct {
	Type   string      `json:"type"`
	CallID string      `json:"callId"`
	Tool   string      `json:"tool"`
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Error  *ToolError  `json:"error,omitempty"`
}

// AckFrame acknowledges a transcript.append or usage.report frame.
type AckFrame struct {
	Type string `json:"type"`
	Seq  int    `json:"seq"`
}

// SummaryFrame is the final frame of a session, sent once during finalization.
type SummaryFrame struct {
	Type            string               `json:"type"`
	SessionID       string               `json:"sessionId"`
	Status          string               `json:"status"`
	DurationSeconds int                  `json:"durationSeconds"`
	Cost            models.CostBreakdown `json:"cost"`
}

// ErrorFrame reports a protocol-level fault (malformed frame, bad state).
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
