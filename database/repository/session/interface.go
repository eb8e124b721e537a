package sessionRepo

import (
	"context"
	"errors"

	"superbryn/models"
)

// ErrNotFound means no session matched the lookup.
var ErrNotFound = errors.New("session not found")

// SessionRepository persists voice session records and their append-only cost log.
type SessionRepository interface {
	// InsertSession creates the session record at connect time (status active).
	InsertSession(ctx context.Context, session *models.VoiceSession) error
	// FinishSession writes the terminal snapshot of a session exactly once.
	FinishSession(ctx context.Context, session *models.VoiceSession) error
	// GetSession retrieves a session by id.
	GetSession(ctx context.Context, id string) (*models.VoiceSession, error)
	// ListSessions pages through sessions, optionally filtered by status.
	ListSessions(ctx context.Context, status string, skip, limit int64) ([]models.VoiceSession, error)
	// ListByContact returns a caller's most recent sessions.
	ListByContact(ctx context.Context, contactNumber string, limit int64) ([]models.VoiceSession, error)
	// InsertCostEntry appends one usage record to the cost log.
	InsertCostEntry(ctx context.Context, entry *models.CostEntry) error
	// CostEntries returns the cost log for one session.
	CostEntries(ctx context.Context, sessionID string) ([]models.CostEntry, error)
	// TotalCost sums the whole cost log (admin reporting).
	TotalCost(ctx context.Context) (float64, error)
	// CountSessions returns total and active session counts.
	CountSessions(ctx context.Context) (total int64, active int64, err error)
}
