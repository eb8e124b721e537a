package availabilityRepo

import (
	"context"
	"errors"

	"superbryn/models"
)

// ErrNotFound means no window is set for the requested (mentor, date).
var ErrNotFound = errors.New("availability window not set")

// AvailabilityRepository is the authoritative store of mentor open windows.
// At most one active window exists per (mentor, date); SetWindow replaces any
// prior window for the same date.
type AvailabilityRepository interface {
	// SetWindow upserts the window for (mentor, date) and returns the stored record.
	SetWindow(ctx context.Context, window *models.AvailabilityWindow) (*models.AvailabilityWindow, error)
	// GetWindow returns the active window for (mentor, date) or ErrNotFound.
	GetWindow(ctx context.Context, mentorID, date string) (*models.AvailabilityWindow, error)
	// ListWindows returns a mentor's windows within an inclusive date range.
	ListWindows(ctx context.Context, mentorID, fromDate, toDate string) ([]models.AvailabilityWindow, error)
	// Remove deletes a window by id.
	Remove(ctx context.Context, id string) error
}
