package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"superbryn/models"
)

// Sentinel errors surfaced to the scheduling service, which translates them
// into its domain taxonomy.
var (
	// ErrSlotConflict means the (mentor, date, time) slot is already held by a
	// non-terminal appointment. Raised by the partial unique index.
	ErrSlotConflict = errors.New("slot already occupied by a non-terminal appointment")
	// ErrNotFound means no appointment matched the given id.
	ErrNotFound = errors.New("appointment not found")
	// ErrTerminal means the appointment exists but is already in a terminal status.
	ErrTerminal = errors.New("appointment is already terminal")
)

// ListFilter narrows admin-level appointment queries.
type ListFilter struct {
	Status   string
	MentorID string
	FromDate string
	ToDate   string
}

// AppointmentRepository is the authoritative store of appointments. Insert and
// Move are the two operations protected by the backing store's uniqueness
// constraint over (mentor_id, date, time) restricted to non-terminal statuses.
type AppointmentRepository interface {
	// Insert creates a new appointment. Returns ErrSlotConflict if a
	// non-terminal appointment already occupies the slot.
	Insert(ctx context.Context, appt *models.Appointment) error
	// GetByID retrieves an appointment by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// Transition moves a non-terminal appointment to the given status.
	// Returns ErrNotFound or ErrTerminal.
	Transition(ctx context.Context, id, toStatus string) (*models.Appointment, error)
	// SetMentorNotes records a mentor-side note without touching status.
	SetMentorNotes(ctx context.Context, id, notes string) error
	// Move atomically relocates a non-terminal appointment to a new slot.
	// Returns ErrSlotConflict (original untouched), ErrNotFound or ErrTerminal.
	Move(ctx context.Context, id, newDate string, newTime int, newEndAt time.Time) (*models.Appointment, error)
	// ListNonTerminal returns the pending/booked appointments for a mentor and date.
	ListNonTerminal(ctx context.Context, mentorID, date string) ([]models.Appointment, error)
	// ListByContact returns a caller's appointments, optionally filtered by status.
	ListByContact(ctx context.Context, contactNumber string, statuses []string) ([]models.Appointment, error)
	// ListByMentor returns a mentor's appointments within an inclusive date range.
	ListByMentor(ctx context.Context, mentorID, fromDate, toDate string) ([]models.Appointment, error)
	// ListAll is the admin-facing filtered listing.
	ListAll(ctx context.Context, filter ListFilter) ([]models.Appointment, error)
	// SweepCompleted transitions booked appointments whose end time has passed
	// into completed. Idempotent; returns the number of rows transitioned.
	SweepCompleted(ctx context.Context, now time.Time) (int64, error)
	// CountByStatus returns appointment counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
