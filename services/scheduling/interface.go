package scheduling

import (
	"context"
	"time"

	"superbryn/models"
)

// BookRequest carries the parameters of one booking attempt.
type BookRequest struct {
	CallerID      string
	ContactNumber string
	MentorID      string
	Date          string // "YYYY-MM-DD"
	Time          int    // minutes from midnight
	Notes         string
}

// Ledger is the authoritative scheduling engine: it owns appointment status
// transitions and enforces the at-most-one-booking-per-slot invariant.
type Ledger interface {
	ListOpenSlots(ctx context.Context, mentorID, date string) ([]models.OpenSlot, error)
	Book(ctx context.Context, req BookRequest) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID, actor string) (*models.Appointment, error)
	Reschedule(ctx context.Context, appointmentID, newDate string, newTime int) (*models.Appointment, error)
	ListByCaller(ctx context.Context, contactNumber string, statuses []string) ([]models.Appointment, error)
	ListByMentor(ctx context.Context, mentorID, fromDate, toDate string) ([]models.Appointment, error)
	MarkNoShow(ctx context.Context, appointmentID, mentorNotes string) (*models.Appointment, error)
	SweepCompleted(ctx context.Context, now time.Time) (int64, error)
}
