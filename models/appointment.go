package models

import "time"

// Appointment statuses. Pending and booked still occupy a slot; the terminal
// statuses free it permanently and never revert.
const (
	StatusPending   = "pending"
	StatusBooked    = "booked"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// NonTerminalStatuses are the statuses that occupy a slot.
var NonTerminalStatuses = []string{StatusPending, StatusBooked}

// IsTerminalStatus reports whether a status frees its slot permanently.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment is a single booked slot between a caller and a mentor.
type Appointment struct {
	ID            string    `bson:"id" json:"id"`
	CallerID      string    `bson:"caller_id" json:"callerId"`
	ContactNumber string    `bson:"contact_number" json:"contactNumber"`
	MentorID      string    `bson:"mentor_id,omitempty" json:"mentorId,omitempty"`
	Date          string    `bson:"date" json:"date"` // "YYYY-MM-DD"
	Time          int       `bson:"time" json:"time"` // slot start, minutes from midnight
	Duration      int       `bson:"duration" json:"duration"`
	Status        string    `bson:"status" json:"status"`
	CallerNotes   string    `bson:"caller_notes,omitempty" json:"callerNotes,omitempty"`
	MentorNotes   string    `bson:"mentor_notes,omitempty" json:"mentorNotes,omitempty"`
	EndAt         time.Time `bson:"end_at" json:"endAt"` // absolute UTC end, drives the completion sweep
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
