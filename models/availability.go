package models

import "time"

// AvailabilityWindow is a mentor's open booking window for one calendar date.
// At most one active window exists per (mentor, date); setting a new window
// for the same date replaces the previous one.
type AvailabilityWindow struct {
	ID           string    `bson:"id" json:"id"`
	MentorID     string    `bson:"mentor_id" json:"mentorId"`
	Date         string    `bson:"date" json:"date"`                  // "YYYY-MM-DD"
	Start        int       `bson:"start" json:"start"`                // minutes from midnight
	End          int       `bson:"end" json:"end"`                    // minutes from midnight
	SlotDuration int       `bson:"slot_duration" json:"slotDuration"` // minutes, default 60
	Active       bool      `bson:"is_active" json:"isActive"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// DefaultSlotDuration applies when a window is set without one.
const DefaultSlotDuration = 60
