package models

import "time"

// Caller is a user identified by their phone number. Created lazily on first
// voice contact and never deleted by the scheduling core.
type Caller struct {
	ID            string    `bson:"id" json:"id"`
	ContactNumber string    `bson:"contact_number" json:"contactNumber"`
	Name          string    `bson:"name" json:"name"`
	Active        bool      `bson:"is_active" json:"isActive"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// CallerContext is the primed conversational context for a returning caller.
type CallerContext struct {
	Caller           Caller        `json:"caller"`
	Returning        bool          `json:"returning"`
	TotalSessions    int           `json:"totalSessions"`
	Upcoming         []Appointment `json:"upcoming,omitempty"`
	LastSessionAt    *time.Time    `json:"lastSessionAt,omitempty"`
	LastSummary      string        `json:"lastSummary,omitempty"`
}
