package models

import "time"

// Mentor represents a bookable mentor profile.
type Mentor struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Specialty    string    `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Bio          string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Active       bool      `bson:"is_active" json:"isActive"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
