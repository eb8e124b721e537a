package mentorRepo

import (
	"context"
	"errors"

	"superbryn/models"
)

// ErrNotFound means no mentor matched the lookup.
var ErrNotFound = errors.New("mentor not found")

// MentorRepository defines methods for mentor data access.
type MentorRepository interface {
	// Create inserts a new mentor record.
	Create(ctx context.Context, mentor *models.Mentor) error
	// GetByID retrieves a mentor by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Mentor, error)
	// GetByEmail retrieves a mentor by email, password hash included (auth path).
	GetByEmail(ctx context.Context, email string) (*models.Mentor, error)
	// List returns mentors, optionally active ones only.
	List(ctx context.Context, activeOnly bool) ([]models.Mentor, error)
	// Update applies field updates to an existing mentor record.
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Mentor, error)
	// Deactivate soft-deletes a mentor.
	Deactivate(ctx context.Context, id string) error
	// Count returns the number of active mentors.
	Count(ctx context.Context) (int64, error)
}
