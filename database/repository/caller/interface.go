package callerRepo

import (
	"context"
	"errors"

	"superbryn/models"
)

// ErrNotFound means no caller matched the lookup.
var ErrNotFound = errors.New("caller not found")

// CallerRepository is the user directory. Callers are created lazily on first
// contact by phone handle and never deleted by the scheduling core.
type CallerRepository interface {
	// GetOrCreate returns the caller with the given normalized contact number,
	// creating one with the given display name if absent.
	GetOrCreate(ctx context.Context, contactNumber, name string) (*models.Caller, error)
	// GetByID retrieves a caller by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Caller, error)
	// GetByContact retrieves a caller by normalized contact number.
	GetByContact(ctx context.Context, contactNumber string) (*models.Caller, error)
	// List pages through all callers.
	List(ctx context.Context, skip, limit int64) ([]models.Caller, error)
	// Count returns the number of callers.
	Count(ctx context.Context) (int64, error)
}
