package rider

import (
	"context"
	"errors"
)

var (
	ErrRiderNotFound = errors.New("rider not found")
	// ErrDuplicateRider is returned by a store when its unique constraint on
	// email or nric rejects a write. The service checks uniqueness before every
	// write, so this only surfaces when two writes race.
	ErrDuplicateRider = errors.New("email or nric already exists")
)

// Repository defines the interface for rider data access
type Repository interface {
	// List returns one page of the filtered roster, newest first, and the filtered total
	List(ctx context.Context, q ListQuery) (*ListResult, error)

	// GetByID retrieves a rider by ID. Unknown and malformed IDs yield ErrRiderNotFound
	GetByID(ctx context.Context, id string) (*Rider, error)

	// HasConflict reports whether another rider already uses email or nric
	HasConflict(ctx context.Context, email, nric, excludeID string) (bool, error)

	// Create assigns ID and timestamps and persists the rider
	Create(ctx context.Context, r *Rider) error

	// Update replaces the stored rider with the same ID and refreshes UpdatedAt
	Update(ctx context.Context, r *Rider) error

	// Delete removes a rider
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored riders
	Count(ctx context.Context) (int64, error)

	// DeleteAll empties the roster
	DeleteAll(ctx context.Context) error
}

// Store is a Repository bound to a concrete backend
type Store interface {
	Repository

	// Name identifies the backend in logs and health output
	Name() string

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
