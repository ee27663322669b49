package cycle

import (
	"context"
	"time"
)

// Repository defines the interface for cycle persistence. Implemented by the
// infrastructure layer; ReplaceCycles must be transactional so a reader never
// observes an account with zero cycles mid-regeneration.
type Repository interface {
	// ListByAccount retrieves all cycles for an account, oldest first
	ListByAccount(ctx context.Context, accountID string) ([]*Cycle, error)

	// GetCurrent retrieves the cycle containing today, if persisted
	GetCurrent(ctx context.Context, accountID string, today time.Time) (*Cycle, error)

	// GetMostRecentClosed retrieves the newest cycle that ended before today
	GetMostRecentClosed(ctx context.Context, accountID string, today time.Time) (*Cycle, error)

	// ReplaceCycles applies a mutation set in a single transaction
	ReplaceCycles(ctx context.Context, accountID string, m Mutations) error
}
