package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, params CreateParams) (*Account, error)

	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id string) (*Account, error)

	// ListByUserID retrieves all accounts for a specific user
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)

	// ListAll retrieves every account (scheduler sweeps, admin CLI)
	ListAll(ctx context.Context) ([]*Account, error)

	// Delete removes an account
	Delete(ctx context.Context, id string) error

	// Upsert creates or updates an account based on its ID
	Upsert(ctx context.Context, params UpsertParams) (*Account, error)

	// UpdateCyclePolicy applies a user-authored anchor/open-date change
	UpdateCyclePolicy(ctx context.Context, id string, params CyclePolicyParams, manual bool) (*Account, error)

	// Exists checks if an account with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}
