package ledger

import (
	"context"
	"time"
)

// Repository defines the interface for ledger entry data access
type Repository interface {
	// GetByID retrieves an entry by its ID
	GetByID(ctx context.Context, id string) (*Entry, error)

	// ListByAccount retrieves entries linked to an account. A nil since
	// returns the full history.
	ListByAccount(ctx context.Context, accountID string, since *time.Time) ([]*Entry, error)

	// ListUnlinkedByItem retrieves entries for an item that have no account
	// assigned yet (foreign key pending).
	ListUnlinkedByItem(ctx context.Context, itemID string) ([]*Entry, error)

	// LinkToAccount assigns the account foreign key to a batch of entries
	LinkToAccount(ctx context.Context, entryIDs []string, accountID string) error

	// Upsert creates or updates an entry based on its ID
	Upsert(ctx context.Context, params UpsertParams) (*Entry, error)

	// EarliestDateByAccount returns the date of the oldest linked entry,
	// or nil when the account has no entries.
	EarliestDateByAccount(ctx context.Context, accountID string) (*time.Time, error)
}
