package ledger

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEntryNotFound = errors.New("ledger entry not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// Entry represents one transaction record from the aggregator.
// AccountID is empty while the entry is unlinked (foreign key pending);
// unlinked entries are not eligible for aggregation until the linker runs.
type Entry struct {
	ID        string `json:"id"` // Provider's transaction id (UUID string)
	AccountID string `json:"accountId,omitempty"`
	ItemID    string `json:"itemId"`

	// Posted date. AuthorizedDate is nil while the transaction is pending.
	Date           time.Time  `json:"date"`
	AuthorizedDate *time.Time `json:"authorizedDate,omitempty"`

	// Positive = money owed increases (purchase), negative = money owed
	// decreases (payment or refund).
	Amount float64 `json:"amount"`

	Name         string `json:"name"`
	MerchantName string `json:"merchantName"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pending reports whether the entry has not been authorized yet.
func (e *Entry) Pending() bool {
	return e.AuthorizedDate == nil
}

// UpsertParams is used for syncing ledger entries from the aggregator feed
type UpsertParams struct {
	ID             string // Provider's transaction id (used as PK)
	AccountID      string // may be empty: link resolved later by the linker
	ItemID         string
	Date           time.Time
	AuthorizedDate *time.Time
	Amount         float64
	Name           string
	MerchantName   string
}

// Validate validates the upsert parameters
func (p UpsertParams) Validate() error {
	if p.ID == "" {
		return errors.New("entry ID is required for upsert")
	}
	if p.ItemID == "" {
		return errors.New("item ID is required for upsert")
	}
	if p.Date.IsZero() {
		return errors.New("entry date is required")
	}
	return nil
}
