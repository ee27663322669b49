package ingest

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrDuplicateEvent = errors.New("duplicate event")
	ErrInvalidPayload = errors.New("invalid payload")
)

// FeedAccount is the already-materialized account shape delivered by the
// ingestion pipeline. Fetching from the aggregator lives outside this
// repository; the engine only ever sees local data.
type FeedAccount struct {
	ID                     string     `json:"id"`
	UserID                 int64      `json:"userId"`
	ItemID                 string     `json:"itemId"`
	Name                   string     `json:"name"`
	Mask                   string     `json:"mask"`
	OpenDate               *time.Time `json:"openDate,omitempty"`
	CycleDateType          *string    `json:"cycleDateType,omitempty"`
	CycleAnchor            *int       `json:"cycleAnchor,omitempty"`
	DueDateType            *string    `json:"dueDateType,omitempty"`
	DueAnchor              *int       `json:"dueAnchor,omitempty"`
	LastStatementIssueDate *time.Time `json:"lastStatementIssueDate,omitempty"`
	LastStatementBalance   *float64   `json:"lastStatementBalance,omitempty"`
	NextPaymentDueDate     *time.Time `json:"nextPaymentDueDate,omitempty"`
	MinimumPaymentAmount   *float64   `json:"minimumPaymentAmount,omitempty"`
	BalanceCurrent         *float64   `json:"balanceCurrent,omitempty"`
	BalanceLimit           *float64   `json:"balanceLimit,omitempty"`
}

// FeedEntry is one transaction row from the feed. AccountID may be empty;
// the linker resolves it before aggregation.
type FeedEntry struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"accountId,omitempty"`
	ItemID         string     `json:"itemId"`
	Date           time.Time  `json:"date"`
	AuthorizedDate *time.Time `json:"authorizedDate,omitempty"`
	Amount         float64    `json:"amount"`
	Name           string     `json:"name"`
	MerchantName   string     `json:"merchantName"`
}

// FeedPayload is one item's worth of materialized aggregator data.
type FeedPayload struct {
	EventType string        `json:"eventType"`
	ItemID    string        `json:"itemId"`
	Accounts  []FeedAccount `json:"accounts"`
	Entries   []FeedEntry   `json:"entries"`
}

// Validate validates the payload shape
func (p FeedPayload) Validate() error {
	if p.ItemID == "" {
		return errors.New("item ID is required")
	}
	if p.EventType == "" {
		return errors.New("event type is required")
	}
	return nil
}

// Result summarizes one ingestion run.
type Result struct {
	ItemID            string   `json:"itemId"`
	AccountsUpserted  int      `json:"accountsUpserted"`
	EntriesUpserted   int      `json:"entriesUpserted"`
	CyclesRegenerated int      `json:"cyclesRegenerated"`
	Errors            []string `json:"errors,omitempty"`
}
