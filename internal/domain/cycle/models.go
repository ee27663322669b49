package cycle

import (
	"errors"
	"time"
)

// Data-quality flags surfaced on a cycle for an operator or repair routine.
// The engine detects these, it does not silently fix them.
const (
	FlagStatementNoTransactions = "statement_without_transactions"
	FlagDuplicateStatement      = "duplicate_statement_balance"
)

// Warning codes attached to a regeneration result (non-fatal anomalies)
const (
	WarnOpenDateDerived   = "open_date_derived_from_ledger"
	WarnOpenDateClamped   = "future_open_date_clamped"
	WarnOpenDateUnknown   = "open_date_unknown"
	WarnStatementOrphaned = "statement_without_transactions"
	WarnDuplicateStmt     = "duplicate_statement_balance"
)

// Domain errors
var (
	ErrCycleNotFound   = errors.New("cycle not found")
	ErrNoCurrentCycle  = errors.New("no current cycle")
	ErrNoClosedCycle   = errors.New("no closed cycle")
	ErrAccountRequired = errors.New("account ID is required")
)

// Cycle represents one billing period with aggregated spend and optional
// statement data. Derived from Account + ledger, persisted for caching and
// audit. StartDate and EndDate are inclusive.
type Cycle struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	DueDate   time.Time `json:"dueDate"`

	// Classifier-filtered sum over [startDate, min(endDate, today)]
	TotalSpend       float64 `json:"totalSpend"`
	TransactionCount int     `json:"transactionCount"`

	// Nil for the current cycle. For the most recently closed cycle this is
	// locked to the aggregator statement; for older closed cycles it is a
	// display fallback equal to TotalSpend.
	StatementBalance *float64 `json:"statementBalance,omitempty"`

	// True only when StatementBalance was aligned with an aggregator-reported
	// statement. The synchronizer never clobbers a reconciled cycle.
	StatementReconciled bool `json:"statementReconciled"`

	MinimumPayment *float64 `json:"minimumPayment,omitempty"`

	Flags []string `json:"flags,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsCurrent reports whether today falls inside the cycle.
func (c *Cycle) IsCurrent(today time.Time) bool {
	d := DateOnly(today)
	return !d.Before(c.StartDate) && !d.After(c.EndDate)
}

// Closed reports whether the cycle ended before today.
func (c *Cycle) Closed(today time.Time) bool {
	return c.EndDate.Before(DateOnly(today))
}

// HasFlag reports whether the cycle carries the given data-quality flag.
func (c *Cycle) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func (c *Cycle) addFlag(flag string) {
	if !c.HasFlag(flag) {
		c.Flags = append(c.Flags, flag)
	}
}

// Warning is a non-fatal anomaly found during regeneration. Partial success
// is expected: warnings never roll back cycles that computed correctly.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RegenerationResult is returned by the regeneration entry point: the full
// cycle set plus any warnings collected along the way.
type RegenerationResult struct {
	AccountID string    `json:"accountId"`
	Cycles    []*Cycle  `json:"cycles"`
	Warnings  []Warning `json:"warnings"`
}

// DateOnly truncates a timestamp to midnight UTC. All boundary arithmetic
// works on whole days.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
