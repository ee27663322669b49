package account

import (
	"errors"
	"fmt"
	"time"
)

// Anchor date-type values (how a recurring statement or due date is picked)
const (
	DateTypeSameDay       = "same_day"
	DateTypeDaysBeforeEnd = "days_before_end"
	DateTypeDynamicAnchor = "dynamic_anchor"
)

var dateTypes = map[string]struct{}{
	DateTypeSameDay:       {},
	DateTypeDaysBeforeEnd: {},
	DateTypeDynamicAnchor: {},
}

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidAnchor   = errors.New("anchor day must be between 1 and 31")
	ErrInvalidDateType = errors.New("invalid date type")
)

// Account represents a tracked credit card and its billing configuration
type Account struct {
	ID     string `json:"id"` // Provider's account ID (UUID string)
	UserID int64  `json:"userId"`
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Mask   string `json:"mask"`

	// Lower bound for cycle generation. Nil means "derive from ledger".
	OpenDate *time.Time `json:"openDate,omitempty"`

	// Statement anchor policy
	CycleDateType string `json:"cycleDateType"`
	CycleAnchor   int    `json:"cycleAnchor"`

	// Due date policy, independent of the statement policy
	DueDateType string `json:"dueDateType"`
	DueAnchor   int    `json:"dueAnchor"`

	// When true, anchors were entered by the user and sync must not touch them.
	ManualDatesConfigured bool `json:"manualDatesConfigured"`

	// Last known aggregator-reported values. Authoritative for the most
	// recently closed cycle only.
	LastStatementIssueDate *time.Time `json:"lastStatementIssueDate,omitempty"`
	LastStatementBalance   *float64   `json:"lastStatementBalance,omitempty"`
	NextPaymentDueDate     *time.Time `json:"nextPaymentDueDate,omitempty"`
	MinimumPaymentAmount   *float64   `json:"minimumPaymentAmount,omitempty"`

	BalanceCurrent *float64 `json:"balanceCurrent,omitempty"`
	BalanceLimit   *float64 `json:"balanceLimit,omitempty"`
	ManualLimit    *float64 `json:"manualLimit,omitempty"` // user-entered override

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EffectiveLimit returns the user's manual limit override when present,
// otherwise the aggregator-reported limit.
func (a *Account) EffectiveLimit() *float64 {
	if a.ManualLimit != nil {
		return a.ManualLimit
	}
	return a.BalanceLimit
}

// CreateParams contains parameters for creating a new account
type CreateParams struct {
	ID            string
	UserID        int64
	ItemID        string
	Name          string
	Mask          string
	OpenDate      *time.Time
	CycleDateType string
	CycleAnchor   int
	DueDateType   string
	DueAnchor     int
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required")
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Name == "" {
		return errors.New("account name is required")
	}
	if p.CycleDateType != "" {
		if err := validatePolicy(p.CycleDateType, p.CycleAnchor); err != nil {
			return err
		}
	}
	if p.DueDateType != "" {
		if err := validatePolicy(p.DueDateType, p.DueAnchor); err != nil {
			return err
		}
	}
	return nil
}

// CyclePolicyParams contains the user-facing anchor configuration update.
// This is the boundary where configuration errors are rejected; invalid
// anchors never reach the boundary generator.
type CyclePolicyParams struct {
	OpenDate      *time.Time
	CycleDateType *string
	CycleAnchor   *int
	DueDateType   *string
	DueAnchor     *int
	ManualLimit   *float64
}

// Validate validates the cycle policy parameters
func (p CyclePolicyParams) Validate() error {
	if p.CycleDateType != nil {
		anchor := 0
		if p.CycleAnchor != nil {
			anchor = *p.CycleAnchor
		}
		if err := validatePolicy(*p.CycleDateType, anchor); err != nil {
			return err
		}
	} else if p.CycleAnchor != nil {
		if *p.CycleAnchor < 1 || *p.CycleAnchor > 31 {
			return ErrInvalidAnchor
		}
	}
	if p.DueDateType != nil {
		anchor := 0
		if p.DueAnchor != nil {
			anchor = *p.DueAnchor
		}
		if err := validatePolicy(*p.DueDateType, anchor); err != nil {
			return err
		}
	} else if p.DueAnchor != nil {
		if *p.DueAnchor < 1 || *p.DueAnchor > 31 {
			return ErrInvalidAnchor
		}
	}
	return nil
}

// UpsertParams contains parameters for upserting an account from a feed sync
type UpsertParams struct {
	ID                     string
	UserID                 int64
	ItemID                 string
	Name                   string
	Mask                   string
	OpenDate               *time.Time
	CycleDateType          *string
	CycleAnchor            *int
	DueDateType            *string
	DueAnchor              *int
	LastStatementIssueDate *time.Time
	LastStatementBalance   *float64
	NextPaymentDueDate     *time.Time
	MinimumPaymentAmount   *float64
	BalanceCurrent         *float64
	BalanceLimit           *float64
}

// Validate validates the upsert parameters
func (p UpsertParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required for upsert")
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required for upsert")
	}
	if p.Name == "" {
		return errors.New("account name is required")
	}
	if p.CycleDateType != nil {
		anchor := 0
		if p.CycleAnchor != nil {
			anchor = *p.CycleAnchor
		}
		if err := validatePolicy(*p.CycleDateType, anchor); err != nil {
			return err
		}
	}
	if p.DueDateType != nil {
		anchor := 0
		if p.DueAnchor != nil {
			anchor = *p.DueAnchor
		}
		if err := validatePolicy(*p.DueDateType, anchor); err != nil {
			return err
		}
	}
	return nil
}

// IsValidDateType checks if the provided date type is valid.
func IsValidDateType(t string) bool {
	_, ok := dateTypes[t]
	return ok
}

func validatePolicy(dateType string, anchor int) error {
	if !IsValidDateType(dateType) {
		return fmt.Errorf("%w: %q", ErrInvalidDateType, dateType)
	}
	if anchor < 1 || anchor > 31 {
		return ErrInvalidAnchor
	}
	return nil
}
