package account

import (
	"context"
	"errors"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount creates a new account with business validation
func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	if params.CycleDateType == "" {
		params.CycleDateType = DateTypeSameDay
	}
	if params.DueDateType == "" {
		params.DueDateType = DateTypeSameDay
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

// GetAccount retrieves an account by ID and verifies user ownership
func (s *Service) GetAccount(ctx context.Context, accountID string, userID int64) (*Account, error) {
	acc, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	// Business rule: verify ownership
	if acc.UserID != userID {
		return nil, ErrForbidden
	}

	return acc, nil
}

// ListAccountsByUserID retrieves all accounts for a specific user
func (s *Service) ListAccountsByUserID(ctx context.Context, userID int64) ([]*Account, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}

// ListAllAccounts retrieves every tracked account
func (s *Service) ListAllAccounts(ctx context.Context) ([]*Account, error) {
	return s.repo.ListAll(ctx)
}

// UpdateCyclePolicy applies a user-authored anchor or open-date change.
// This is the configuration-error boundary: invalid anchors are rejected
// here and never reach cycle generation. A successful update marks the
// account's dates as manually configured.
func (s *Service) UpdateCyclePolicy(ctx context.Context, accountID string, userID int64, params CyclePolicyParams) (*Account, error) {
	if _, err := s.GetAccount(ctx, accountID, userID); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateCyclePolicy(ctx, accountID, params, true)
}

// UpsertFromFeed creates or updates an account from aggregator data.
// When the account's dates are manually configured, anchor fields from the
// feed are discarded so sync never clobbers user-authored values.
func (s *Service) UpsertFromFeed(ctx context.Context, params UpsertParams) (*Account, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, params.ID)
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil && existing.ManualDatesConfigured {
		params.CycleDateType = nil
		params.CycleAnchor = nil
		params.DueDateType = nil
		params.DueAnchor = nil
	}

	return s.repo.Upsert(ctx, params)
}

// DeleteAccount deletes an account after verifying ownership
func (s *Service) DeleteAccount(ctx context.Context, accountID string, userID int64) error {
	if _, err := s.GetAccount(ctx, accountID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, accountID)
}

// AccountExists checks if an account exists
func (s *Service) AccountExists(ctx context.Context, accountID string) (bool, error) {
	return s.repo.Exists(ctx, accountID)
}
