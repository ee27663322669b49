package http

import (
	"context"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/cycle"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/ledger"
)

// MockAccountRepo implements account.Repository for testing
type MockAccountRepo struct {
	CreateFunc            func(ctx context.Context, params account.CreateParams) (*account.Account, error)
	GetByIDFunc           func(ctx context.Context, id string) (*account.Account, error)
	ListByUserIDFunc      func(ctx context.Context, userID int64) ([]*account.Account, error)
	ListAllFunc           func(ctx context.Context) ([]*account.Account, error)
	DeleteFunc            func(ctx context.Context, id string) error
	UpsertFunc            func(ctx context.Context, params account.UpsertParams) (*account.Account, error)
	UpdateCyclePolicyFunc func(ctx context.Context, id string, params account.CyclePolicyParams, manual bool) (*account.Account, error)
	ExistsFunc            func(ctx context.Context, id string) (bool, error)
}

func (m *MockAccountRepo) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, account.ErrAccountNotFound
}

func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAccountRepo) ListAll(ctx context.Context) ([]*account.Account, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccountRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountRepo) Upsert(ctx context.Context, params account.UpsertParams) (*account.Account, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockAccountRepo) UpdateCyclePolicy(ctx context.Context, id string, params account.CyclePolicyParams, manual bool) (*account.Account, error) {
	if m.UpdateCyclePolicyFunc != nil {
		return m.UpdateCyclePolicyFunc(ctx, id, params, manual)
	}
	return nil, nil
}

func (m *MockAccountRepo) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return false, nil
}

// MockLedgerRepo implements ledger.Repository for testing
type MockLedgerRepo struct {
	GetByIDFunc               func(ctx context.Context, id string) (*ledger.Entry, error)
	ListByAccountFunc         func(ctx context.Context, accountID string, since *time.Time) ([]*ledger.Entry, error)
	ListUnlinkedByItemFunc    func(ctx context.Context, itemID string) ([]*ledger.Entry, error)
	LinkToAccountFunc         func(ctx context.Context, entryIDs []string, accountID string) error
	UpsertFunc                func(ctx context.Context, params ledger.UpsertParams) (*ledger.Entry, error)
	EarliestDateByAccountFunc func(ctx context.Context, accountID string) (*time.Time, error)
}

func (m *MockLedgerRepo) GetByID(ctx context.Context, id string) (*ledger.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ledger.ErrEntryNotFound
}

func (m *MockLedgerRepo) ListByAccount(ctx context.Context, accountID string, since *time.Time) ([]*ledger.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, since)
	}
	return nil, nil
}

func (m *MockLedgerRepo) ListUnlinkedByItem(ctx context.Context, itemID string) ([]*ledger.Entry, error) {
	if m.ListUnlinkedByItemFunc != nil {
		return m.ListUnlinkedByItemFunc(ctx, itemID)
	}
	return nil, nil
}

func (m *MockLedgerRepo) LinkToAccount(ctx context.Context, entryIDs []string, accountID string) error {
	if m.LinkToAccountFunc != nil {
		return m.LinkToAccountFunc(ctx, entryIDs, accountID)
	}
	return nil
}

func (m *MockLedgerRepo) Upsert(ctx context.Context, params ledger.UpsertParams) (*ledger.Entry, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockLedgerRepo) EarliestDateByAccount(ctx context.Context, accountID string) (*time.Time, error) {
	if m.EarliestDateByAccountFunc != nil {
		return m.EarliestDateByAccountFunc(ctx, accountID)
	}
	return nil, nil
}

// MockCycleRepo implements cycle.Repository for testing
type MockCycleRepo struct {
	ListByAccountFunc       func(ctx context.Context, accountID string) ([]*cycle.Cycle, error)
	GetCurrentFunc          func(ctx context.Context, accountID string, today time.Time) (*cycle.Cycle, error)
	GetMostRecentClosedFunc func(ctx context.Context, accountID string, today time.Time) (*cycle.Cycle, error)
	ReplaceCyclesFunc       func(ctx context.Context, accountID string, m cycle.Mutations) error
}

func (m *MockCycleRepo) ListByAccount(ctx context.Context, accountID string) ([]*cycle.Cycle, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *MockCycleRepo) GetCurrent(ctx context.Context, accountID string, today time.Time) (*cycle.Cycle, error) {
	if m.GetCurrentFunc != nil {
		return m.GetCurrentFunc(ctx, accountID, today)
	}
	return nil, cycle.ErrCycleNotFound
}

func (m *MockCycleRepo) GetMostRecentClosed(ctx context.Context, accountID string, today time.Time) (*cycle.Cycle, error) {
	if m.GetMostRecentClosedFunc != nil {
		return m.GetMostRecentClosedFunc(ctx, accountID, today)
	}
	return nil, cycle.ErrCycleNotFound
}

func (m *MockCycleRepo) ReplaceCycles(ctx context.Context, accountID string, mut cycle.Mutations) error {
	if m.ReplaceCyclesFunc != nil {
		return m.ReplaceCyclesFunc(ctx, accountID, mut)
	}
	return nil
}
