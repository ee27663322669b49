package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `
	id, user_id, item_id, name, mask, open_date,
	cycle_date_type, cycle_anchor, due_date_type, due_anchor,
	manual_dates_configured,
	last_statement_issue_date, last_statement_balance,
	next_payment_due_date, minimum_payment_amount,
	balance_current, balance_limit, manual_limit,
	created_at, updated_at`

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	query := `
		INSERT INTO accounts (id, user_id, item_id, name, mask, open_date,
			cycle_date_type, cycle_anchor, due_date_type, due_anchor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		params.ID, params.UserID, nullString(params.ItemID), params.Name, nullString(params.Mask),
		nullTimePtr(params.OpenDate),
		nullString(params.CycleDateType), nullInt(params.CycleAnchor),
		nullString(params.DueDateType), nullInt(params.DueAnchor),
	)

	acc, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acc, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// ListByUserID retrieves all accounts for a specific user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListAll retrieves every account
func (r *AccountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *AccountRepository) list(ctx context.Context, query string, args ...any) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// Delete removes an account
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

// Upsert creates or updates an account based on its ID. Anchor columns use
// COALESCE so nil params (manual-dates protection) keep the stored values.
func (r *AccountRepository) Upsert(ctx context.Context, params account.UpsertParams) (*account.Account, error) {
	query := `
		INSERT INTO accounts (id, user_id, item_id, name, mask, open_date,
			cycle_date_type, cycle_anchor, due_date_type, due_anchor,
			last_statement_issue_date, last_statement_balance,
			next_payment_due_date, minimum_payment_amount,
			balance_current, balance_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			mask = EXCLUDED.mask,
			open_date = COALESCE(EXCLUDED.open_date, accounts.open_date),
			cycle_date_type = COALESCE(EXCLUDED.cycle_date_type, accounts.cycle_date_type),
			cycle_anchor = COALESCE(EXCLUDED.cycle_anchor, accounts.cycle_anchor),
			due_date_type = COALESCE(EXCLUDED.due_date_type, accounts.due_date_type),
			due_anchor = COALESCE(EXCLUDED.due_anchor, accounts.due_anchor),
			last_statement_issue_date = EXCLUDED.last_statement_issue_date,
			last_statement_balance = EXCLUDED.last_statement_balance,
			next_payment_due_date = EXCLUDED.next_payment_due_date,
			minimum_payment_amount = EXCLUDED.minimum_payment_amount,
			balance_current = EXCLUDED.balance_current,
			balance_limit = EXCLUDED.balance_limit,
			updated_at = NOW()
		RETURNING` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		params.ID, params.UserID, nullString(params.ItemID), params.Name, nullString(params.Mask),
		nullTimePtr(params.OpenDate),
		nullStringPtr(params.CycleDateType), nullIntPtr(params.CycleAnchor),
		nullStringPtr(params.DueDateType), nullIntPtr(params.DueAnchor),
		nullTimePtr(params.LastStatementIssueDate), nullFloatPtr(params.LastStatementBalance),
		nullTimePtr(params.NextPaymentDueDate), nullFloatPtr(params.MinimumPaymentAmount),
		nullFloatPtr(params.BalanceCurrent), nullFloatPtr(params.BalanceLimit),
	)

	acc, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}
	return acc, nil
}

// UpdateCyclePolicy applies a user-authored anchor/open-date change. The
// manual flag marks the account so feed syncs stop touching anchors.
func (r *AccountRepository) UpdateCyclePolicy(ctx context.Context, id string, params account.CyclePolicyParams, manual bool) (*account.Account, error) {
	query := `
		UPDATE accounts SET
			open_date = COALESCE($2, open_date),
			cycle_date_type = COALESCE($3, cycle_date_type),
			cycle_anchor = COALESCE($4, cycle_anchor),
			due_date_type = COALESCE($5, due_date_type),
			due_anchor = COALESCE($6, due_anchor),
			manual_limit = COALESCE($7, manual_limit),
			manual_dates_configured = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		id,
		nullTimePtr(params.OpenDate),
		nullStringPtr(params.CycleDateType), nullIntPtr(params.CycleAnchor),
		nullStringPtr(params.DueDateType), nullIntPtr(params.DueAnchor),
		nullFloatPtr(params.ManualLimit),
		manual,
	)

	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update cycle policy: %w", err)
	}
	return acc, nil
}

// Exists checks if an account with the given ID exists
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var acc account.Account
	var itemID, mask, cycleType, dueType sql.NullString
	var cycleAnchor, dueAnchor sql.NullInt64
	var openDate, stmtIssue, nextDue sql.NullTime
	var stmtBalance, minPayment, balCurrent, balLimit, manualLimit sql.NullFloat64

	err := row.Scan(
		&acc.ID, &acc.UserID, &itemID, &acc.Name, &mask, &openDate,
		&cycleType, &cycleAnchor, &dueType, &dueAnchor,
		&acc.ManualDatesConfigured,
		&stmtIssue, &stmtBalance, &nextDue, &minPayment,
		&balCurrent, &balLimit, &manualLimit,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.ItemID = itemID.String
	acc.Mask = mask.String
	acc.CycleDateType = cycleType.String
	acc.CycleAnchor = int(cycleAnchor.Int64)
	acc.DueDateType = dueType.String
	acc.DueAnchor = int(dueAnchor.Int64)
	acc.OpenDate = timePtr(openDate)
	acc.LastStatementIssueDate = timePtr(stmtIssue)
	acc.LastStatementBalance = floatPtr(stmtBalance)
	acc.NextPaymentDueDate = timePtr(nextDue)
	acc.MinimumPaymentAmount = floatPtr(minPayment)
	acc.BalanceCurrent = floatPtr(balCurrent)
	acc.BalanceLimit = floatPtr(balLimit)
	acc.ManualLimit = floatPtr(manualLimit)

	return &acc, nil
}

// Null* helpers shared by the repositories in this package.

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullIntPtr(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloatPtr(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
