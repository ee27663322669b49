package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/cycle"
)

// CycleRepository implements the cycle.Repository interface for PostgreSQL
type CycleRepository struct {
	db *DB
}

// NewCycleRepository creates a new PostgreSQL cycle repository
func NewCycleRepository(db *DB) *CycleRepository {
	return &CycleRepository{db: db}
}

const cycleColumns = `
	id, account_id, start_date, end_date, due_date,
	total_spend, transaction_count, statement_balance, statement_reconciled,
	minimum_payment, flags, created_at, updated_at`

// ListByAccount retrieves all cycles for an account, oldest first
func (r *CycleRepository) ListByAccount(ctx context.Context, accountID string) ([]*cycle.Cycle, error) {
	query := `SELECT` + cycleColumns + ` FROM cycles WHERE account_id = $1 ORDER BY start_date ASC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*cycle.Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycles: %w", err)
	}
	return cycles, nil
}

// GetCurrent retrieves the cycle containing today
func (r *CycleRepository) GetCurrent(ctx context.Context, accountID string, today time.Time) (*cycle.Cycle, error) {
	query := `SELECT` + cycleColumns + `
		FROM cycles
		WHERE account_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date DESC
		LIMIT 1`

	c, err := scanCycle(r.db.QueryRowContext(ctx, query, accountID, cycle.DateOnly(today)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cycle.ErrCycleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current cycle: %w", err)
	}
	return c, nil
}

// GetMostRecentClosed retrieves the newest cycle that ended before today
func (r *CycleRepository) GetMostRecentClosed(ctx context.Context, accountID string, today time.Time) (*cycle.Cycle, error) {
	query := `SELECT` + cycleColumns + `
		FROM cycles
		WHERE account_id = $1 AND end_date < $2
		ORDER BY end_date DESC
		LIMIT 1`

	c, err := scanCycle(r.db.QueryRowContext(ctx, query, accountID, cycle.DateOnly(today)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cycle.ErrCycleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get most recent closed cycle: %w", err)
	}
	return c, nil
}

// ReplaceCycles applies the synchronizer's mutation set in one transaction,
// so a reader never observes an account with a partially written cycle set.
func (r *CycleRepository) ReplaceCycles(ctx context.Context, accountID string, m cycle.Mutations) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(m.Deletes) > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cycles WHERE account_id = $1 AND id = ANY($2)`,
			accountID, pq.Array(m.Deletes),
		); err != nil {
			return fmt.Errorf("failed to delete cycles: %w", err)
		}
	}

	upsert := `
		INSERT INTO cycles (id, account_id, start_date, end_date, due_date,
			total_spend, transaction_count, statement_balance, statement_reconciled,
			minimum_payment, flags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			due_date = EXCLUDED.due_date,
			total_spend = EXCLUDED.total_spend,
			transaction_count = EXCLUDED.transaction_count,
			statement_balance = EXCLUDED.statement_balance,
			statement_reconciled = EXCLUDED.statement_reconciled,
			minimum_payment = EXCLUDED.minimum_payment,
			flags = EXCLUDED.flags,
			updated_at = NOW()`

	for _, c := range append(m.Inserts, m.Updates...) {
		if _, err := tx.ExecContext(ctx, upsert,
			c.ID, accountID, c.StartDate, c.EndDate, c.DueDate,
			c.TotalSpend, c.TransactionCount,
			nullFloatPtr(c.StatementBalance), c.StatementReconciled,
			nullFloatPtr(c.MinimumPayment), pq.Array(c.Flags),
		); err != nil {
			return fmt.Errorf("failed to upsert cycle %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle replacement: %w", err)
	}
	return nil
}

func scanCycle(row rowScanner) (*cycle.Cycle, error) {
	var c cycle.Cycle
	var stmtBalance, minPayment sql.NullFloat64
	var flags pq.StringArray

	err := row.Scan(
		&c.ID, &c.AccountID, &c.StartDate, &c.EndDate, &c.DueDate,
		&c.TotalSpend, &c.TransactionCount, &stmtBalance, &c.StatementReconciled,
		&minPayment, &flags, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.StatementBalance = floatPtr(stmtBalance)
	c.MinimumPayment = floatPtr(minPayment)
	c.Flags = []string(flags)

	// Dates come back in the session time zone; boundary math is UTC-only.
	c.StartDate = cycle.DateOnly(c.StartDate)
	c.EndDate = cycle.DateOnly(c.EndDate)
	c.DueDate = cycle.DateOnly(c.DueDate)

	return &c, nil
}
