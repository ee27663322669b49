package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/ledger"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const entryColumns = `
	id, account_id, item_id, date, authorized_date, amount, name, merchant_name,
	created_at, updated_at`

// GetByID retrieves an entry by its ID
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*ledger.Entry, error) {
	query := `SELECT` + entryColumns + ` FROM ledger_entries WHERE id = $1`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return e, nil
}

// ListByAccount retrieves entries linked to an account, oldest first
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID string, since *time.Time) ([]*ledger.Entry, error) {
	query := `SELECT` + entryColumns + ` FROM ledger_entries WHERE account_id = $1`
	args := []any{accountID}
	if since != nil {
		query += ` AND date >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY date ASC, id ASC`

	return r.list(ctx, query, args...)
}

// ListUnlinkedByItem retrieves entries for an item with no account assigned
func (r *LedgerRepository) ListUnlinkedByItem(ctx context.Context, itemID string) ([]*ledger.Entry, error) {
	query := `SELECT` + entryColumns + ` FROM ledger_entries WHERE item_id = $1 AND account_id IS NULL ORDER BY date ASC`
	return r.list(ctx, query, itemID)
}

func (r *LedgerRepository) list(ctx context.Context, query string, args ...any) ([]*ledger.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

// LinkToAccount assigns the account foreign key to a batch of entries
func (r *LedgerRepository) LinkToAccount(ctx context.Context, entryIDs []string, accountID string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	query := `UPDATE ledger_entries SET account_id = $1, updated_at = NOW() WHERE id = ANY($2)`
	if _, err := r.db.ExecContext(ctx, query, accountID, pq.Array(entryIDs)); err != nil {
		return fmt.Errorf("failed to link ledger entries: %w", err)
	}
	return nil
}

// Upsert creates or updates an entry based on its ID. An already-linked
// entry keeps its account when the feed row arrives unlinked.
func (r *LedgerRepository) Upsert(ctx context.Context, params ledger.UpsertParams) (*ledger.Entry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO ledger_entries (id, account_id, item_id, date, authorized_date, amount, name, merchant_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			account_id = COALESCE(EXCLUDED.account_id, ledger_entries.account_id),
			date = EXCLUDED.date,
			authorized_date = EXCLUDED.authorized_date,
			amount = EXCLUDED.amount,
			name = EXCLUDED.name,
			merchant_name = EXCLUDED.merchant_name,
			updated_at = NOW()
		RETURNING` + entryColumns

	row := r.db.QueryRowContext(ctx, query,
		params.ID, nullString(params.AccountID), params.ItemID,
		params.Date, nullTimePtr(params.AuthorizedDate),
		params.Amount, params.Name, nullString(params.MerchantName),
	)

	e, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert ledger entry: %w", err)
	}
	return e, nil
}

// EarliestDateByAccount returns the oldest linked entry date, or nil
func (r *LedgerRepository) EarliestDateByAccount(ctx context.Context, accountID string) (*time.Time, error) {
	var earliest sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MIN(date) FROM ledger_entries WHERE account_id = $1`, accountID,
	).Scan(&earliest)
	if err != nil {
		return nil, fmt.Errorf("failed to get earliest entry date: %w", err)
	}
	return timePtr(earliest), nil
}

func scanEntry(row rowScanner) (*ledger.Entry, error) {
	var e ledger.Entry
	var accountID, merchant sql.NullString
	var authorized sql.NullTime

	err := row.Scan(
		&e.ID, &accountID, &e.ItemID, &e.Date, &authorized,
		&e.Amount, &e.Name, &merchant,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.AccountID = accountID.String
	e.MerchantName = merchant.String
	e.AuthorizedDate = timePtr(authorized)

	return &e, nil
}
