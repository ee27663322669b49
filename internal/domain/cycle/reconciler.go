package cycle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
)

// Minimum payment derivation when the aggregator does not report one:
// max(minimumPaymentFloor, statementBalance * minimumPaymentRate).
var (
	minimumPaymentFloor = decimal.NewFromInt(25)
	minimumPaymentRate  = decimal.NewFromFloat(0.02)
)

// Reconciler blends ledger-derived spend with balance-derived spend for the
// current cycle and aligns the most recently closed cycle with the
// aggregator-reported statement.
type Reconciler struct {
	// Cent-level tolerance below which the ledger figure is kept for the
	// current cycle, preserving transaction-level auditability.
	tolerance decimal.Decimal
}

// NewReconciler creates a reconciler with the standard one-cent tolerance.
func NewReconciler() *Reconciler {
	return &Reconciler{tolerance: decimal.NewFromFloat(0.01)}
}

// Reconcile adjusts the cycle list in place. Cycles must be ordered oldest
// first. Missing balance or statement data degrades to ledger-only numbers;
// that is a correct mode, not an error.
func (r *Reconciler) Reconcile(cycles []*Cycle, acct *account.Account, today time.Time) []Warning {
	var warnings []Warning
	if len(cycles) == 0 {
		return warnings
	}

	r.reconcileCurrent(cycles, acct, today)
	warnings = append(warnings, r.reconcileClosed(cycles, acct, today)...)

	// Duplicate-statement detection runs after the synchronizer's diff, not
	// here: a fresh computation locks at most one statement, so duplicates
	// only become visible once preserved history is merged back in.
	return warnings
}

// reconcileCurrent blends the two independent spend estimates for the open
// cycle. The balance-derived figure reflects pending and uningested
// transactions the ledger has not received yet, so it wins when the two
// disagree by more than the tolerance.
func (r *Reconciler) reconcileCurrent(cycles []*Cycle, acct *account.Account, today time.Time) {
	var current *Cycle
	for _, c := range cycles {
		if c.IsCurrent(today) {
			current = c
			break
		}
	}
	if current == nil {
		return
	}

	// The current cycle never carries a statement.
	current.StatementBalance = nil
	current.StatementReconciled = false
	current.MinimumPayment = nil

	if acct.BalanceCurrent == nil || acct.LastStatementBalance == nil {
		return
	}

	balanceSpend := decimal.NewFromFloat(*acct.BalanceCurrent).Abs().
		Sub(decimal.NewFromFloat(*acct.LastStatementBalance).Abs())
	if balanceSpend.IsNegative() {
		balanceSpend = decimal.Zero
	}

	ledgerSpend := decimal.NewFromFloat(current.TotalSpend)
	if balanceSpend.Sub(ledgerSpend).Abs().GreaterThan(r.tolerance) {
		current.TotalSpend = balanceSpend.InexactFloat64()
	}
}

// reconcileClosed locks the most recently closed cycle to the reported
// statement when the boundary dates agree exactly, and backfills a display
// statement balance on older closed cycles from their ledger totals.
func (r *Reconciler) reconcileClosed(cycles []*Cycle, acct *account.Account, today time.Time) []Warning {
	var warnings []Warning

	lastClosed := -1
	for i, c := range cycles {
		if c.Closed(today) {
			lastClosed = i
		}
	}
	if lastClosed < 0 {
		return warnings
	}

	for i := 0; i <= lastClosed; i++ {
		c := cycles[i]

		if i == lastClosed && statementMatches(c, acct) {
			stmt := decimal.NewFromFloat(*acct.LastStatementBalance).Abs()
			balance := stmt.InexactFloat64()

			// The statement is ground truth for a closed period.
			c.StatementBalance = &balance
			c.TotalSpend = balance
			c.StatementReconciled = true
			c.MinimumPayment = minimumPayment(acct, stmt)

			if c.TransactionCount == 0 && !stmt.IsZero() {
				c.addFlag(FlagStatementNoTransactions)
				warnings = append(warnings, Warning{
					Code: WarnStatementOrphaned,
					Message: fmt.Sprintf("cycle ending %s has a reported statement of %s but no matched transactions",
						c.EndDate.Format("2006-01-02"), stmt.StringFixed(2)),
				})
			}
			continue
		}

		// Older closed cycle (or no matching statement): the ledger total is
		// the best available number, surfaced as a display fallback.
		balance := c.TotalSpend
		c.StatementBalance = &balance
		c.StatementReconciled = false
	}

	return warnings
}

// statementMatches reports whether the aggregator's last statement belongs to
// this cycle: the issue date must equal the cycle end exactly.
func statementMatches(c *Cycle, acct *account.Account) bool {
	if acct.LastStatementIssueDate == nil || acct.LastStatementBalance == nil {
		return false
	}
	return DateOnly(*acct.LastStatementIssueDate).Equal(c.EndDate)
}

// minimumPayment uses the aggregator-reported amount when present, otherwise
// derives max(25, 2% of the statement balance).
func minimumPayment(acct *account.Account, stmt decimal.Decimal) *float64 {
	if acct.MinimumPaymentAmount != nil {
		v := *acct.MinimumPaymentAmount
		return &v
	}
	derived := stmt.Mul(minimumPaymentRate)
	if derived.LessThan(minimumPaymentFloor) {
		derived = minimumPaymentFloor
	}
	v := derived.InexactFloat64()
	return &v
}

// flagDuplicateStatements marks reconciled closed cycles that share the same
// nonzero statement balance; duplicated statement amounts across history are
// a data-quality signal for repair, not something to fix silently.
func flagDuplicateStatements(cycles []*Cycle) []Warning {
	var warnings []Warning
	seen := make(map[float64]*Cycle)

	for _, c := range cycles {
		if !c.StatementReconciled || c.StatementBalance == nil || *c.StatementBalance == 0 {
			continue
		}
		if prev, ok := seen[*c.StatementBalance]; ok {
			prev.addFlag(FlagDuplicateStatement)
			c.addFlag(FlagDuplicateStatement)
			warnings = append(warnings, Warning{
				Code: WarnDuplicateStmt,
				Message: fmt.Sprintf("cycles ending %s and %s carry the same statement balance",
					prev.EndDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02")),
			})
			continue
		}
		seen[*c.StatementBalance] = c
	}

	return warnings
}
