package cycle

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/ledger"
)

// PaymentClassifier decides whether a ledger entry name denotes a payment
// or credit that must be excluded from spend.
type PaymentClassifier interface {
	IsPayment(name string) bool
}

// AggregateSpend sums classified ledger entries inside a cycle's effective
// window [start, min(end, today)].
//
// An entry counts iff it is authorized (not pending) and the classifier does
// not mark it as a payment. Signed amounts are summed directly so legitimate
// refunds reduce spend while payments stay excluded regardless of sign. The
// fold is associative; partial recomputation is safe if ever optimized.
func AggregateSpend(b Boundary, entries []*ledger.Entry, clf PaymentClassifier, today time.Time) (totalSpend float64, transactionCount int) {
	effectiveEnd := b.End
	if t := DateOnly(today); t.Before(effectiveEnd) {
		effectiveEnd = t
	}

	sum := decimal.Zero
	for _, e := range entries {
		if e.Pending() {
			continue
		}
		if clf.IsPayment(e.Name) {
			continue
		}
		d := DateOnly(e.Date)
		if d.Before(b.Start) || d.After(effectiveEnd) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(e.Amount))
		transactionCount++
	}

	return sum.InexactFloat64(), transactionCount
}
