package cycle

import (
	"time"

	"github.com/google/uuid"
)

// Mutations is the minimal change set the synchronizer derives from diffing
// freshly computed cycles against the persisted ones.
type Mutations struct {
	Inserts []*Cycle
	Updates []*Cycle
	Deletes []string // cycle IDs
}

// Empty reports whether the mutation set changes nothing.
func (m Mutations) Empty() bool {
	return len(m.Inserts) == 0 && len(m.Updates) == 0 && len(m.Deletes) == 0
}

// Diff computes the minimal, safe mutation set that brings the persisted
// cycle list in line with the freshly generated one.
//
// Rules:
//   - A persisted closed cycle with reconciled statement data is preserved
//     when its boundaries still match a fresh cycle: its statement fields
//     carry over instead of being recomputed, so repeated regeneration never
//     oscillates reconciled history.
//   - The current cycle is volatile by definition and is always replaced.
//   - Persisted cycles whose boundaries no longer match anything fresh are
//     deleted (account reconfiguration regenerates from scratch; only cycles
//     with real reconciled data were worth protecting, and those are only
//     dropped when their boundaries are gone).
func Diff(persisted, fresh []*Cycle, today time.Time) Mutations {
	var m Mutations

	type window struct {
		start, end int64
	}
	key := func(c *Cycle) window {
		return window{start: c.StartDate.Unix(), end: c.EndDate.Unix()}
	}

	existing := make(map[window]*Cycle, len(persisted))
	for _, p := range persisted {
		existing[key(p)] = p
	}

	matched := make(map[window]bool, len(fresh))
	for _, f := range fresh {
		k := key(f)
		matched[k] = true

		p, ok := existing[k]
		if !ok {
			if f.ID == "" {
				f.ID = uuid.NewString()
			}
			m.Inserts = append(m.Inserts, f)
			continue
		}

		// Keep the stored identity stable across regenerations.
		f.ID = p.ID
		f.CreatedAt = p.CreatedAt

		if p.Closed(today) && p.StatementReconciled && !f.StatementReconciled {
			// Don't clobber reconciled history with a recomputed estimate.
			f.StatementBalance = p.StatementBalance
			f.TotalSpend = p.TotalSpend
			f.MinimumPayment = p.MinimumPayment
			f.StatementReconciled = true
		}

		if f.IsCurrent(today) || !equivalent(p, f) {
			m.Updates = append(m.Updates, f)
		}
	}

	for _, p := range persisted {
		if !matched[key(p)] {
			m.Deletes = append(m.Deletes, p.ID)
		}
	}

	return m
}

// equivalent reports whether two cycles with the same boundaries carry the
// same derived values, so the update can be skipped.
func equivalent(a, b *Cycle) bool {
	if a.TotalSpend != b.TotalSpend ||
		a.TransactionCount != b.TransactionCount ||
		a.StatementReconciled != b.StatementReconciled ||
		!a.DueDate.Equal(b.DueDate) {
		return false
	}
	if !floatPtrEqual(a.StatementBalance, b.StatementBalance) {
		return false
	}
	if !floatPtrEqual(a.MinimumPayment, b.MinimumPayment) {
		return false
	}
	return len(a.Flags) == len(b.Flags)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
