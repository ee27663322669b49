package cycle

import (
	"fmt"
	"time"
)

// Boundary is one generated billing period before aggregation: start and end
// are inclusive, due is the payment date resolved by the due policy.
type Boundary struct {
	Start time.Time
	End   time.Time
	Due   time.Time
}

// GenerateInput carries everything the boundary generator needs. OpenDate is
// the effective lower bound after the caller's ledger fallback; nil means
// truly unknown, in which case only the current cycle is produced.
type GenerateInput struct {
	Today         time.Time
	OpenDate      *time.Time
	CycleDateType string
	CycleAnchor   int
	DueDateType   string
	DueAnchor     int
}

// GenerateBoundaries walks backward from today to the account's open date and
// emits a contiguous, non-overlapping list of cycle boundaries, oldest first.
//
// The current cycle spans (previousAnchor, nextAnchor]: it starts the day
// after the most recent completed statement anchor and ends on the next
// anchor, which may lie in the future. Historical cycles are produced one
// month at a time until the computed start would precede the open date. A
// cycle straddling the open date is dropped entirely and the open date
// becomes the start of the first retained cycle; history is undercounted
// rather than fabricating a partial first cycle.
func GenerateBoundaries(in GenerateInput) ([]Boundary, []Warning) {
	var warnings []Warning

	today := DateOnly(in.Today)

	openDate := in.OpenDate
	if openDate != nil {
		d := DateOnly(*openDate)
		if d.After(today) {
			warnings = append(warnings, Warning{
				Code:    WarnOpenDateClamped,
				Message: fmt.Sprintf("open date %s is in the future, clamped to today", d.Format("2006-01-02")),
			})
			d = today
		}
		openDate = &d
	}

	// The most recent completed statement anchor must be in the past (or
	// today). Resolve this month's anchor; if it hasn't happened yet, the
	// completed anchor is last month's.
	lastAnchor := ResolveAnchor(in.CycleDateType, in.CycleAnchor, today.Year(), today.Month())
	if lastAnchor.After(today) {
		// AddDate overflows on day-31 dates, so month stepping always goes
		// through the first of the month.
		prev := monthStart(today, -1)
		lastAnchor = ResolveAnchor(in.CycleDateType, in.CycleAnchor, prev.Year(), prev.Month())
	}

	// Current cycle: (lastAnchor, nextAnchor]
	nextMonth := monthStart(lastAnchor, 1)
	nextAnchor := ResolveAnchor(in.CycleDateType, in.CycleAnchor, nextMonth.Year(), nextMonth.Month())

	current := Boundary{
		Start: lastAnchor.AddDate(0, 0, 1),
		End:   nextAnchor,
	}

	if openDate == nil {
		// Nothing to bound history with: emit only the current cycle and let
		// its own start stand in for the open date.
		warnings = append(warnings, Warning{
			Code:    WarnOpenDateUnknown,
			Message: "no open date and no ledger entries; generated current cycle only",
		})
		current.Due = resolveDueDate(in, current.End)
		return []Boundary{current}, warnings
	}

	// Walk backward one month per step. Each step closes the cycle ending on
	// the newer anchor and starting the day after the older one.
	var history []Boundary
	upper := lastAnchor
	for !upper.Before(*openDate) {
		prevMonth := monthStart(upper, -1)
		lower := ResolveAnchor(in.CycleDateType, in.CycleAnchor, prevMonth.Year(), prevMonth.Month())

		b := Boundary{Start: lower.AddDate(0, 0, 1), End: upper}
		if b.Start.Before(*openDate) {
			// Straddles the open date: drop it. The open date becomes the
			// start of the first retained cycle below.
			break
		}
		history = append(history, b)
		upper = lower
	}

	// Oldest first.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	boundaries := append(history, current)

	// The open date replaces the dropped straddling cycle's boundary so the
	// retained sequence still reaches back to the account's first day. When
	// the account opened inside the current cycle there is nothing to drop,
	// so the current cycle is truncated forward to the open date instead.
	if !boundaries[0].Start.Equal(*openDate) {
		boundaries[0].Start = *openDate
	}

	for i := range boundaries {
		boundaries[i].Due = resolveDueDate(in, boundaries[i].End)
	}

	return boundaries, warnings
}

// monthStart returns the first day of the month offset months away from t.
// Stepping through day 1 avoids time.AddDate day-overflow surprises on
// day-29..31 anchors.
func monthStart(t time.Time, offset int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
}

// resolveDueDate computes the due date for a cycle ending on end, using the
// independent due policy anchored to the end month. A due date on or before
// its own statement end rolls forward one month.
func resolveDueDate(in GenerateInput, end time.Time) time.Time {
	due := ResolveAnchor(in.DueDateType, in.DueAnchor, end.Year(), end.Month())
	if !due.After(end) {
		next := monthStart(end, 1)
		due = ResolveAnchor(in.DueDateType, in.DueAnchor, next.Year(), next.Month())
	}
	return due
}
