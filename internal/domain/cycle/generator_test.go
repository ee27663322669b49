package cycle

import (
	"testing"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func hasWarning(warnings []Warning, code string) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestGenerateBoundariesBackwardWalk(t *testing.T) {
	// Open 2025-06-28, same-day anchor 28, viewed on 2025-09-15: the straddle
	// rule keeps exactly three cycles with the open date as first start.
	boundaries, warnings := GenerateBoundaries(GenerateInput{
		Today:         date(2025, time.September, 15),
		OpenDate:      datePtr(2025, time.June, 28),
		CycleDateType: account.DateTypeSameDay,
		CycleAnchor:   28,
		DueDateType:   account.DateTypeSameDay,
		DueAnchor:     15,
	})

	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	want := []struct{ start, end time.Time }{
		{date(2025, time.June, 28), date(2025, time.July, 28)},
		{date(2025, time.July, 29), date(2025, time.August, 28)},
		{date(2025, time.August, 29), date(2025, time.September, 28)},
	}
	if len(boundaries) != len(want) {
		t.Fatalf("got %d boundaries, want %d", len(boundaries), len(want))
	}
	for i, w := range want {
		if !boundaries[i].Start.Equal(w.start) || !boundaries[i].End.Equal(w.end) {
			t.Errorf("boundary %d = [%s, %s], want [%s, %s]", i,
				boundaries[i].Start.Format("2006-01-02"), boundaries[i].End.Format("2006-01-02"),
				w.start.Format("2006-01-02"), w.end.Format("2006-01-02"))
		}
	}
}

func TestGenerateBoundariesContiguous(t *testing.T) {
	// No-overlap, no-gap: every cycle starts the day after its predecessor
	// ends, across month-length changes and the day-31 clamp.
	boundaries, _ := GenerateBoundaries(GenerateInput{
		Today:         date(2025, time.September, 15),
		OpenDate:      datePtr(2024, time.November, 3),
		CycleDateType: account.DateTypeSameDay,
		CycleAnchor:   31,
		DueDateType:   account.DateTypeSameDay,
		DueAnchor:     10,
	})

	if len(boundaries) < 3 {
		t.Fatalf("expected a multi-cycle history, got %d", len(boundaries))
	}
	for i := 1; i < len(boundaries); i++ {
		wantStart := boundaries[i-1].End.AddDate(0, 0, 1)
		if !boundaries[i].Start.Equal(wantStart) {
			t.Errorf("gap between cycle %d and %d: end %s, next start %s",
				i-1, i, boundaries[i-1].End.Format("2006-01-02"),
				boundaries[i].Start.Format("2006-01-02"))
		}
	}
	if !boundaries[0].Start.Equal(date(2024, time.November, 3)) {
		t.Errorf("first start = %s, want the open date", boundaries[0].Start.Format("2006-01-02"))
	}
}

func TestGenerateBoundariesSingleCurrent(t *testing.T) {
	today := date(2025, time.September, 15)
	boundaries, _ := GenerateBoundaries(GenerateInput{
		Today:         today,
		OpenDate:      datePtr(2025, time.January, 5),
		CycleDateType: account.DateTypeSameDay,
		CycleAnchor:   20,
		DueDateType:   account.DateTypeSameDay,
		DueAnchor:     10,
	})

	current := 0
	for _, b := range boundaries {
		c := Cycle{StartDate: b.Start, EndDate: b.End}
		if c.IsCurrent(today) {
			current++
		}
	}
	if current != 1 {
		t.Errorf("expected exactly one current cycle, got %d", current)
	}
}

func TestGenerateBoundariesNoOpenDate(t *testing.T) {
	boundaries, warnings := GenerateBoundaries(GenerateInput{
		Today:         date(2025, time.September, 15),
		CycleDateType: account.DateTypeSameDay,
		CycleAnchor:   28,
		DueDateType:   account.DateTypeSameDay,
		DueAnchor:     15,
	})

	if len(boundaries) != 1 {
		t.Fatalf("got %d boundaries, want only the current cycle", len(boundaries))
	}
	if !hasWarning(warnings, WarnOpenDateUnknown) {
		t.Errorf("expected %s warning, got %v", WarnOpenDateUnknown, warnings)
	}
	if !boundaries[0].Start.Equal(date(2025, time.August, 29)) || !boundaries[0].End.Equal(date(2025, time.September, 28)) {
		t.Errorf("current cycle = [%s, %s]",
			boundaries[0].Start.Format("2006-01-02"), boundaries[0].End.Format("2006-01-02"))
	}
}

func TestGenerateBoundariesFutureOpenDateClamped(t *testing.T) {
	today := date(2025, time.September, 15)
	boundaries, warnings := GenerateBoundaries(GenerateInput{
		Today:         today,
		OpenDate:      datePtr(2025, time.October, 1),
		CycleDateType: account.DateTypeSameDay,
		CycleAnchor:   28,
		DueDateType:   account.DateTypeSameDay,
		DueAnchor:     15,
	})

	if !hasWarning(warnings, WarnOpenDateClamped) {
		t.Fatalf("expected %s warning, got %v", WarnOpenDateClamped, warnings)
	}
	if len(boundaries) != 1 {
		t.Fatalf("got %d boundaries, want 1", len(boundaries))
	}
	if !boundaries[0].Start.Equal(today) {
		t.Errorf("start = %s, want today", boundaries[0].Start.Format("2006-01-02"))
	}
}

func TestGenerateBoundariesOpenedInsideCurrentCycle(t *testing.T) {
	// Account opened after the last anchor: the current cycle is truncated
	// forward to the open date and no history is produced.
	boundaries, warnings := GenerateBoundaries(GenerateInput{
		Today:         date(2025, time.September, 20),
		OpenDate:      datePtr(2025, time.September, 16),
		CycleDateType: account.DateTypeSameDay,
		CycleAnchor:   15,
		DueDateType:   account.DateTypeSameDay,
		DueAnchor:     10,
	})

	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(boundaries) != 1 {
		t.Fatalf("got %d boundaries, want 1", len(boundaries))
	}
	if !boundaries[0].Start.Equal(date(2025, time.September, 16)) {
		t.Errorf("start = %s, want the open date", boundaries[0].Start.Format("2006-01-02"))
	}
	if !boundaries[0].End.Equal(date(2025, time.October, 15)) {
		t.Errorf("end = %s, want 2025-10-15", boundaries[0].End.Format("2006-01-02"))
	}
}

func TestResolveDueDateRollsForward(t *testing.T) {
	tests := []struct {
		name    string
		in      GenerateInput
		end     time.Time
		wantDue time.Time
	}{
		{
			name: "Due After End Stays In Month",
			in: GenerateInput{
				DueDateType: account.DateTypeSameDay,
				DueAnchor:   30,
			},
			end:     date(2025, time.September, 15),
			wantDue: date(2025, time.September, 30),
		},
		{
			name: "Due Before End Rolls Forward",
			in: GenerateInput{
				DueDateType: account.DateTypeSameDay,
				DueAnchor:   10,
			},
			end:     date(2025, time.September, 28),
			wantDue: date(2025, time.October, 10),
		},
		{
			name: "Due Equal To End Rolls Forward",
			in: GenerateInput{
				DueDateType: account.DateTypeSameDay,
				DueAnchor:   28,
			},
			end:     date(2025, time.September, 28),
			wantDue: date(2025, time.October, 28),
		},
		{
			name: "Days Before End Due Policy",
			in: GenerateInput{
				DueDateType: account.DateTypeDaysBeforeEnd,
				DueAnchor:   3,
			},
			end:     date(2025, time.September, 28),
			wantDue: date(2025, time.October, 28), // Sep 27 <= end, next month: 31-3=28
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveDueDate(tt.in, tt.end)
			if !got.Equal(tt.wantDue) {
				t.Errorf("resolveDueDate(end=%s) = %s, want %s",
					tt.end.Format("2006-01-02"), got.Format("2006-01-02"), tt.wantDue.Format("2006-01-02"))
			}
		})
	}
}

func TestMonthStartAvoidsAddDateOverflow(t *testing.T) {
	// time.AddDate(0, -1, 0) on March 31 lands in March again; monthStart
	// must not.
	got := monthStart(date(2025, time.March, 31), -1)
	if !got.Equal(date(2025, time.February, 1)) {
		t.Errorf("monthStart(2025-03-31, -1) = %s, want 2025-02-01", got.Format("2006-01-02"))
	}

	got = monthStart(date(2025, time.December, 15), 1)
	if !got.Equal(date(2026, time.January, 1)) {
		t.Errorf("monthStart(2025-12-15, +1) = %s, want 2026-01-01", got.Format("2006-01-02"))
	}
}
