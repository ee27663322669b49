package cycle

import (
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
)

// defaultAnchorDay keeps anchor resolution total when an account carries no
// anchor configuration at all: day 31 clamps to the last day of every month.
const defaultAnchorDay = 31

// ResolveAnchor computes the concrete calendar date an anchor policy picks
// within the given month.
//
//   - same_day(n): day n, clamped to the last valid day of shorter months.
//   - days_before_end(n): (last day of month) - n, floored at day 1.
//   - dynamic_anchor(n): placed exactly like same_day(n). The distinct tag
//     marks cycles whose anchor tracks an account-specific recurring event;
//     drift correction is a future refinement and is intentionally not
//     implemented here.
//
// Anchor values are validated at the account-update boundary; out-of-range
// values arriving here fall back to the end-of-month default rather than
// failing.
func ResolveAnchor(dateType string, anchor int, year int, month time.Month) time.Time {
	if anchor < 1 || anchor > 31 {
		anchor = defaultAnchorDay
	}

	last := daysInMonth(year, month)

	var day int
	switch dateType {
	case account.DateTypeDaysBeforeEnd:
		day = last - anchor
		if day < 1 {
			day = 1
		}
	case account.DateTypeSameDay, account.DateTypeDynamicAnchor:
		day = anchor
		if day > last {
			day = last
		}
	default:
		// Unknown type: treat as end of month to keep generation total.
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysInMonth returns the number of days in the given month. Uses time.Date
// day-zero normalization: day 0 of month+1 is the last day of month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
