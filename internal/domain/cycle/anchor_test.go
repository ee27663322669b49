package cycle

import (
	"testing"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
)

func TestResolveAnchor(t *testing.T) {
	tests := []struct {
		name     string
		dateType string
		anchor   int
		year     int
		month    time.Month
		wantDay  int
	}{
		{name: "Same Day", dateType: account.DateTypeSameDay, anchor: 15, year: 2025, month: time.September, wantDay: 15},
		{name: "Same Day Clamped In February", dateType: account.DateTypeSameDay, anchor: 31, year: 2025, month: time.February, wantDay: 28},
		{name: "Same Day Clamped In 30-Day Month", dateType: account.DateTypeSameDay, anchor: 31, year: 2025, month: time.April, wantDay: 30},
		{name: "Same Day Leap February", dateType: account.DateTypeSameDay, anchor: 30, year: 2024, month: time.February, wantDay: 29},
		{name: "Days Before End In 30-Day Month", dateType: account.DateTypeDaysBeforeEnd, anchor: 3, year: 2025, month: time.September, wantDay: 27},
		{name: "Days Before End In February", dateType: account.DateTypeDaysBeforeEnd, anchor: 3, year: 2025, month: time.February, wantDay: 25},
		{name: "Days Before End Floored At One", dateType: account.DateTypeDaysBeforeEnd, anchor: 30, year: 2025, month: time.February, wantDay: 1},
		{name: "Dynamic Anchor Behaves Like Same Day", dateType: account.DateTypeDynamicAnchor, anchor: 28, year: 2025, month: time.July, wantDay: 28},
		{name: "Dynamic Anchor Clamped", dateType: account.DateTypeDynamicAnchor, anchor: 31, year: 2025, month: time.June, wantDay: 30},
		{name: "Out Of Range Anchor Falls Back To End Of Month", dateType: account.DateTypeSameDay, anchor: 0, year: 2025, month: time.September, wantDay: 30},
		{name: "Unknown Type Falls Back To End Of Month", dateType: "quarterly", anchor: 10, year: 2025, month: time.November, wantDay: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveAnchor(tt.dateType, tt.anchor, tt.year, tt.month)
			want := time.Date(tt.year, tt.month, tt.wantDay, 0, 0, 0, 0, time.UTC)
			if !got.Equal(want) {
				t.Errorf("ResolveAnchor(%s, %d, %d-%02d) = %s, want %s",
					tt.dateType, tt.anchor, tt.year, tt.month,
					got.Format("2006-01-02"), want.Format("2006-01-02"))
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}

	for _, tt := range tests {
		if got := daysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("daysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
