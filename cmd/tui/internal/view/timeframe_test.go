package view_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/receipts/cmd/tui/internal/view"
)

func TestTimeframe_Contains(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tf   view.Timeframe
		day  time.Time
		want bool
	}{
		{name: "AllKeepsUndated", tf: view.TimeframeAll, day: time.Time{}, want: true},
		{name: "UndatedOutsideAll", tf: view.TimeframeThisMonth, day: time.Time{}, want: false},
		{name: "ThisWeekMonday", tf: view.TimeframeThisWeek, day: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), want: true},
		{name: "ThisWeekPreviousSunday", tf: view.TimeframeThisWeek, day: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), want: false},
		{name: "LastWeekSunday", tf: view.TimeframeLastWeek, day: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), want: true},
		{name: "LastWeekMonday", tf: view.TimeframeLastWeek, day: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), want: true},
		{name: "ThisMonthFirst", tf: view.TimeframeThisMonth, day: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), want: true},
		{name: "LastMonthEnd", tf: view.TimeframeLastMonth, day: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), want: true},
		{name: "LastMonthExcludesThisMonth", tf: view.TimeframeLastMonth, day: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tf.Contains(tt.day, now))
		})
	}
}

func TestTimeframe_NextCycles(t *testing.T) {
	tf := view.TimeframeAll
	for range 5 {
		tf = tf.Next()
	}

	assert.Equal(t, view.TimeframeAll, tf)
}
