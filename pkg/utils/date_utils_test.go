package utils

import (
	"testing"
	"time"
)

func TestBusinessDayStart(t *testing.T) {
	loc := time.Local
	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			"late evening stays on its day",
			time.Date(2026, 3, 14, 23, 30, 0, 0, loc),
			time.Date(2026, 3, 14, 0, 0, 0, 0, loc),
		},
		{
			"one in the morning belongs to yesterday",
			time.Date(2026, 3, 15, 1, 0, 0, 0, loc),
			time.Date(2026, 3, 14, 0, 0, 0, 0, loc),
		},
		{
			"one second before cutoff belongs to yesterday",
			time.Date(2026, 3, 15, 4, 59, 59, 0, loc),
			time.Date(2026, 3, 14, 0, 0, 0, 0, loc),
		},
		{
			"cutoff starts the new day",
			time.Date(2026, 3, 15, 5, 0, 0, 0, loc),
			time.Date(2026, 3, 15, 0, 0, 0, 0, loc),
		},
		{
			"first of month rolls back across the month",
			time.Date(2026, 4, 1, 2, 0, 0, 0, loc),
			time.Date(2026, 3, 31, 0, 0, 0, 0, loc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BusinessDayStart(tt.at); !got.Equal(tt.want) {
				t.Errorf("BusinessDayStart(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestBusinessShiftWindow(t *testing.T) {
	loc := time.Local
	at := time.Date(2026, 3, 15, 14, 0, 0, 0, loc)

	start := BusinessShiftStart(at)
	wantStart := time.Date(2026, 3, 15, 5, 0, 0, 0, loc)
	if !start.Equal(wantStart) {
		t.Errorf("BusinessShiftStart = %v, want %v", start, wantStart)
	}

	end := BusinessShiftEnd(at)
	wantEnd := time.Date(2026, 3, 16, 5, 0, 0, 0, loc).Add(-time.Nanosecond)
	if !end.Equal(wantEnd) {
		t.Errorf("BusinessShiftEnd = %v, want %v", end, wantEnd)
	}

	// 02:00 the next morning is still inside the same shift.
	early := time.Date(2026, 3, 16, 2, 0, 0, 0, loc)
	if got := BusinessShiftStart(early); !got.Equal(wantStart) {
		t.Errorf("BusinessShiftStart(%v) = %v, want %v", early, got, wantStart)
	}
}
