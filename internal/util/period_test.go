package util

import (
	"testing"
	"time"
)

func TestYearWindow(t *testing.T) {
	start := YearStart(2024)
	end := YearEnd(2024)

	if start.Year() != 2024 || start.Month() != time.January || start.Day() != 1 {
		t.Errorf("YearStart(2024) = %v, want 2024-01-01", start)
	}
	if end.Year() != 2024 || end.Month() != time.December || end.Day() != 31 {
		t.Errorf("YearEnd(2024) = %v, want 2024-12-31", end)
	}
	if !end.After(start) {
		t.Errorf("Expected year end %v after year start %v", end, start)
	}
}

func TestPriorYearEnd(t *testing.T) {
	tests := []struct {
		asOf time.Time
		want time.Time
	}{
		{time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := PriorYearEnd(tt.asOf)
		if !got.Equal(tt.want) {
			t.Errorf("PriorYearEnd(%v) = %v, want %v", tt.asOf, got, tt.want)
		}
	}
}
