package util

import "time"

// YearStart returns January 1 of the given year in UTC.
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// YearEnd returns December 31 of the given year in UTC.
func YearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// PriorYearEnd returns December 31 of the year before t's year. Balance
// sheets use it as the boundary between prior-year retained earnings and
// current-year net income.
func PriorYearEnd(t time.Time) time.Time {
	return YearEnd(t.Year() - 1)
}
