package importer

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date layouts tried in order. Month-first layouts come before day-first,
// so an ambiguous date like 03/04/2021 resolves as March 4.
var dateLayouts = []string{
	"1/2/06",
	"1/2/2006",
	"2006-1-2",
	"1-2-2006",
	"2/1/2006",
	"2/1/06",
}

var slashDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)

var (
	ErrBadDate   = errors.New("unrecognized date")
	ErrBadAmount = errors.New("unrecognized amount")
)

// ParseDate parses a statement date. Two-digit years pivot at 50: 00-49 map
// to 2000-2049 and 50-99 to 1950-1999. Go's own two-digit mapping puts
// 50-68 in the 2000s, so those parses are shifted back a century.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrBadDate
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "/06") && t.Year() >= 2050 {
			t = t.AddDate(-100, 0, 0)
		}
		return t, nil
	}

	// Loose month/day/year fallback for inputs the fixed layouts reject,
	// like 4-digit years with single-digit month and day plus stray spaces.
	if m := slashDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes out-of-range values; reject those.
		if int(t.Month()) != month || t.Day() != day {
			return time.Time{}, ErrBadDate
		}
		return t, nil
	}

	return time.Time{}, ErrBadDate
}

var amountCleaner = strings.NewReplacer("$", "", ",", "")

// ParseAmount parses a money cell, tolerating currency symbols, thousands
// separators and surrounding whitespace.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(amountCleaner.Replace(s))
	if cleaned == "" {
		return decimal.Zero, ErrBadAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrBadAmount
	}
	return d, nil
}
