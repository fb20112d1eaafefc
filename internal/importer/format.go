// Package importer contains the pure CSV mechanics of statement import:
// header detection, format classification and field parsing. It knows
// nothing about persistence; the service layer turns parsed rows into
// ledger transactions.
package importer

import (
	"encoding/csv"
	"errors"
	"strings"
)

// Format identifies the layout of a bank statement CSV.
type Format int

const (
	FormatUnknown Format = iota
	// FormatTypeBased has a Type column naming the bank's transaction type
	// (Chase-style: Details, Posting Date, Description, Amount, Type,
	// Balance, Check or Slip #).
	FormatTypeBased
	// FormatSignBased has a single signed Amount column; negative means
	// money out.
	FormatSignBased
	// FormatColumnar has separate Credit and Debit columns.
	FormatColumnar
)

func (f Format) String() string {
	switch f {
	case FormatTypeBased:
		return "type-based"
	case FormatSignBased:
		return "sign-based"
	case FormatColumnar:
		return "columnar"
	}
	return "unknown"
}

// Canonical column names after alias normalization.
const (
	ColDetails     = "Details"
	ColPostingDate = "Posting Date"
	ColDescription = "Description"
	ColAmount      = "Amount"
	ColType        = "Type"
	ColBalance     = "Balance"
	ColCredit      = "Credit"
	ColDebit       = "Debit"
	ColReference   = "Check or Slip #"
)

// MaxHeaderScan is the number of physical lines searched for a header row.
// Banks put preamble above the header; anything deeper is not a statement.
const MaxHeaderScan = 20

// ErrNoHeaderFound is returned when no line within MaxHeaderScan lines
// matches a known statement layout.
var ErrNoHeaderFound = errors.New("no recognizable header row within first 20 lines")

// canonicalColumns maps lower-cased header cells to their canonical names,
// folding the known aliases (Date for Posting Date, the Running Bal.
// variants for Balance).
var canonicalColumns = map[string]string{
	"details":         ColDetails,
	"posting date":    ColPostingDate,
	"date":            ColPostingDate,
	"description":     ColDescription,
	"amount":          ColAmount,
	"type":            ColType,
	"balance":         ColBalance,
	"running bal.":    ColBalance,
	"running balance": ColBalance,
	"running bal":     ColBalance,
	"credit":          ColCredit,
	"debit":           ColDebit,
	"check or slip #": ColReference,
}

// Layout describes a detected statement layout: the classified format, the
// 0-based physical line index of the header row, and the column index of
// each canonical column present.
type Layout struct {
	Format     Format
	HeaderLine int
	Columns    map[string]int
}

// Has reports whether the layout carries the given canonical column.
func (l *Layout) Has(col string) bool {
	_, ok := l.Columns[col]
	return ok
}

// DetectLayout scans the first MaxHeaderScan physical lines for a header row
// and classifies its format. Lines beyond the scan window are never
// considered, even if one of them would match.
func DetectLayout(lines []string) (*Layout, error) {
	limit := len(lines)
	if limit > MaxHeaderScan {
		limit = MaxHeaderScan
	}

	for i := 0; i < limit; i++ {
		fields, err := SplitLine(lines[i])
		if err != nil {
			continue
		}

		cols := make(map[string]int)
		for idx, field := range fields {
			name := strings.TrimSpace(field)
			if canonical, ok := canonicalColumns[strings.ToLower(name)]; ok {
				if _, seen := cols[canonical]; !seen {
					cols[canonical] = idx
				}
			}
		}

		format := classify(cols)
		if format == FormatUnknown {
			continue
		}
		return &Layout{Format: format, HeaderLine: i, Columns: cols}, nil
	}

	return nil, ErrNoHeaderFound
}

// classify decides the format from the canonical columns present. Order
// matters: a type-based header also carries Amount and Balance, so the Type
// column is checked first; columnar has no Amount column, so it cannot be
// confused with sign-based.
func classify(cols map[string]int) Format {
	has := func(names ...string) bool {
		for _, n := range names {
			if _, ok := cols[n]; !ok {
				return false
			}
		}
		return true
	}

	switch {
	case has(ColPostingDate, ColDescription, ColAmount, ColType):
		return FormatTypeBased
	case has(ColPostingDate, ColDescription, ColCredit, ColDebit, ColBalance):
		return FormatColumnar
	case has(ColPostingDate, ColDescription, ColAmount, ColBalance):
		return FormatSignBased
	}
	return FormatUnknown
}

// SplitLine tokenizes one physical CSV line, honoring quoted fields with
// embedded commas and doubled quotes. Each line gets a fresh reader so row
// numbering stays physical.
func SplitLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	return fields, nil
}
