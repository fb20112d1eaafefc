package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLayoutTypeBased(t *testing.T) {
	lines := []string{
		"Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #",
		"DEBIT,01/15/2024,COFFEE SHOP,-4.50,DEBIT_CARD,995.50,",
	}

	layout, err := DetectLayout(lines)
	require.NoError(t, err)
	assert.Equal(t, FormatTypeBased, layout.Format)
	assert.Equal(t, 0, layout.HeaderLine)
	assert.Equal(t, 1, layout.Columns[ColPostingDate])
	assert.Equal(t, 4, layout.Columns[ColType])
	assert.Equal(t, 6, layout.Columns[ColReference])
}

func TestDetectLayoutSignBased(t *testing.T) {
	lines := []string{
		"Posting Date,Description,Amount,Balance",
	}

	layout, err := DetectLayout(lines)
	require.NoError(t, err)
	assert.Equal(t, FormatSignBased, layout.Format)
}

func TestDetectLayoutColumnar(t *testing.T) {
	lines := []string{
		"Date,Description,Credit,Debit,Balance",
	}

	layout, err := DetectLayout(lines)
	require.NoError(t, err)
	assert.Equal(t, FormatColumnar, layout.Format)
	// Date aliases to Posting Date.
	assert.Equal(t, 0, layout.Columns[ColPostingDate])
}

func TestDetectLayoutAliases(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   Format
	}{
		{"date alias", "Date,Description,Amount,Balance", FormatSignBased},
		{"running bal dot", "Posting Date,Description,Amount,Running Bal.", FormatSignBased},
		{"running balance", "Date,Description,Amount,Running Balance", FormatSignBased},
		{"running bal bare", "Date,Description,Amount,Running Bal", FormatSignBased},
		{"case insensitive", "DATE,DESCRIPTION,AMOUNT,BALANCE", FormatSignBased},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout, err := DetectLayout([]string{tc.header})
			require.NoError(t, err)
			assert.Equal(t, tc.want, layout.Format)
			assert.True(t, layout.Has(ColBalance))
		})
	}
}

func TestDetectLayoutSkipsPreamble(t *testing.T) {
	lines := []string{
		"First National Bank",
		"Statement Period: 01/01/2024 - 01/31/2024",
		"",
		"Account: ****1234",
		"Posting Date,Description,Amount,Balance",
		"01/15/2024,COFFEE,-4.50,995.50",
	}

	layout, err := DetectLayout(lines)
	require.NoError(t, err)
	assert.Equal(t, 4, layout.HeaderLine)
	assert.Equal(t, FormatSignBased, layout.Format)
}

func TestDetectLayoutHeaderAtScanBoundary(t *testing.T) {
	header := "Posting Date,Description,Amount,Balance"

	// Header on physical line 20 (index 19) is found.
	lines := make([]string, 19)
	for i := range lines {
		lines[i] = "preamble"
	}
	lines = append(lines, header)

	layout, err := DetectLayout(lines)
	require.NoError(t, err)
	assert.Equal(t, 19, layout.HeaderLine)

	// Header on physical line 21 (index 20) is not.
	lines = append(make([]string, 20), header)
	for i := 0; i < 20; i++ {
		lines[i] = "preamble"
	}
	_, err = DetectLayout(lines)
	assert.ErrorIs(t, err, ErrNoHeaderFound)
}

func TestDetectLayoutNoHeader(t *testing.T) {
	_, err := DetectLayout([]string{"just,some,data", "more,data,here"})
	assert.ErrorIs(t, err, ErrNoHeaderFound)

	_, err = DetectLayout(nil)
	assert.ErrorIs(t, err, ErrNoHeaderFound)
}

func TestClassifyPrefersTypeOverSignBased(t *testing.T) {
	// A type-based header also has Amount and Balance; Type must win.
	lines := []string{"Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #"}

	layout, err := DetectLayout(lines)
	require.NoError(t, err)
	assert.Equal(t, FormatTypeBased, layout.Format)
}

func TestSplitLineQuotedFields(t *testing.T) {
	fields, err := SplitLine(`01/15/2024,"ACME, INC. PAYROLL",1000.00,2000.00`)
	require.NoError(t, err)
	require.Len(t, fields, 4)
	assert.Equal(t, "ACME, INC. PAYROLL", fields[1])

	fields, err = SplitLine(`01/15/2024,"SAY ""HELLO"" LLC",-25.00,975.00`)
	require.NoError(t, err)
	assert.Equal(t, `SAY "HELLO" LLC`, fields[1])
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "type-based", FormatTypeBased.String())
	assert.Equal(t, "sign-based", FormatSignBased.String())
	assert.Equal(t, "columnar", FormatColumnar.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
	assert.True(t, strings.Contains(ErrNoHeaderFound.Error(), "20"))
}
