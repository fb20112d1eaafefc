package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportAccount is a single account with its computed balance on the
// account's normal side.
type ReportAccount struct {
	AccountID   int32           `json:"accountId"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Balance     decimal.Decimal `json:"balance"`
}

// AccountTypeGroup groups report accounts under their account type.
type AccountTypeGroup struct {
	AccountTypeID   int32           `json:"accountTypeId"`
	AccountTypeCode string          `json:"accountTypeCode"`
	AccountTypeName string          `json:"accountTypeName"`
	Accounts        []ReportAccount `json:"accounts"`
	Total           decimal.Decimal `json:"total"`
}

type ProfitLossReport struct {
	StartDate     time.Time          `json:"startDate"`
	EndDate       time.Time          `json:"endDate"`
	Revenue       []AccountTypeGroup `json:"revenue"`
	Expenses      []AccountTypeGroup `json:"expenses"`
	TotalRevenue  decimal.Decimal    `json:"totalRevenue"`
	TotalExpenses decimal.Decimal    `json:"totalExpenses"`
	NetIncome     decimal.Decimal    `json:"netIncome"`
}

// RetainedEarnings is the synthetic equity entry that carries accumulated
// net income onto the balance sheet so that assets equal liabilities plus
// equity.
type RetainedEarnings struct {
	PriorYears  decimal.Decimal `json:"priorYears"`
	CurrentYear decimal.Decimal `json:"currentYear"`
	Total       decimal.Decimal `json:"total"`
}

type BalanceSheetReport struct {
	AsOfDate                  time.Time          `json:"asOfDate"`
	Assets                    []AccountTypeGroup `json:"assets"`
	Liabilities               []AccountTypeGroup `json:"liabilities"`
	Equity                    []AccountTypeGroup `json:"equity"`
	RetainedEarnings          RetainedEarnings   `json:"retainedEarnings"`
	TotalAssets               decimal.Decimal    `json:"totalAssets"`
	TotalLiabilities          decimal.Decimal    `json:"totalLiabilities"`
	TotalEquity               decimal.Decimal    `json:"totalEquity"`
	TotalLiabilitiesAndEquity decimal.Decimal    `json:"totalLiabilitiesAndEquity"`
}

// BusinessSubtotal nests one business's accounts inside a combined report
// group.
type BusinessSubtotal struct {
	BusinessID   int32           `json:"businessId"`
	BusinessName string          `json:"businessName"`
	Accounts     []ReportAccount `json:"accounts"`
	Total        decimal.Decimal `json:"total"`
}

type CombinedTypeGroup struct {
	AccountTypeCode string             `json:"accountTypeCode"`
	AccountTypeName string             `json:"accountTypeName"`
	Businesses      []BusinessSubtotal `json:"businesses"`
	Total           decimal.Decimal    `json:"total"`
}

type CombinedProfitLossReport struct {
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	Revenue       []CombinedTypeGroup `json:"revenue"`
	Expenses      []CombinedTypeGroup `json:"expenses"`
	TotalRevenue  decimal.Decimal     `json:"totalRevenue"`
	TotalExpenses decimal.Decimal     `json:"totalExpenses"`
	NetIncome     decimal.Decimal     `json:"netIncome"`
}

// ImportResult summarizes one CSV import run. Errors are row-level messages;
// a row error never aborts the run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}
