package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/service"
	"github.com/ledgerline/ledgerline-backend/internal/util"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles financial report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportAccountResponse represents one account line in a report
type ReportAccountResponse struct {
	AccountID   int32  `json:"accountId"`
	AccountCode string `json:"accountCode"`
	AccountName string `json:"accountName"`
	Balance     string `json:"balance"`
}

// TypeGroupResponse represents accounts grouped under one account type
type TypeGroupResponse struct {
	AccountTypeID   int32                   `json:"accountTypeId"`
	AccountTypeCode string                  `json:"accountTypeCode"`
	AccountTypeName string                  `json:"accountTypeName"`
	Accounts        []ReportAccountResponse `json:"accounts"`
	Total           string                  `json:"total"`
}

// ProfitLossResponse represents a P&L report
type ProfitLossResponse struct {
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Revenue       []TypeGroupResponse `json:"revenue"`
	Expenses      []TypeGroupResponse `json:"expenses"`
	TotalRevenue  string              `json:"totalRevenue"`
	TotalExpenses string              `json:"totalExpenses"`
	NetIncome     string              `json:"netIncome"`
}

// RetainedEarningsResponse represents the synthetic retained earnings entry
type RetainedEarningsResponse struct {
	PriorYears  string `json:"priorYears"`
	CurrentYear string `json:"currentYear"`
	Total       string `json:"total"`
}

// BalanceSheetResponse represents a balance sheet report
type BalanceSheetResponse struct {
	AsOfDate                  string                   `json:"asOfDate"`
	Assets                    []TypeGroupResponse      `json:"assets"`
	Liabilities               []TypeGroupResponse      `json:"liabilities"`
	Equity                    []TypeGroupResponse      `json:"equity"`
	RetainedEarnings          RetainedEarningsResponse `json:"retainedEarnings"`
	TotalAssets               string                   `json:"totalAssets"`
	TotalLiabilities          string                   `json:"totalLiabilities"`
	TotalEquity               string                   `json:"totalEquity"`
	TotalLiabilitiesAndEquity string                   `json:"totalLiabilitiesAndEquity"`
}

// BusinessSubtotalResponse represents one business's share of a combined group
type BusinessSubtotalResponse struct {
	BusinessID   int32                   `json:"businessId"`
	BusinessName string                  `json:"businessName"`
	Accounts     []ReportAccountResponse `json:"accounts"`
	Total        string                  `json:"total"`
}

// CombinedTypeGroupResponse represents one account type across businesses
type CombinedTypeGroupResponse struct {
	AccountTypeCode string                     `json:"accountTypeCode"`
	AccountTypeName string                     `json:"accountTypeName"`
	Businesses      []BusinessSubtotalResponse `json:"businesses"`
	Total           string                     `json:"total"`
}

// CombinedProfitLossResponse represents a cross-business P&L report
type CombinedProfitLossResponse struct {
	StartDate     string                      `json:"startDate"`
	EndDate       string                      `json:"endDate"`
	Revenue       []CombinedTypeGroupResponse `json:"revenue"`
	Expenses      []CombinedTypeGroupResponse `json:"expenses"`
	TotalRevenue  string                      `json:"totalRevenue"`
	TotalExpenses string                      `json:"totalExpenses"`
	NetIncome     string                      `json:"netIncome"`
}

// LedgerEntryResponse represents one drill-down ledger entry
type LedgerEntryResponse struct {
	TransactionID int32   `json:"transactionId"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	Reference     *string `json:"reference,omitempty"`
	Type          string  `json:"type"`
	DebitAmount   string  `json:"debitAmount"`
	CreditAmount  string  `json:"creditAmount"`
}

// reportWindow resolves startDate/endDate query params, with ?year as a
// shorthand for the whole calendar year.
func reportWindow(c echo.Context) (time.Time, time.Time, error) {
	if v := c.QueryParam("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 {
			return time.Time{}, time.Time{}, errors.New("Invalid year")
		}
		return util.YearStart(year), util.YearEnd(year), nil
	}

	start, ok := queryDate(c, "startDate")
	if !ok || start == nil {
		return time.Time{}, time.Time{}, errors.New("startDate is required (YYYY-MM-DD) unless year is given")
	}
	end, ok := queryDate(c, "endDate")
	if !ok || end == nil {
		return time.Time{}, time.Time{}, errors.New("endDate is required (YYYY-MM-DD) unless year is given")
	}
	if end.Before(*start) {
		return time.Time{}, time.Time{}, errors.New("endDate must not precede startDate")
	}
	return *start, *end, nil
}

// ProfitLoss handles GET /api/v1/businesses/:businessId/reports/profit-loss
func (h *ReportHandler) ProfitLoss(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	start, end, err := reportWindow(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	report, err := h.reportService.ProfitLoss(businessID, start, end)
	if err != nil {
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to build profit and loss report")
		return NewInternalError(c, "Failed to build report")
	}

	return c.JSON(http.StatusOK, ProfitLossResponse{
		StartDate:     report.StartDate.Format(dateLayout),
		EndDate:       report.EndDate.Format(dateLayout),
		Revenue:       toTypeGroupResponses(report.Revenue),
		Expenses:      toTypeGroupResponses(report.Expenses),
		TotalRevenue:  report.TotalRevenue.StringFixed(2),
		TotalExpenses: report.TotalExpenses.StringFixed(2),
		NetIncome:     report.NetIncome.StringFixed(2),
	})
}

// BalanceSheet handles GET /api/v1/businesses/:businessId/reports/balance-sheet
func (h *ReportHandler) BalanceSheet(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	var asOf time.Time
	if v := c.QueryParam("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 {
			return NewValidationError(c, "Invalid year", nil)
		}
		asOf = util.YearEnd(year)
	} else {
		date, ok := queryDate(c, "asOfDate")
		if !ok {
			return NewValidationError(c, "Invalid asOfDate, expected YYYY-MM-DD", nil)
		}
		if date == nil {
			return NewValidationError(c, "asOfDate is required (YYYY-MM-DD) unless year is given", nil)
		}
		asOf = *date
	}

	report, err := h.reportService.BalanceSheet(businessID, asOf)
	if err != nil {
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to build balance sheet")
		return NewInternalError(c, "Failed to build report")
	}

	return c.JSON(http.StatusOK, BalanceSheetResponse{
		AsOfDate:    report.AsOfDate.Format(dateLayout),
		Assets:      toTypeGroupResponses(report.Assets),
		Liabilities: toTypeGroupResponses(report.Liabilities),
		Equity:      toTypeGroupResponses(report.Equity),
		RetainedEarnings: RetainedEarningsResponse{
			PriorYears:  report.RetainedEarnings.PriorYears.StringFixed(2),
			CurrentYear: report.RetainedEarnings.CurrentYear.StringFixed(2),
			Total:       report.RetainedEarnings.Total.StringFixed(2),
		},
		TotalAssets:               report.TotalAssets.StringFixed(2),
		TotalLiabilities:          report.TotalLiabilities.StringFixed(2),
		TotalEquity:               report.TotalEquity.StringFixed(2),
		TotalLiabilitiesAndEquity: report.TotalLiabilitiesAndEquity.StringFixed(2),
	})
}

// CombinedProfitLoss handles GET /api/v1/reports/combined-profit-loss.
// businessIds is a comma-separated list; empty means all active businesses.
func (h *ReportHandler) CombinedProfitLoss(c echo.Context) error {
	start, end, err := reportWindow(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	var businessIDs []int32
	if v := c.QueryParam("businessIds"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || id <= 0 {
				return NewValidationError(c, "Invalid businessIds", nil)
			}
			businessIDs = append(businessIDs, int32(id))
		}
	}

	report, err := h.reportService.CombinedProfitLoss(businessIDs, start, end)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build combined profit and loss report")
		return NewInternalError(c, "Failed to build report")
	}

	return c.JSON(http.StatusOK, CombinedProfitLossResponse{
		StartDate:     report.StartDate.Format(dateLayout),
		EndDate:       report.EndDate.Format(dateLayout),
		Revenue:       toCombinedGroupResponses(report.Revenue),
		Expenses:      toCombinedGroupResponses(report.Expenses),
		TotalRevenue:  report.TotalRevenue.StringFixed(2),
		TotalExpenses: report.TotalExpenses.StringFixed(2),
		NetIncome:     report.NetIncome.StringFixed(2),
	})
}

// AccountDrilldown handles GET /api/v1/businesses/:businessId/accounts/:id/transactions
func (h *ReportHandler) AccountDrilldown(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}
	accountID, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	start, ok := queryDate(c, "startDate")
	if !ok {
		return NewValidationError(c, "Invalid startDate, expected YYYY-MM-DD", nil)
	}
	end, ok := queryDate(c, "endDate")
	if !ok {
		return NewValidationError(c, "Invalid endDate, expected YYYY-MM-DD", nil)
	}

	entries, err := h.reportService.AccountDrilldown(businessID, accountID, start, end)
	if err != nil {
		log.Error().Err(err).Int32("business_id", businessID).Int32("account_id", accountID).Msg("Failed to load account entries")
		return NewInternalError(c, "Failed to load account entries")
	}

	response := make([]LedgerEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = LedgerEntryResponse{
			TransactionID: entry.TransactionID,
			Date:          entry.Date.Format(dateLayout),
			Description:   entry.Description,
			Reference:     entry.Reference,
			Type:          string(entry.Type),
			DebitAmount:   entry.DebitAmount.StringFixed(2),
			CreditAmount:  entry.CreditAmount.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

func toTypeGroupResponses(groups []domain.AccountTypeGroup) []TypeGroupResponse {
	response := make([]TypeGroupResponse, len(groups))
	for i, group := range groups {
		response[i] = TypeGroupResponse{
			AccountTypeID:   group.AccountTypeID,
			AccountTypeCode: group.AccountTypeCode,
			AccountTypeName: group.AccountTypeName,
			Accounts:        toReportAccountResponses(group.Accounts),
			Total:           group.Total.StringFixed(2),
		}
	}
	return response
}

func toCombinedGroupResponses(groups []domain.CombinedTypeGroup) []CombinedTypeGroupResponse {
	response := make([]CombinedTypeGroupResponse, len(groups))
	for i, group := range groups {
		businesses := make([]BusinessSubtotalResponse, len(group.Businesses))
		for j, business := range group.Businesses {
			businesses[j] = BusinessSubtotalResponse{
				BusinessID:   business.BusinessID,
				BusinessName: business.BusinessName,
				Accounts:     toReportAccountResponses(business.Accounts),
				Total:        business.Total.StringFixed(2),
			}
		}
		response[i] = CombinedTypeGroupResponse{
			AccountTypeCode: group.AccountTypeCode,
			AccountTypeName: group.AccountTypeName,
			Businesses:      businesses,
			Total:           group.Total.StringFixed(2),
		}
	}
	return response
}

func toReportAccountResponses(accounts []domain.ReportAccount) []ReportAccountResponse {
	response := make([]ReportAccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = ReportAccountResponse{
			AccountID:   account.AccountID,
			AccountCode: account.AccountCode,
			AccountName: account.AccountName,
			Balance:     account.Balance.StringFixed(2),
		}
	}
	return response
}
