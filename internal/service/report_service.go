package service

import (
	"sort"
	"time"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/util"
	"github.com/shopspring/decimal"
)

// minReportBalance filters accounts whose balance rounds to zero out of
// reports.
var minReportBalance = decimal.New(1, -2) // 0.01

// ReportService computes financial reports. Reports are pure reads: an
// unknown business yields a zero-valued report, never an error.
type ReportService struct {
	accountRepo     domain.AccountRepository
	transactionRepo domain.TransactionRepository
	businessRepo    domain.BusinessRepository
}

// NewReportService creates a new ReportService
func NewReportService(accountRepo domain.AccountRepository, transactionRepo domain.TransactionRepository, businessRepo domain.BusinessRepository) *ReportService {
	return &ReportService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		businessRepo:    businessRepo,
	}
}

// normalBalance computes an account's report balance on its normal side:
// debits minus credits for DEBIT-normal accounts, the reverse for
// CREDIT-normal ones.
func normalBalance(account *domain.Account, activity *domain.AccountActivity) decimal.Decimal {
	if activity == nil {
		return decimal.Zero
	}
	if account.Type.NormalBalance == domain.NormalBalanceDebit {
		return activity.TotalDebits.Sub(activity.TotalCredits)
	}
	return activity.TotalCredits.Sub(activity.TotalDebits)
}

func activityMap(activities []*domain.AccountActivity) map[int32]*domain.AccountActivity {
	m := make(map[int32]*domain.AccountActivity, len(activities))
	for _, a := range activities {
		m[a.AccountID] = a
	}
	return m
}

// groupByType buckets accounts with non-trivial balances under their
// account type, sorted by type name with accounts ordered by code.
func groupByType(accounts []*domain.Account, activity map[int32]*domain.AccountActivity, category domain.AccountCategory) ([]domain.AccountTypeGroup, decimal.Decimal) {
	byType := make(map[int32]*domain.AccountTypeGroup)
	total := decimal.Zero

	for _, account := range accounts {
		if account.Type == nil || account.Type.Category != category {
			continue
		}
		balance := normalBalance(account, activity[account.ID])
		if balance.Abs().LessThan(minReportBalance) {
			continue
		}

		group, ok := byType[account.Type.ID]
		if !ok {
			group = &domain.AccountTypeGroup{
				AccountTypeID:   account.Type.ID,
				AccountTypeCode: account.Type.Code,
				AccountTypeName: account.Type.Name,
				Accounts:        []domain.ReportAccount{},
				Total:           decimal.Zero,
			}
			byType[account.Type.ID] = group
		}
		group.Accounts = append(group.Accounts, domain.ReportAccount{
			AccountID:   account.ID,
			AccountCode: account.Code,
			AccountName: account.Name,
			Balance:     balance,
		})
		group.Total = group.Total.Add(balance)
		total = total.Add(balance)
	}

	groups := make([]domain.AccountTypeGroup, 0, len(byType))
	for _, group := range byType {
		sort.Slice(group.Accounts, func(i, j int) bool {
			return group.Accounts[i].AccountCode < group.Accounts[j].AccountCode
		})
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].AccountTypeName < groups[j].AccountTypeName
	})
	return groups, total
}

// ProfitLoss computes revenue and expenses over an inclusive date range
func (s *ReportService) ProfitLoss(businessID int32, startDate, endDate time.Time) (*domain.ProfitLossReport, error) {
	accounts, err := s.accountRepo.GetByCategories(businessID, []domain.AccountCategory{domain.CategoryRevenue, domain.CategoryExpense})
	if err != nil {
		return nil, err
	}
	activities, err := s.transactionRepo.SumActivityByAccount(businessID, &startDate, &endDate)
	if err != nil {
		return nil, err
	}
	activity := activityMap(activities)

	revenue, totalRevenue := groupByType(accounts, activity, domain.CategoryRevenue)
	expenses, totalExpenses := groupByType(accounts, activity, domain.CategoryExpense)

	return &domain.ProfitLossReport{
		StartDate:     startDate,
		EndDate:       endDate,
		Revenue:       revenue,
		Expenses:      expenses,
		TotalRevenue:  totalRevenue,
		TotalExpenses: totalExpenses,
		NetIncome:     totalRevenue.Sub(totalExpenses),
	}, nil
}

// BalanceSheet computes cumulative balances through asOfDate. Equity carries
// a synthetic Retained Earnings entry equal to cumulative net income through
// asOfDate, which is what makes assets equal liabilities plus equity.
func (s *ReportService) BalanceSheet(businessID int32, asOfDate time.Time) (*domain.BalanceSheetReport, error) {
	accounts, err := s.accountRepo.GetByCategories(businessID, []domain.AccountCategory{
		domain.CategoryAsset, domain.CategoryLiability, domain.CategoryEquity,
	})
	if err != nil {
		return nil, err
	}
	activities, err := s.transactionRepo.SumActivityByAccount(businessID, nil, &asOfDate)
	if err != nil {
		return nil, err
	}
	activity := activityMap(activities)

	assets, totalAssets := groupByType(accounts, activity, domain.CategoryAsset)
	liabilities, totalLiabilities := groupByType(accounts, activity, domain.CategoryLiability)
	equity, equityTotal := groupByType(accounts, activity, domain.CategoryEquity)

	retained, err := s.retainedEarnings(businessID, asOfDate)
	if err != nil {
		return nil, err
	}

	totalEquity := equityTotal.Add(retained.Total)

	return &domain.BalanceSheetReport{
		AsOfDate:                  asOfDate,
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		RetainedEarnings:          retained,
		TotalAssets:               totalAssets,
		TotalLiabilities:          totalLiabilities,
		TotalEquity:               totalEquity,
		TotalLiabilitiesAndEquity: totalLiabilities.Add(totalEquity),
	}, nil
}

// retainedEarnings splits cumulative net income through asOfDate into prior
// years and the current year.
func (s *ReportService) retainedEarnings(businessID int32, asOfDate time.Time) (domain.RetainedEarnings, error) {
	plAccounts, err := s.accountRepo.GetByCategories(businessID, []domain.AccountCategory{domain.CategoryRevenue, domain.CategoryExpense})
	if err != nil {
		return domain.RetainedEarnings{}, err
	}

	priorEnd := util.PriorYearEnd(asOfDate)
	prior, err := s.netIncome(businessID, plAccounts, nil, &priorEnd)
	if err != nil {
		return domain.RetainedEarnings{}, err
	}

	yearStart := util.YearStart(asOfDate.Year())
	current, err := s.netIncome(businessID, plAccounts, &yearStart, &asOfDate)
	if err != nil {
		return domain.RetainedEarnings{}, err
	}

	return domain.RetainedEarnings{
		PriorYears:  prior,
		CurrentYear: current,
		Total:       prior.Add(current),
	}, nil
}

// netIncome is total revenue minus total expenses over a window, unfiltered
// by the reporting threshold so the balance sheet identity holds exactly.
func (s *ReportService) netIncome(businessID int32, plAccounts []*domain.Account, startDate, endDate *time.Time) (decimal.Decimal, error) {
	activities, err := s.transactionRepo.SumActivityByAccount(businessID, startDate, endDate)
	if err != nil {
		return decimal.Zero, err
	}
	activity := activityMap(activities)

	net := decimal.Zero
	for _, account := range plAccounts {
		if account.Type == nil {
			continue
		}
		balance := normalBalance(account, activity[account.ID])
		switch account.Type.Category {
		case domain.CategoryRevenue:
			net = net.Add(balance)
		case domain.CategoryExpense:
			net = net.Sub(balance)
		}
	}
	return net, nil
}

// CombinedProfitLoss aggregates a P&L across businesses, nesting
// per-business subtotals inside each account type group. When businessIDs is
// empty, all active businesses are included.
func (s *ReportService) CombinedProfitLoss(businessIDs []int32, startDate, endDate time.Time) (*domain.CombinedProfitLossReport, error) {
	businesses, err := s.resolveBusinesses(businessIDs)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		code string
		name string
	}
	revenueGroups := make(map[groupKey]*domain.CombinedTypeGroup)
	expenseGroups := make(map[groupKey]*domain.CombinedTypeGroup)
	totalRevenue := decimal.Zero
	totalExpenses := decimal.Zero

	for _, business := range businesses {
		report, err := s.ProfitLoss(business.ID, startDate, endDate)
		if err != nil {
			return nil, err
		}
		totalRevenue = totalRevenue.Add(report.TotalRevenue)
		totalExpenses = totalExpenses.Add(report.TotalExpenses)

		merge := func(dst map[groupKey]*domain.CombinedTypeGroup, groups []domain.AccountTypeGroup) {
			for _, g := range groups {
				key := groupKey{code: g.AccountTypeCode, name: g.AccountTypeName}
				combined, ok := dst[key]
				if !ok {
					combined = &domain.CombinedTypeGroup{
						AccountTypeCode: g.AccountTypeCode,
						AccountTypeName: g.AccountTypeName,
						Businesses:      []domain.BusinessSubtotal{},
						Total:           decimal.Zero,
					}
					dst[key] = combined
				}
				combined.Businesses = append(combined.Businesses, domain.BusinessSubtotal{
					BusinessID:   business.ID,
					BusinessName: business.Name,
					Accounts:     g.Accounts,
					Total:        g.Total,
				})
				combined.Total = combined.Total.Add(g.Total)
			}
		}
		merge(revenueGroups, report.Revenue)
		merge(expenseGroups, report.Expenses)
	}

	flatten := func(src map[groupKey]*domain.CombinedTypeGroup) []domain.CombinedTypeGroup {
		groups := make([]domain.CombinedTypeGroup, 0, len(src))
		for _, g := range src {
			sort.Slice(g.Businesses, func(i, j int) bool {
				return g.Businesses[i].BusinessID < g.Businesses[j].BusinessID
			})
			groups = append(groups, *g)
		}
		sort.Slice(groups, func(i, j int) bool {
			return groups[i].AccountTypeName < groups[j].AccountTypeName
		})
		return groups
	}

	return &domain.CombinedProfitLossReport{
		StartDate:     startDate,
		EndDate:       endDate,
		Revenue:       flatten(revenueGroups),
		Expenses:      flatten(expenseGroups),
		TotalRevenue:  totalRevenue,
		TotalExpenses: totalExpenses,
		NetIncome:     totalRevenue.Sub(totalExpenses),
	}, nil
}

func (s *ReportService) resolveBusinesses(businessIDs []int32) ([]*domain.Business, error) {
	if len(businessIDs) == 0 {
		return s.businessRepo.GetAll(false)
	}
	businesses := make([]*domain.Business, 0, len(businessIDs))
	for _, id := range businessIDs {
		business, err := s.businessRepo.GetByID(id)
		if err != nil {
			// Unknown businesses contribute nothing rather than failing
			// the whole report
			continue
		}
		businesses = append(businesses, business)
	}
	return businesses, nil
}

// AccountDrilldown lists the transactions contributing to one account's
// report balance over a window.
func (s *ReportService) AccountDrilldown(businessID int32, accountID int32, startDate, endDate *time.Time) ([]*domain.AccountLedgerEntry, error) {
	return s.transactionRepo.GetAccountEntries(businessID, accountID, startDate, endDate)
}
