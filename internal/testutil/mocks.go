// Package testutil provides in-memory repository implementations used by
// service unit tests.
package testutil

import (
	"sort"
	"strings"
	"time"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockBusinessRepository is an in-memory implementation of domain.BusinessRepository
type MockBusinessRepository struct {
	Businesses map[int32]*domain.Business
	NextID     int32
}

func NewMockBusinessRepository() *MockBusinessRepository {
	return &MockBusinessRepository{
		Businesses: make(map[int32]*domain.Business),
		NextID:     1,
	}
}

// AddBusiness adds a business directly to the mock's storage
func (m *MockBusinessRepository) AddBusiness(b *domain.Business) {
	if b.ID == 0 {
		b.ID = m.NextID
	}
	if b.ID >= m.NextID {
		m.NextID = b.ID + 1
	}
	m.Businesses[b.ID] = b
}

func (m *MockBusinessRepository) Create(business *domain.Business) (*domain.Business, error) {
	business.ID = m.NextID
	m.NextID++
	business.IsActive = true
	business.CreatedAt = time.Now()
	business.UpdatedAt = business.CreatedAt
	m.Businesses[business.ID] = business
	return business, nil
}

func (m *MockBusinessRepository) GetByID(id int32) (*domain.Business, error) {
	b, ok := m.Businesses[id]
	if !ok {
		return nil, domain.ErrBusinessNotFound
	}
	return b, nil
}

func (m *MockBusinessRepository) GetAll(includeInactive bool) ([]*domain.Business, error) {
	result := make([]*domain.Business, 0, len(m.Businesses))
	for _, b := range m.Businesses {
		if !includeInactive && !b.IsActive {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockBusinessRepository) Update(id int32, name string) (*domain.Business, error) {
	b, ok := m.Businesses[id]
	if !ok {
		return nil, domain.ErrBusinessNotFound
	}
	b.Name = name
	b.UpdatedAt = time.Now()
	return b, nil
}

func (m *MockBusinessRepository) Deactivate(id int32) error {
	b, ok := m.Businesses[id]
	if !ok {
		return domain.ErrBusinessNotFound
	}
	b.IsActive = false
	return nil
}

// MockAccountTypeRepository is an in-memory implementation of domain.AccountTypeRepository
type MockAccountTypeRepository struct {
	Types []*domain.AccountType
}

func NewMockAccountTypeRepository() *MockAccountTypeRepository {
	return &MockAccountTypeRepository{}
}

// SeedStandardTypes loads the account types the migration seeds
func (m *MockAccountTypeRepository) SeedStandardTypes() {
	m.Types = []*domain.AccountType{
		{ID: 1, Code: "BANK", Name: "Bank", Category: domain.CategoryAsset, NormalBalance: domain.NormalBalanceDebit},
		{ID: 2, Code: "AR", Name: "Accounts Receivable", Category: domain.CategoryAsset, NormalBalance: domain.NormalBalanceDebit},
		{ID: 3, Code: "AP", Name: "Accounts Payable", Category: domain.CategoryLiability, NormalBalance: domain.NormalBalanceCredit},
		{ID: 4, Code: "EQ", Name: "Equity", Category: domain.CategoryEquity, NormalBalance: domain.NormalBalanceCredit},
		{ID: 5, Code: "REV", Name: "Revenue", Category: domain.CategoryRevenue, NormalBalance: domain.NormalBalanceCredit},
		{ID: 6, Code: "EXP", Name: "Expense", Category: domain.CategoryExpense, NormalBalance: domain.NormalBalanceDebit},
	}
}

func (m *MockAccountTypeRepository) AddType(t *domain.AccountType) {
	m.Types = append(m.Types, t)
}

func (m *MockAccountTypeRepository) GetAll() ([]*domain.AccountType, error) {
	return m.Types, nil
}

func (m *MockAccountTypeRepository) GetByID(id int32) (*domain.AccountType, error) {
	for _, t := range m.Types {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrAccountTypeNotFound
}

func (m *MockAccountTypeRepository) GetFirstByCategory(category domain.AccountCategory) (*domain.AccountType, error) {
	for _, t := range m.Types {
		if t.Category == category {
			return t, nil
		}
	}
	return nil, domain.ErrAccountTypeNotFound
}

// MockAccountRepository is an in-memory implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[int32]*domain.Account
	TypeRepo *MockAccountTypeRepository
	NextID   int32
}

func NewMockAccountRepository(typeRepo *MockAccountTypeRepository) *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		TypeRepo: typeRepo,
		NextID:   1,
	}
}

// AddAccount adds an account directly to the mock's storage
func (m *MockAccountRepository) AddAccount(a *domain.Account) {
	if a.ID == 0 {
		a.ID = m.NextID
	}
	if a.ID >= m.NextID {
		m.NextID = a.ID + 1
	}
	if a.Type == nil && m.TypeRepo != nil {
		a.Type, _ = m.TypeRepo.GetByID(a.TypeID)
	}
	m.Accounts[a.ID] = a
}

func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	for _, existing := range m.Accounts {
		if existing.BusinessID == account.BusinessID && existing.Code == account.Code {
			return nil, domain.ErrDuplicateAccountCode
		}
	}
	account.ID = m.NextID
	m.NextID++
	account.IsActive = true
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	if account.Type == nil && m.TypeRepo != nil {
		account.Type, _ = m.TypeRepo.GetByID(account.TypeID)
	}
	m.Accounts[account.ID] = account
	return account, nil
}

func (m *MockAccountRepository) GetByID(businessID int32, id int32) (*domain.Account, error) {
	a, ok := m.Accounts[id]
	if !ok || a.BusinessID != businessID {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

func (m *MockAccountRepository) GetByCode(businessID int32, code string) (*domain.Account, error) {
	for _, a := range m.Accounts {
		if a.BusinessID == businessID && a.Code == code {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetAllByBusiness(businessID int32, includeInactive bool) ([]*domain.Account, error) {
	result := make([]*domain.Account, 0)
	for _, a := range m.Accounts {
		if a.BusinessID != businessID {
			continue
		}
		if !includeInactive && !a.IsActive {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *MockAccountRepository) GetByCategories(businessID int32, categories []domain.AccountCategory) ([]*domain.Account, error) {
	wanted := make(map[domain.AccountCategory]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}
	result := make([]*domain.Account, 0)
	for _, a := range m.Accounts {
		if a.BusinessID != businessID || !a.IsActive || a.Type == nil {
			continue
		}
		if wanted[a.Type.Category] {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *MockAccountRepository) Update(businessID int32, id int32, data *domain.UpdateAccountData) (*domain.Account, error) {
	a, err := m.GetByID(businessID, id)
	if err != nil {
		return nil, err
	}
	for _, existing := range m.Accounts {
		if existing.ID != id && existing.BusinessID == businessID && existing.Code == data.Code {
			return nil, domain.ErrDuplicateAccountCode
		}
	}
	a.Code = data.Code
	a.Name = data.Name
	a.TypeID = data.TypeID
	a.ParentID = data.ParentID
	a.Description = data.Description
	a.IsActive = data.IsActive
	if m.TypeRepo != nil {
		a.Type, _ = m.TypeRepo.GetByID(a.TypeID)
	}
	a.UpdatedAt = time.Now()
	return a, nil
}

func (m *MockAccountRepository) Deactivate(businessID int32, id int32) error {
	a, err := m.GetByID(businessID, id)
	if err != nil {
		return err
	}
	a.IsActive = false
	return nil
}

// MockTransactionRepository is an in-memory implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	NextID       int32
	NextLineID   int32
	// CreateErr, when set, is returned by Create to simulate storage failures
	CreateErr error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
		NextLineID:   1,
	}
}

func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	transaction.ID = m.NextID
	m.NextID++
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	for i := range transaction.Lines {
		transaction.Lines[i].ID = m.NextLineID
		m.NextLineID++
		transaction.Lines[i].TransactionID = transaction.ID
	}
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

func (m *MockTransactionRepository) GetByID(businessID int32, id int32) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.BusinessID != businessID {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func (m *MockTransactionRepository) GetByBusiness(businessID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	matches := make([]*domain.Transaction, 0)
	for _, tx := range m.Transactions {
		if tx.BusinessID != businessID {
			continue
		}
		if filters != nil && !matchesFilters(tx, filters) {
			continue
		}
		matches = append(matches, tx)
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Date.Equal(matches[j].Date) {
			return matches[i].Date.After(matches[j].Date)
		}
		return matches[i].ID > matches[j].ID
	})

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
		}
	}
	total := int64(len(matches))
	start := (page - 1) * pageSize
	if start > int32(total) {
		start = int32(total)
	}
	end := start + pageSize
	if end > int32(total) {
		end = int32(total)
	}
	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))

	return &domain.PaginatedTransactions{
		Data:       matches[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func matchesFilters(tx *domain.Transaction, filters *domain.TransactionFilters) bool {
	if filters.StartDate != nil && tx.Date.Before(*filters.StartDate) {
		return false
	}
	if filters.EndDate != nil && tx.Date.After(*filters.EndDate) {
		return false
	}
	if filters.Type != nil && tx.Type != *filters.Type {
		return false
	}
	if filters.AccountID != nil {
		found := false
		for _, line := range tx.Lines {
			if line.AccountID == *filters.AccountID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *MockTransactionRepository) Replace(businessID int32, id int32, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, err := m.GetByID(businessID, id)
	if err != nil {
		return nil, err
	}
	transaction.ID = existing.ID
	transaction.BusinessID = businessID
	transaction.CreatedAt = existing.CreatedAt
	transaction.UpdatedAt = time.Now()
	for i := range transaction.Lines {
		transaction.Lines[i].ID = m.NextLineID
		m.NextLineID++
		transaction.Lines[i].TransactionID = transaction.ID
	}
	m.Transactions[id] = transaction
	return transaction, nil
}

func (m *MockTransactionRepository) Delete(businessID int32, id int32) error {
	if _, err := m.GetByID(businessID, id); err != nil {
		return err
	}
	delete(m.Transactions, id)
	return nil
}

func (m *MockTransactionRepository) SumActivityByAccount(businessID int32, startDate, endDate *time.Time) ([]*domain.AccountActivity, error) {
	byAccount := make(map[int32]*domain.AccountActivity)
	for _, tx := range m.Transactions {
		if tx.BusinessID != businessID {
			continue
		}
		if startDate != nil && tx.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && tx.Date.After(*endDate) {
			continue
		}
		for _, line := range tx.Lines {
			act, ok := byAccount[line.AccountID]
			if !ok {
				act = &domain.AccountActivity{
					AccountID:    line.AccountID,
					TotalDebits:  decimal.Zero,
					TotalCredits: decimal.Zero,
				}
				byAccount[line.AccountID] = act
			}
			act.TotalDebits = act.TotalDebits.Add(line.DebitAmount)
			act.TotalCredits = act.TotalCredits.Add(line.CreditAmount)
		}
	}
	result := make([]*domain.AccountActivity, 0, len(byAccount))
	for _, act := range byAccount {
		result = append(result, act)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AccountID < result[j].AccountID })
	return result, nil
}

func (m *MockTransactionRepository) GetAccountEntries(businessID int32, accountID int32, startDate, endDate *time.Time) ([]*domain.AccountLedgerEntry, error) {
	entries := make([]*domain.AccountLedgerEntry, 0)
	for _, tx := range m.Transactions {
		if tx.BusinessID != businessID {
			continue
		}
		if startDate != nil && tx.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && tx.Date.After(*endDate) {
			continue
		}
		for _, line := range tx.Lines {
			if line.AccountID != accountID {
				continue
			}
			entries = append(entries, &domain.AccountLedgerEntry{
				TransactionID: tx.ID,
				Date:          tx.Date,
				Description:   tx.Description,
				Reference:     tx.Reference,
				Type:          tx.Type,
				DebitAmount:   line.DebitAmount,
				CreditAmount:  line.CreditAmount,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].TransactionID < entries[j].TransactionID
	})
	return entries, nil
}

// MockTypeMappingRepository is an in-memory implementation of domain.TypeMappingRepository
type MockTypeMappingRepository struct {
	Mappings map[string]*domain.TypeMapping
	NextID   int32
	// CreateErr, when set, is returned once by Create to simulate a
	// concurrent-insert race
	CreateErr error
	// GetMisses makes the next N GetByCSVType calls miss, for race tests
	GetMisses int
}

func NewMockTypeMappingRepository() *MockTypeMappingRepository {
	return &MockTypeMappingRepository{
		Mappings: make(map[string]*domain.TypeMapping),
		NextID:   1,
	}
}

// AddMapping adds a mapping directly to the mock's storage
func (m *MockTypeMappingRepository) AddMapping(mapping *domain.TypeMapping) {
	if mapping.ID == 0 {
		mapping.ID = m.NextID
	}
	if mapping.ID >= m.NextID {
		m.NextID = mapping.ID + 1
	}
	m.Mappings[strings.ToUpper(mapping.CSVType)] = mapping
}

func (m *MockTypeMappingRepository) GetByCSVType(csvType string) (*domain.TypeMapping, error) {
	if m.GetMisses > 0 {
		m.GetMisses--
		return nil, domain.ErrTypeMappingNotFound
	}
	mapping, ok := m.Mappings[csvType]
	if !ok {
		return nil, domain.ErrTypeMappingNotFound
	}
	return mapping, nil
}

func (m *MockTypeMappingRepository) GetAll() ([]*domain.TypeMapping, error) {
	result := make([]*domain.TypeMapping, 0, len(m.Mappings))
	for _, mapping := range m.Mappings {
		result = append(result, mapping)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CSVType < result[j].CSVType })
	return result, nil
}

func (m *MockTypeMappingRepository) Create(mapping *domain.TypeMapping) (*domain.TypeMapping, error) {
	if m.CreateErr != nil {
		err := m.CreateErr
		m.CreateErr = nil
		return nil, err
	}
	if _, exists := m.Mappings[mapping.CSVType]; exists {
		return nil, domain.ErrDuplicateTypeMapping
	}
	mapping.ID = m.NextID
	m.NextID++
	mapping.CreatedAt = time.Now()
	m.Mappings[mapping.CSVType] = mapping
	return mapping, nil
}

func (m *MockTypeMappingRepository) Update(id int32, data *domain.UpdateTypeMappingData) (*domain.TypeMapping, error) {
	for _, mapping := range m.Mappings {
		if mapping.ID == id {
			mapping.InternalType = data.InternalType
			mapping.Direction = data.Direction
			mapping.Description = data.Description
			return mapping, nil
		}
	}
	return nil, domain.ErrTypeMappingNotFound
}

func (m *MockTypeMappingRepository) Delete(id int32) error {
	for key, mapping := range m.Mappings {
		if mapping.ID == id {
			delete(m.Mappings, key)
			return nil
		}
	}
	return domain.ErrTypeMappingNotFound
}
