package domain

import "time"

// AccountCategory is one of the five fundamental account categories.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "ASSET"
	CategoryLiability AccountCategory = "LIABILITY"
	CategoryEquity    AccountCategory = "EQUITY"
	CategoryRevenue   AccountCategory = "REVENUE"
	CategoryExpense   AccountCategory = "EXPENSE"
)

// NormalBalance is the side on which an account's balance normally sits.
// ASSET and EXPENSE accounts carry a DEBIT normal balance, the rest CREDIT.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// AccountType is a master lookup row shared by all businesses, seeded by
// migration (Bank, Accounts Receivable, Revenue, Expense, ...).
type AccountType struct {
	ID            int32           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Category      AccountCategory `json:"category"`
	NormalBalance NormalBalance   `json:"normalBalance"`
}

// Account is a chart-of-accounts entry. Code is unique within a business.
type Account struct {
	ID          int32        `json:"id"`
	BusinessID  int32        `json:"businessId"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	TypeID      int32        `json:"typeId"`
	ParentID    *int32       `json:"parentId,omitempty"`
	Description *string      `json:"description,omitempty"`
	IsActive    bool         `json:"isActive"`
	Type        *AccountType `json:"type,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Account codes auto-created by the import pipeline for unmapped rows.
const (
	UncategorizedExpenseCode = "UNCATEGORIZED_EXPENSE"
	UncategorizedRevenueCode = "UNCATEGORIZED_REVENUE"
)

// UpdateAccountData holds the fields applied by an account update.
type UpdateAccountData struct {
	Code        string
	Name        string
	TypeID      int32
	ParentID    *int32
	Description *string
	IsActive    bool
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(businessID int32, id int32) (*Account, error)
	GetByCode(businessID int32, code string) (*Account, error)
	GetAllByBusiness(businessID int32, includeInactive bool) ([]*Account, error)
	// GetByCategories returns active accounts whose type falls in the given
	// categories, with Type populated.
	GetByCategories(businessID int32, categories []AccountCategory) ([]*Account, error)
	Update(businessID int32, id int32, data *UpdateAccountData) (*Account, error)
	Deactivate(businessID int32, id int32) error
}

type AccountTypeRepository interface {
	GetAll() ([]*AccountType, error)
	GetByID(id int32) (*AccountType, error)
	GetFirstByCategory(category AccountCategory) (*AccountType, error)
}
