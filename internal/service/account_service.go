package service

import (
	"errors"
	"strings"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
)

// maxAncestorDepth bounds the parent-chain walk during cycle checks.
const maxAncestorDepth = 100

// AccountService manages the chart of accounts for a business
type AccountService struct {
	accountRepo     domain.AccountRepository
	accountTypeRepo domain.AccountTypeRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository, accountTypeRepo domain.AccountTypeRepository) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		accountTypeRepo: accountTypeRepo,
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Code        string
	Name        string
	TypeID      int32
	ParentID    *int32
	Description *string
}

// CreateAccount creates a new chart-of-accounts entry
func (s *AccountService) CreateAccount(businessID int32, input CreateAccountInput) (*domain.Account, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, domain.ErrCodeRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	if _, err := s.accountTypeRepo.GetByID(input.TypeID); err != nil {
		return nil, err
	}

	// Parent must exist in the same business. A new account cannot close a
	// cycle since nothing points at it yet.
	if input.ParentID != nil {
		if _, err := s.accountRepo.GetByID(businessID, *input.ParentID); err != nil {
			return nil, err
		}
	}

	return s.accountRepo.Create(&domain.Account{
		BusinessID:  businessID,
		Code:        code,
		Name:        name,
		TypeID:      input.TypeID,
		ParentID:    input.ParentID,
		Description: input.Description,
	})
}

// UpdateAccountInput holds the input for updating an account
type UpdateAccountInput struct {
	Code        string
	Name        string
	TypeID      int32
	ParentID    *int32
	Description *string
	IsActive    bool
}

// UpdateAccount updates an account, rejecting parent assignments that would
// create a cycle in the account tree.
func (s *AccountService) UpdateAccount(businessID int32, id int32, input UpdateAccountInput) (*domain.Account, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, domain.ErrCodeRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	if _, err := s.accountRepo.GetByID(businessID, id); err != nil {
		return nil, err
	}
	if _, err := s.accountTypeRepo.GetByID(input.TypeID); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if err := s.checkParentCycle(businessID, id, *input.ParentID); err != nil {
			return nil, err
		}
	}

	return s.accountRepo.Update(businessID, id, &domain.UpdateAccountData{
		Code:        code,
		Name:        name,
		TypeID:      input.TypeID,
		ParentID:    input.ParentID,
		Description: input.Description,
		IsActive:    input.IsActive,
	})
}

// checkParentCycle walks the proposed parent's ancestor chain; finding the
// account itself anywhere on it means the assignment closes a loop.
func (s *AccountService) checkParentCycle(businessID int32, accountID int32, parentID int32) error {
	if parentID == accountID {
		return domain.ErrAccountCycle
	}

	current := parentID
	for depth := 0; depth < maxAncestorDepth; depth++ {
		parent, err := s.accountRepo.GetByID(businessID, current)
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == accountID {
			return domain.ErrAccountCycle
		}
		current = *parent.ParentID
	}
	// A chain deeper than the bound is already pathological
	return domain.ErrAccountCycle
}

// GetAccount retrieves an account by ID within a business
func (s *AccountService) GetAccount(businessID int32, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(businessID, id)
}

// GetAccounts retrieves all accounts for a business
func (s *AccountService) GetAccounts(businessID int32, includeInactive bool) ([]*domain.Account, error) {
	return s.accountRepo.GetAllByBusiness(businessID, includeInactive)
}

// GetAccountTypes returns the account type master list
func (s *AccountService) GetAccountTypes() ([]*domain.AccountType, error) {
	return s.accountTypeRepo.GetAll()
}

// DeactivateAccount marks an account inactive; history referencing it stays
func (s *AccountService) DeactivateAccount(businessID int32, id int32) error {
	return s.accountRepo.Deactivate(businessID, id)
}

// GetOrCreateUncategorized returns the business's catch-all account for the
// category, creating it on first use. A concurrent create that loses the
// unique-constraint race falls back to reading the winner's row.
func (s *AccountService) GetOrCreateUncategorized(businessID int32, category domain.AccountCategory) (*domain.Account, error) {
	var code, name string
	switch category {
	case domain.CategoryExpense:
		code, name = domain.UncategorizedExpenseCode, "Uncategorized Expense"
	case domain.CategoryRevenue:
		code, name = domain.UncategorizedRevenueCode, "Uncategorized Revenue"
	default:
		return nil, domain.ErrAccountTypeNotFound
	}

	account, err := s.accountRepo.GetByCode(businessID, code)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	accountType, err := s.accountTypeRepo.GetFirstByCategory(category)
	if err != nil {
		return nil, err
	}

	created, err := s.accountRepo.Create(&domain.Account{
		BusinessID: businessID,
		Code:       code,
		Name:       name,
		TypeID:     accountType.ID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccountCode) {
			return s.accountRepo.GetByCode(businessID, code)
		}
		return nil, err
	}
	return created, nil
}
