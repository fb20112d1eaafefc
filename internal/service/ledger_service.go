package service

import (
	"strings"
	"time"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// BalanceEpsilon is the tolerance when checking that debits equal credits.
// Statement rounding can leave a cent of drift; anything larger is a real
// imbalance.
var BalanceEpsilon = decimal.New(1, -2) // 0.01

// LedgerService enforces double-entry invariants on every transaction write
type LedgerService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
	publisher       websocket.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(transactionRepo domain.TransactionRepository, accountRepo domain.AccountRepository, publisher websocket.EventPublisher) *LedgerService {
	return &LedgerService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		publisher:       publisher,
	}
}

// LineInput is one leg of a transaction as supplied by the caller
type LineInput struct {
	AccountID    int32
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Date        time.Time
	Description string
	Reference   *string
	// Type, when set, overrides the inferred type. The import pipeline
	// always sets it from the resolved mapping.
	Type  *domain.TransactionType
	Lines []LineInput
}

// CreateTransaction validates and persists a balanced transaction.
//
// Validation order: line count, per-line shape, account resolution, then
// balance. The first failure wins and nothing is written.
func (s *LedgerService) CreateTransaction(businessID int32, input CreateTransactionInput) (*domain.Transaction, error) {
	lines, amount, err := s.validateLines(businessID, input.Lines)
	if err != nil {
		return nil, err
	}

	txType := inferType(input.Lines)
	if input.Type != nil {
		if !domain.ValidTransactionType(*input.Type) {
			return nil, domain.ErrInvalidType
		}
		txType = *input.Type
	}

	transaction := &domain.Transaction{
		BusinessID:  businessID,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Reference:   input.Reference,
		Type:        txType,
		Amount:      amount,
		Lines:       lines,
	}

	created, err := s.transactionRepo.Create(transaction)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(businessID, websocket.TransactionCreated(created))
	return created, nil
}

// UpdateTransaction replaces a transaction's header and full line set under
// the same validations as create.
func (s *LedgerService) UpdateTransaction(businessID int32, id int32, input CreateTransactionInput) (*domain.Transaction, error) {
	if _, err := s.transactionRepo.GetByID(businessID, id); err != nil {
		return nil, err
	}

	lines, amount, err := s.validateLines(businessID, input.Lines)
	if err != nil {
		return nil, err
	}

	txType := inferType(input.Lines)
	if input.Type != nil {
		if !domain.ValidTransactionType(*input.Type) {
			return nil, domain.ErrInvalidType
		}
		txType = *input.Type
	}

	transaction := &domain.Transaction{
		BusinessID:  businessID,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Reference:   input.Reference,
		Type:        txType,
		Amount:      amount,
		Lines:       lines,
	}

	updated, err := s.transactionRepo.Replace(businessID, id, transaction)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(businessID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// GetTransaction retrieves a transaction by ID within a business
func (s *LedgerService) GetTransaction(businessID int32, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(businessID, id)
}

// GetTransactions retrieves transactions for a business with optional filters and pagination
func (s *LedgerService) GetTransactions(businessID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	return s.transactionRepo.GetByBusiness(businessID, filters)
}

// DeleteTransaction removes a transaction and its lines
func (s *LedgerService) DeleteTransaction(businessID int32, id int32) error {
	tx, err := s.transactionRepo.GetByID(businessID, id)
	if err != nil {
		return err
	}
	if err := s.transactionRepo.Delete(businessID, id); err != nil {
		return err
	}
	s.publisher.Publish(businessID, websocket.TransactionDeleted(tx))
	return nil
}

// validateLines checks the double-entry invariants and resolves accounts.
// It returns the enriched lines and the transaction amount (sum of debits).
func (s *LedgerService) validateLines(businessID int32, inputs []LineInput) ([]domain.TransactionLine, decimal.Decimal, error) {
	if len(inputs) < 2 {
		return nil, decimal.Zero, domain.ErrInsufficientLines
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	lines := make([]domain.TransactionLine, 0, len(inputs))

	for _, in := range inputs {
		if in.DebitAmount.IsNegative() || in.CreditAmount.IsNegative() {
			return nil, decimal.Zero, domain.ErrDegenerateLine
		}
		// Exactly one side must be positive
		if in.DebitAmount.IsPositive() == in.CreditAmount.IsPositive() {
			return nil, decimal.Zero, domain.ErrDegenerateLine
		}

		account, err := s.accountRepo.GetByID(businessID, in.AccountID)
		if err != nil || !account.IsActive {
			return nil, decimal.Zero, domain.ErrUnknownAccount
		}

		totalDebits = totalDebits.Add(in.DebitAmount)
		totalCredits = totalCredits.Add(in.CreditAmount)

		lines = append(lines, domain.TransactionLine{
			AccountID:    in.AccountID,
			DebitAmount:  in.DebitAmount,
			CreditAmount: in.CreditAmount,
			AccountCode:  account.Code,
			AccountName:  account.Name,
		})
	}

	if totalDebits.Sub(totalCredits).Abs().GreaterThan(BalanceEpsilon) {
		return nil, decimal.Zero, domain.ErrImbalancedTransaction
	}

	return lines, totalDebits, nil
}

// inferType derives a transaction type from the line shape: more distinct
// debited accounts than credited means money spread out of one source
// (WITHDRAWAL), the reverse means money gathered in (DEPOSIT), a tie is an
// ADJUSTMENT.
func inferType(inputs []LineInput) domain.TransactionType {
	debitAccounts := make(map[int32]bool)
	creditAccounts := make(map[int32]bool)
	for _, in := range inputs {
		if in.DebitAmount.IsPositive() {
			debitAccounts[in.AccountID] = true
		}
		if in.CreditAmount.IsPositive() {
			creditAccounts[in.AccountID] = true
		}
	}
	switch {
	case len(debitAccounts) > len(creditAccounts):
		return domain.TypeWithdrawal
	case len(creditAccounts) > len(debitAccounts):
		return domain.TypeDeposit
	}
	return domain.TypeAdjustment
}
