package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies where a transaction came from and which way the
// money moved. Imported rows carry the type resolved from their bank CSV
// type; manual entries default to ADJUSTMENT unless the lines imply a
// direction.
type TransactionType string

const (
	TypeDeposit         TransactionType = "DEPOSIT"
	TypeIncome          TransactionType = "INCOME"
	TypePaymentReceived TransactionType = "PAYMENT_RECEIVED"
	TypeWithdrawal      TransactionType = "WITHDRAWAL"
	TypeExpense         TransactionType = "EXPENSE"
	TypePayment         TransactionType = "PAYMENT"
	TypeAdjustment      TransactionType = "ADJUSTMENT"
)

// ValidTransactionType reports whether t is one of the known types.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TypeDeposit, TypeIncome, TypePaymentReceived,
		TypeWithdrawal, TypeExpense, TypePayment, TypeAdjustment:
		return true
	}
	return false
}

// TransactionLine is one leg of a double-entry transaction. Exactly one of
// DebitAmount and CreditAmount is positive; the other is zero.
type TransactionLine struct {
	ID            int32           `json:"id"`
	TransactionID int32           `json:"transactionId"`
	AccountID     int32           `json:"accountId"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
	AccountCode   string          `json:"accountCode,omitempty"`
	AccountName   string          `json:"accountName,omitempty"`
}

// Transaction is a balanced set of ledger lines. Amount is the sum of the
// debit sides, which equals the sum of the credit sides within tolerance.
type Transaction struct {
	ID          int32             `json:"id"`
	BusinessID  int32             `json:"businessId"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Reference   *string           `json:"reference,omitempty"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Lines       []TransactionLine `json:"lines"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type TransactionFilters struct {
	AccountID *int32
	StartDate *time.Time
	EndDate   *time.Time
	Type      *TransactionType
	Page      int32
	PageSize  int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// AccountActivity is the summed debit and credit movement of one account
// over a date window.
type AccountActivity struct {
	AccountID    int32
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
}

// AccountLedgerEntry is one transaction's effect on a single account, used
// by the report drill-down.
type AccountLedgerEntry struct {
	TransactionID int32           `json:"transactionId"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Reference     *string         `json:"reference,omitempty"`
	Type          TransactionType `json:"type"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
}

type TransactionRepository interface {
	// Create persists the transaction and its lines atomically.
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(businessID int32, id int32) (*Transaction, error)
	GetByBusiness(businessID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	// Replace updates the transaction header and swaps the full line set
	// atomically.
	Replace(businessID int32, id int32, transaction *Transaction) (*Transaction, error)
	Delete(businessID int32, id int32) error
	// SumActivityByAccount aggregates line amounts per account over an
	// inclusive date window; nil bounds are open-ended.
	SumActivityByAccount(businessID int32, startDate, endDate *time.Time) ([]*AccountActivity, error)
	GetAccountEntries(businessID int32, accountID int32, startDate, endDate *time.Time) ([]*AccountLedgerEntry, error)
}
