package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/testutil"
	"github.com/ledgerline/ledgerline-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	events []websocket.Event
}

func (p *recordingPublisher) Publish(businessID int32, event websocket.Event) {
	p.events = append(p.events, event)
}

func newLedgerFixture() (*LedgerService, *testutil.MockTransactionRepository, *testutil.MockAccountRepository, *recordingPublisher) {
	typeRepo := testutil.NewMockAccountTypeRepository()
	typeRepo.SeedStandardTypes()
	accountRepo := testutil.NewMockAccountRepository(typeRepo)
	accountRepo.AddAccount(&domain.Account{ID: 1, BusinessID: 1, Code: "1000", Name: "Checking", TypeID: 1, IsActive: true})
	accountRepo.AddAccount(&domain.Account{ID: 2, BusinessID: 1, Code: "5000", Name: "Office Supplies", TypeID: 6, IsActive: true})
	accountRepo.AddAccount(&domain.Account{ID: 3, BusinessID: 1, Code: "4000", Name: "Sales", TypeID: 5, IsActive: true})
	accountRepo.AddAccount(&domain.Account{ID: 4, BusinessID: 2, Code: "1000", Name: "Other Biz Checking", TypeID: 1, IsActive: true})
	accountRepo.AddAccount(&domain.Account{ID: 5, BusinessID: 1, Code: "1090", Name: "Old Account", TypeID: 1, IsActive: false})

	txRepo := testutil.NewMockTransactionRepository()
	publisher := &recordingPublisher{}
	return NewLedgerService(txRepo, accountRepo, publisher), txRepo, accountRepo, publisher
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateTransaction_Balanced(t *testing.T) {
	svc, _, _, publisher := newLedgerFixture()

	tx, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Office chairs",
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("250.00")},
			{AccountID: 1, CreditAmount: dec("250.00")},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !tx.Amount.Equal(dec("250.00")) {
		t.Errorf("expected amount 250.00, got %s", tx.Amount)
	}
	if len(tx.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(tx.Lines))
	}
	if tx.Lines[0].AccountCode != "5000" || tx.Lines[0].AccountName != "Office Supplies" {
		t.Errorf("expected line enriched with account code/name, got %q %q", tx.Lines[0].AccountCode, tx.Lines[0].AccountName)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != "transaction.created" {
		t.Errorf("expected one transaction.created event, got %+v", publisher.events)
	}
}

func TestCreateTransaction_Imbalanced(t *testing.T) {
	svc, txRepo, _, _ := newLedgerFixture()

	_, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("90.00")},
		},
	})
	if !errors.Is(err, domain.ErrImbalancedTransaction) {
		t.Fatalf("expected ErrImbalancedTransaction, got %v", err)
	}
	if len(txRepo.Transactions) != 0 {
		t.Errorf("expected nothing persisted, got %d transactions", len(txRepo.Transactions))
	}
}

func TestCreateTransaction_EpsilonTolerance(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	// One cent of drift is tolerated
	_, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.01")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if err != nil {
		t.Fatalf("expected 0.01 drift to pass, got %v", err)
	}

	// Two cents is not
	_, err = svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.02")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if !errors.Is(err, domain.ErrImbalancedTransaction) {
		t.Fatalf("expected ErrImbalancedTransaction, got %v", err)
	}
}

func TestCreateTransaction_InsufficientLines(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	_, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientLines) {
		t.Fatalf("expected ErrInsufficientLines, got %v", err)
	}

	_, err = svc.CreateTransaction(1, CreateTransactionInput{Date: time.Now()})
	if !errors.Is(err, domain.ErrInsufficientLines) {
		t.Fatalf("expected ErrInsufficientLines for empty lines, got %v", err)
	}
}

func TestCreateTransaction_DegenerateLines(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	cases := []struct {
		name string
		line LineInput
	}{
		{"both sides positive", LineInput{AccountID: 2, DebitAmount: dec("50.00"), CreditAmount: dec("50.00")}},
		{"both sides zero", LineInput{AccountID: 2}},
		{"negative debit", LineInput{AccountID: 2, DebitAmount: dec("-50.00")}},
		{"negative credit", LineInput{AccountID: 2, CreditAmount: dec("-50.00")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(1, CreateTransactionInput{
				Date: time.Now(),
				Lines: []LineInput{
					tc.line,
					{AccountID: 1, CreditAmount: dec("50.00")},
				},
			})
			if !errors.Is(err, domain.ErrDegenerateLine) {
				t.Fatalf("expected ErrDegenerateLine, got %v", err)
			}
		})
	}
}

func TestCreateTransaction_UnknownAccount(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	// Nonexistent account
	_, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 999, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if !errors.Is(err, domain.ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}

	// Account owned by another business
	_, err = svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 4, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if !errors.Is(err, domain.ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount for cross-business account, got %v", err)
	}

	// Inactive account
	_, err = svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 5, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if !errors.Is(err, domain.ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount for inactive account, got %v", err)
	}
}

func TestCreateTransaction_InferredType(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	// One debit account, two credit accounts: money gathered in -> DEPOSIT
	tx, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 1, DebitAmount: dec("150.00")},
			{AccountID: 3, CreditAmount: dec("100.00")},
			{AccountID: 2, CreditAmount: dec("50.00")},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.Type != domain.TypeDeposit {
		t.Errorf("expected DEPOSIT, got %s", tx.Type)
	}

	// Two debit accounts, one credit account -> WITHDRAWAL
	tx, err = svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("60.00")},
			{AccountID: 3, DebitAmount: dec("40.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.Type != domain.TypeWithdrawal {
		t.Errorf("expected WITHDRAWAL, got %s", tx.Type)
	}

	// Tie -> ADJUSTMENT
	tx, err = svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.Type != domain.TypeAdjustment {
		t.Errorf("expected ADJUSTMENT, got %s", tx.Type)
	}
}

func TestCreateTransaction_ExplicitTypeWins(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	expense := domain.TypeExpense
	tx, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Type: &expense,
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.Type != domain.TypeExpense {
		t.Errorf("expected EXPENSE, got %s", tx.Type)
	}

	bogus := domain.TransactionType("BOGUS")
	_, err = svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Type: &bogus,
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if !errors.Is(err, domain.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestUpdateTransaction_ReplacesLines(t *testing.T) {
	svc, _, _, publisher := newLedgerFixture()

	created, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Initial",
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.UpdateTransaction(1, created.ID, CreateTransactionInput{
		Date:        time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		Description: "Corrected",
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("80.00")},
			{AccountID: 3, DebitAmount: dec("20.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Lines) != 3 {
		t.Errorf("expected 3 lines after replace, got %d", len(updated.Lines))
	}
	if updated.Description != "Corrected" {
		t.Errorf("expected description Corrected, got %q", updated.Description)
	}

	fetched, err := svc.GetTransaction(1, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(fetched.Lines) != 3 {
		t.Errorf("expected stored transaction to have 3 lines, got %d", len(fetched.Lines))
	}

	// create + update events
	if len(publisher.events) != 2 || publisher.events[1].Type != "transaction.updated" {
		t.Errorf("expected transaction.updated event, got %+v", publisher.events)
	}
}

func TestUpdateTransaction_ValidationStillApplies(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	created, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.UpdateTransaction(1, created.ID, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("50.00")},
		},
	})
	if !errors.Is(err, domain.ErrImbalancedTransaction) {
		t.Fatalf("expected ErrImbalancedTransaction on update, got %v", err)
	}

	_, err = svc.UpdateTransaction(1, 999, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("100.00")},
			{AccountID: 1, CreditAmount: dec("100.00")},
		},
	})
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	svc, txRepo, _, publisher := newLedgerFixture()

	created, err := svc.CreateTransaction(1, CreateTransactionInput{
		Date: time.Now(),
		Lines: []LineInput{
			{AccountID: 2, DebitAmount: dec("10.00")},
			{AccountID: 1, CreditAmount: dec("10.00")},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteTransaction(1, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(txRepo.Transactions) != 0 {
		t.Errorf("expected transaction removed")
	}
	if publisher.events[len(publisher.events)-1].Type != "transaction.deleted" {
		t.Errorf("expected transaction.deleted event")
	}

	if err := svc.DeleteTransaction(1, created.ID); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound on second delete, got %v", err)
	}
}

func TestGetTransactions_Filters(t *testing.T) {
	svc, _, _, _ := newLedgerFixture()

	mustCreate := func(date time.Time) *domain.Transaction {
		tx, err := svc.CreateTransaction(1, CreateTransactionInput{
			Date: date,
			Lines: []LineInput{
				{AccountID: 2, DebitAmount: dec("10.00")},
				{AccountID: 1, CreditAmount: dec("10.00")},
			},
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		return tx
	}

	mustCreate(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	mustCreate(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	mustCreate(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	page, err := svc.GetTransactions(1, &domain.TransactionFilters{StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.TotalItems != 1 {
		t.Errorf("expected 1 transaction in February, got %d", page.TotalItems)
	}

	all, err := svc.GetTransactions(1, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if all.TotalItems != 3 {
		t.Errorf("expected 3 transactions, got %d", all.TotalItems)
	}
}
