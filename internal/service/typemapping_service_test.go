package service

import (
	"errors"
	"testing"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/testutil"
)

func TestClassify_KeywordPrecedence(t *testing.T) {
	cases := []struct {
		csvType  string
		wantType domain.TransactionType
		wantDir  domain.Direction
	}{
		{"ACH_CREDIT DEPOSIT", domain.TypeDeposit, domain.DirectionCredit},
		{"DEPOSIT", domain.TypeDeposit, domain.DirectionCredit},
		{"MISC_INCOME", domain.TypeIncome, domain.DirectionCredit},
		{"ACH_CREDIT", domain.TypePaymentReceived, domain.DirectionCredit},
		{"CREDIT CARD PAYMENT", domain.TypePaymentReceived, domain.DirectionCredit},
		{"PAYMENT RECEIVED", domain.TypePaymentReceived, domain.DirectionCredit},
		{"INTEREST CHARGE", domain.TypePaymentReceived, domain.DirectionCredit},
		{"DIVIDEND", domain.TypePaymentReceived, domain.DirectionCredit},
		{"ATM WITHDRAWAL", domain.TypeWithdrawal, domain.DirectionDebit},
		{"MONTHLY FEE", domain.TypeExpense, domain.DirectionDebit},
		{"PAYMENT FEE", domain.TypeExpense, domain.DirectionDebit},
		{"MISC EXPENSE", domain.TypeExpense, domain.DirectionDebit},
		{"DEBIT CARD PURCHASE", domain.TypePayment, domain.DirectionDebit},
		{"LOAN PAYMENT", domain.TypePayment, domain.DirectionDebit},
		{"SERVICE CHARGE DAILY", domain.TypePayment, domain.DirectionDebit},
		{"SOMETHING ELSE", domain.TypeAdjustment, domain.DirectionDebit},
		{"", domain.TypeAdjustment, domain.DirectionDebit},
	}

	for _, tc := range cases {
		t.Run(tc.csvType, func(t *testing.T) {
			gotType, gotDir := Classify(tc.csvType)
			if gotType != tc.wantType || gotDir != tc.wantDir {
				t.Errorf("Classify(%q) = (%s, %s), want (%s, %s)",
					tc.csvType, gotType, gotDir, tc.wantType, tc.wantDir)
			}
		})
	}
}

func TestResolve_ExactMatchWins(t *testing.T) {
	repo := testutil.NewMockTypeMappingRepository()
	// Stored mapping contradicting the keyword table: exact match must win
	repo.AddMapping(&domain.TypeMapping{
		CSVType:      "DEPOSIT",
		InternalType: domain.TypeIncome,
		Direction:    domain.DirectionCredit,
	})
	svc := NewTypeMappingService(repo)

	mapping, err := svc.Resolve("deposit")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mapping.InternalType != domain.TypeIncome {
		t.Errorf("expected stored mapping to win, got %s", mapping.InternalType)
	}
}

func TestResolve_DerivesAndPersists(t *testing.T) {
	repo := testutil.NewMockTypeMappingRepository()
	svc := NewTypeMappingService(repo)

	mapping, err := svc.Resolve("  ach_credit  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mapping.CSVType != "ACH_CREDIT" {
		t.Errorf("expected key normalized to ACH_CREDIT, got %q", mapping.CSVType)
	}
	if mapping.InternalType != domain.TypePaymentReceived || mapping.Direction != domain.DirectionCredit {
		t.Errorf("unexpected derived mapping: %+v", mapping)
	}

	// Derived mapping must be persisted
	if _, err := repo.GetByCSVType("ACH_CREDIT"); err != nil {
		t.Errorf("expected derived mapping persisted, got %v", err)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	repo := testutil.NewMockTypeMappingRepository()
	svc := NewTypeMappingService(repo)

	first, err := svc.Resolve("ATM WITHDRAWAL")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Resolve("atm withdrawal")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same mapping row, got ids %d and %d", first.ID, second.ID)
	}
	if len(repo.Mappings) != 1 {
		t.Errorf("expected exactly one stored mapping, got %d", len(repo.Mappings))
	}
}

func TestResolve_InsertRaceFallsBackToLookup(t *testing.T) {
	repo := testutil.NewMockTypeMappingRepository()
	svc := NewTypeMappingService(repo)

	// Simulate losing the insert race: the first lookup misses, the insert
	// fails with a duplicate error, and the winner's row is readable on the
	// second lookup.
	repo.AddMapping(&domain.TypeMapping{
		ID:           7,
		CSVType:      "WIRE_OUT",
		InternalType: domain.TypePayment,
		Direction:    domain.DirectionDebit,
	})
	repo.GetMisses = 1
	repo.CreateErr = domain.ErrDuplicateTypeMapping

	mapping, err := svc.Resolve("WIRE_OUT")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mapping.ID != 7 {
		t.Errorf("expected winner's row (id 7), got id %d", mapping.ID)
	}
}

func TestCreateMapping_Validation(t *testing.T) {
	repo := testutil.NewMockTypeMappingRepository()
	svc := NewTypeMappingService(repo)

	if _, err := svc.CreateMapping(CreateMappingInput{CSVType: "  ", InternalType: domain.TypePayment, Direction: domain.DirectionDebit}); !errors.Is(err, domain.ErrCodeRequired) {
		t.Errorf("expected ErrCodeRequired, got %v", err)
	}
	if _, err := svc.CreateMapping(CreateMappingInput{CSVType: "X", InternalType: "NOPE", Direction: domain.DirectionDebit}); !errors.Is(err, domain.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
	if _, err := svc.CreateMapping(CreateMappingInput{CSVType: "X", InternalType: domain.TypePayment, Direction: "SIDEWAYS"}); !errors.Is(err, domain.ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}

	created, err := svc.CreateMapping(CreateMappingInput{CSVType: "wire_out", InternalType: domain.TypePayment, Direction: domain.DirectionDebit})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.CSVType != "WIRE_OUT" {
		t.Errorf("expected upper-cased key, got %q", created.CSVType)
	}

	if _, err := svc.CreateMapping(CreateMappingInput{CSVType: "WIRE_OUT", InternalType: domain.TypePayment, Direction: domain.DirectionDebit}); !errors.Is(err, domain.ErrDuplicateTypeMapping) {
		t.Errorf("expected ErrDuplicateTypeMapping, got %v", err)
	}
}

func TestUpdateAndDeleteMapping(t *testing.T) {
	repo := testutil.NewMockTypeMappingRepository()
	svc := NewTypeMappingService(repo)

	created, err := svc.CreateMapping(CreateMappingInput{CSVType: "ZELLE", InternalType: domain.TypePayment, Direction: domain.DirectionDebit})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.UpdateMapping(created.ID, CreateMappingInput{InternalType: domain.TypePaymentReceived, Direction: domain.DirectionCredit})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.InternalType != domain.TypePaymentReceived || updated.Direction != domain.DirectionCredit {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := svc.DeleteMapping(created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteMapping(created.ID); !errors.Is(err, domain.ErrTypeMappingNotFound) {
		t.Errorf("expected ErrTypeMappingNotFound, got %v", err)
	}
}
