package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/service"
	"github.com/ledgerline/ledgerline-backend/internal/testutil"
	"github.com/ledgerline/ledgerline-backend/internal/websocket"
)

func newTransactionHandler() *TransactionHandler {
	typeRepo := testutil.NewMockAccountTypeRepository()
	typeRepo.SeedStandardTypes()
	accountRepo := testutil.NewMockAccountRepository(typeRepo)
	accountRepo.AddAccount(&domain.Account{ID: 1, BusinessID: 1, Code: "1000", Name: "Checking", TypeID: 1, IsActive: true})
	accountRepo.AddAccount(&domain.Account{ID: 2, BusinessID: 1, Code: "5000", Name: "Office Supplies", TypeID: 6, IsActive: true})
	txRepo := testutil.NewMockTransactionRepository()
	ledger := service.NewLedgerService(txRepo, accountRepo, &websocket.NoOpPublisher{})
	return NewTransactionHandler(ledger)
}

func postTransaction(t *testing.T, handler *TransactionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/businesses/1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("businessId")
	c.SetParamValues("1")

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	return rec
}

func TestCreateTransaction_Success(t *testing.T) {
	handler := newTransactionHandler()

	rec := postTransaction(t, handler, `{
		"date": "2024-01-15",
		"description": "Office chairs",
		"lines": [
			{"accountId": 2, "debitAmount": "250.00"},
			{"accountId": 1, "creditAmount": "250.00"}
		]
	}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount != "250.00" {
		t.Errorf("Expected amount '250.00', got %s", response.Amount)
	}
	if response.Type != string(domain.TypeWithdrawal) {
		t.Errorf("Expected derived type WITHDRAWAL, got %s", response.Type)
	}
	if len(response.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(response.Lines))
	}
	if response.Lines[0].AccountCode != "5000" {
		t.Errorf("Expected line enriched with account code, got %s", response.Lines[0].AccountCode)
	}
	if response.Date != "2024-01-15" {
		t.Errorf("Expected date 2024-01-15, got %s", response.Date)
	}
}

func TestCreateTransaction_Imbalanced(t *testing.T) {
	handler := newTransactionHandler()

	rec := postTransaction(t, handler, `{
		"date": "2024-01-15",
		"description": "Broken",
		"lines": [
			{"accountId": 2, "debitAmount": "250.00"},
			{"accountId": 1, "creditAmount": "100.00"}
		]
	}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Type != ErrorTypeValidation {
		t.Errorf("Expected validation problem type, got %s", problem.Type)
	}
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "lines" {
		t.Errorf("Expected a lines field error, got %+v", problem.Errors)
	}
}

func TestCreateTransaction_BadDate(t *testing.T) {
	handler := newTransactionHandler()

	rec := postTransaction(t, handler, `{
		"date": "15/01/2024",
		"description": "Wrong format",
		"lines": [
			{"accountId": 2, "debitAmount": "10.00"},
			{"accountId": 1, "creditAmount": "10.00"}
		]
	}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	handler := newTransactionHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses/1/transactions/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("businessId", "id")
	c.SetParamValues("1", "99")

	if err := handler.GetTransaction(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
}
