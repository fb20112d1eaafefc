package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles ledger transaction HTTP requests
type TransactionHandler struct {
	ledgerService *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledgerService *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// TransactionLineRequest represents one line in a transaction request
type TransactionLineRequest struct {
	AccountID    int32  `json:"accountId"`
	DebitAmount  string `json:"debitAmount,omitempty"`
	CreditAmount string `json:"creditAmount,omitempty"`
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	Date        string                   `json:"date"`
	Description string                   `json:"description"`
	Reference   *string                  `json:"reference,omitempty"`
	Type        *string                  `json:"type,omitempty"`
	Lines       []TransactionLineRequest `json:"lines"`
}

// TransactionLineResponse represents one line in API responses
type TransactionLineResponse struct {
	ID           int32  `json:"id"`
	AccountID    int32  `json:"accountId"`
	AccountCode  string `json:"accountCode"`
	AccountName  string `json:"accountName"`
	DebitAmount  string `json:"debitAmount"`
	CreditAmount string `json:"creditAmount"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          int32                     `json:"id"`
	BusinessID  int32                     `json:"businessId"`
	Date        string                    `json:"date"`
	Description string                    `json:"description"`
	Reference   *string                   `json:"reference,omitempty"`
	Type        string                    `json:"type"`
	Amount      string                    `json:"amount"`
	Lines       []TransactionLineResponse `json:"lines"`
	CreatedAt   string                    `json:"createdAt"`
	UpdatedAt   string                    `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents a page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// CreateTransaction handles POST /api/v1/businesses/:businessId/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	input, resp := h.bindTransactionInput(c)
	if resp != nil {
		return resp
	}

	transaction, err := h.ledgerService.CreateTransaction(businessID, *input)
	if err != nil {
		if resp := transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().Int32("business_id", businessID).Int32("transaction_id", transaction.ID).Str("type", string(transaction.Type)).Msg("Transaction created")
	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions handles GET /api/v1/businesses/:businessId/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	filters := &domain.TransactionFilters{}
	if v := c.QueryParam("accountId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "Invalid accountId", nil)
		}
		accountID := int32(id)
		filters.AccountID = &accountID
	}
	var ok2 bool
	if filters.StartDate, ok2 = queryDate(c, "startDate"); !ok2 {
		return NewValidationError(c, "Invalid startDate, expected YYYY-MM-DD", nil)
	}
	if filters.EndDate, ok2 = queryDate(c, "endDate"); !ok2 {
		return NewValidationError(c, "Invalid endDate, expected YYYY-MM-DD", nil)
	}
	if v := c.QueryParam("type"); v != "" {
		txType := domain.TransactionType(v)
		if !domain.ValidTransactionType(txType) {
			return NewValidationError(c, "Invalid transaction type", nil)
		}
		filters.Type = &txType
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return NewValidationError(c, "Invalid page", nil)
		}
		filters.Page = int32(page)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil || pageSize < 1 || pageSize > domain.MaxPageSize {
			return NewValidationError(c, "Invalid pageSize", nil)
		}
		filters.PageSize = int32(pageSize)
	}

	page, err := h.ledgerService.GetTransactions(businessID, filters)
	if err != nil {
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	data := make([]TransactionResponse, len(page.Data))
	for i, transaction := range page.Data {
		data[i] = toTransactionResponse(transaction)
	}
	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       data,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}

// GetTransaction handles GET /api/v1/businesses/:businessId/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.ledgerService.GetTransaction(businessID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("business_id", businessID).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction handles PUT /api/v1/businesses/:businessId/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	input, resp := h.bindTransactionInput(c)
	if resp != nil {
		return resp
	}

	transaction, err := h.ledgerService.UpdateTransaction(businessID, id, *input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp := transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("business_id", businessID).Int32("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	log.Info().Int32("business_id", businessID).Int32("transaction_id", transaction.ID).Msg("Transaction updated")
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction handles DELETE /api/v1/businesses/:businessId/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.ledgerService.DeleteTransaction(businessID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("business_id", businessID).Int32("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().Int32("business_id", businessID).Int32("transaction_id", id).Msg("Transaction deleted")
	return c.NoContent(http.StatusNoContent)
}

// bindTransactionInput parses and validates the shared request body
func (h *TransactionHandler) bindTransactionInput(c echo.Context) (*service.CreateTransactionInput, error) {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, NewValidationError(c, "Invalid date, expected YYYY-MM-DD", []ValidationError{
			{Field: "date", Message: "Must be a valid date in YYYY-MM-DD format"},
		})
	}

	lines := make([]service.LineInput, len(req.Lines))
	for i, line := range req.Lines {
		debit, err := parseOptionalAmount(line.DebitAmount)
		if err != nil {
			return nil, NewValidationError(c, "Invalid debit amount", []ValidationError{
				{Field: "lines", Message: "Debit amounts must be valid decimal numbers"},
			})
		}
		credit, err := parseOptionalAmount(line.CreditAmount)
		if err != nil {
			return nil, NewValidationError(c, "Invalid credit amount", []ValidationError{
				{Field: "lines", Message: "Credit amounts must be valid decimal numbers"},
			})
		}
		lines[i] = service.LineInput{
			AccountID:    line.AccountID,
			DebitAmount:  debit,
			CreditAmount: credit,
		}
	}

	input := &service.CreateTransactionInput{
		Date:        date,
		Description: req.Description,
		Reference:   req.Reference,
		Lines:       lines,
	}
	if req.Type != nil {
		txType := domain.TransactionType(*req.Type)
		input.Type = &txType
	}
	return input, nil
}

func parseOptionalAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// transactionErrorResponse maps ledger validation errors; nil means the error
// is not a client error.
func transactionErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientLines):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "lines", Message: "A transaction needs at least two lines"},
		})
	case errors.Is(err, domain.ErrDegenerateLine):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "lines", Message: "Each line must have exactly one positive side"},
		})
	case errors.Is(err, domain.ErrImbalancedTransaction):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "lines", Message: "Total debits must equal total credits"},
		})
	case errors.Is(err, domain.ErrUnknownAccount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "lines", Message: "Each line must reference an active account of this business"},
		})
	case errors.Is(err, domain.ErrInvalidType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Unknown transaction type"},
		})
	}
	return nil
}

func toTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	lines := make([]TransactionLineResponse, len(transaction.Lines))
	for i, line := range transaction.Lines {
		lines[i] = TransactionLineResponse{
			ID:           line.ID,
			AccountID:    line.AccountID,
			AccountCode:  line.AccountCode,
			AccountName:  line.AccountName,
			DebitAmount:  line.DebitAmount.StringFixed(2),
			CreditAmount: line.CreditAmount.StringFixed(2),
		}
	}
	return TransactionResponse{
		ID:          transaction.ID,
		BusinessID:  transaction.BusinessID,
		Date:        transaction.Date.Format(dateLayout),
		Description: transaction.Description,
		Reference:   transaction.Reference,
		Type:        string(transaction.Type),
		Amount:      transaction.Amount.StringFixed(2),
		Lines:       lines,
		CreatedAt:   transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   transaction.UpdatedAt.Format(time.RFC3339),
	}
}
