package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// AccountHandler handles chart-of-accounts HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// AccountRequest represents the create/update account request body
type AccountRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	TypeID      int32   `json:"typeId"`
	ParentID    *int32  `json:"parentId,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          int32   `json:"id"`
	BusinessID  int32   `json:"businessId"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	TypeID      int32   `json:"typeId"`
	TypeCode    string  `json:"typeCode,omitempty"`
	TypeName    string  `json:"typeName,omitempty"`
	Category    string  `json:"category,omitempty"`
	ParentID    *int32  `json:"parentId,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// AccountTypeResponse represents an account type in API responses
type AccountTypeResponse struct {
	ID            int32  `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	NormalBalance string `json:"normalBalance"`
}

// CreateAccount handles POST /api/v1/businesses/:businessId/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := h.accountService.CreateAccount(businessID, service.CreateAccountInput{
		Code:        req.Code,
		Name:        req.Name,
		TypeID:      req.TypeID,
		ParentID:    req.ParentID,
		Description: req.Description,
	})
	if err != nil {
		if resp := accountErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().Int32("business_id", businessID).Int32("account_id", account.ID).Str("code", account.Code).Msg("Account created")
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/businesses/:businessId/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	includeInactive := c.QueryParam("includeInactive") == "true"
	accounts, err := h.accountService.GetAccounts(businessID, includeInactive)
	if err != nil {
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/businesses/:businessId/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccount(businessID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int32("business_id", businessID).Int32("account_id", id).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateAccount handles PUT /api/v1/businesses/:businessId/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	account, err := h.accountService.UpdateAccount(businessID, id, service.UpdateAccountInput{
		Code:        req.Code,
		Name:        req.Name,
		TypeID:      req.TypeID,
		ParentID:    req.ParentID,
		Description: req.Description,
		IsActive:    isActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountCycle) {
			return NewValidationError(c, "Parent assignment would create a cycle", []ValidationError{
				{Field: "parentId", Message: "Account cannot be its own ancestor"},
			})
		}
		if resp := accountErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("business_id", businessID).Int32("account_id", id).Msg("Failed to update account")
		return NewInternalError(c, "Failed to update account")
	}

	log.Info().Int32("business_id", businessID).Int32("account_id", account.ID).Msg("Account updated")
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeactivateAccount handles DELETE /api/v1/businesses/:businessId/accounts/:id
func (h *AccountHandler) DeactivateAccount(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeactivateAccount(businessID, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int32("business_id", businessID).Int32("account_id", id).Msg("Failed to deactivate account")
		return NewInternalError(c, "Failed to deactivate account")
	}

	log.Info().Int32("business_id", businessID).Int32("account_id", id).Msg("Account deactivated")
	return c.NoContent(http.StatusNoContent)
}

// GetAccountTypes handles GET /api/v1/account-types
func (h *AccountHandler) GetAccountTypes(c echo.Context) error {
	types, err := h.accountService.GetAccountTypes()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get account types")
		return NewInternalError(c, "Failed to get account types")
	}

	response := make([]AccountTypeResponse, len(types))
	for i, t := range types {
		response[i] = AccountTypeResponse{
			ID:            t.ID,
			Code:          t.Code,
			Name:          t.Name,
			Category:      string(t.Category),
			NormalBalance: string(t.NormalBalance),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// accountErrorResponse maps shared account validation errors; nil means the
// error is not a client error.
func accountErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrCodeRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "code", Message: "Code is required"},
		})
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrAccountTypeNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "typeId", Message: "Unknown account type"},
		})
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewNotFoundError(c, "Account not found")
	case errors.Is(err, domain.ErrDuplicateAccountCode):
		return NewConflictError(c, "An account with this code already exists")
	}
	return nil
}

func toAccountResponse(account *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:          account.ID,
		BusinessID:  account.BusinessID,
		Code:        account.Code,
		Name:        account.Name,
		TypeID:      account.TypeID,
		ParentID:    account.ParentID,
		Description: account.Description,
		IsActive:    account.IsActive,
		CreatedAt:   account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   account.UpdatedAt.Format(time.RFC3339),
	}
	if account.Type != nil {
		resp.TypeCode = account.Type.Code
		resp.TypeName = account.Type.Name
		resp.Category = string(account.Type.Category)
	}
	return resp
}
