package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// maxStatementSize caps uploaded statement files at 10 MB
const maxStatementSize = 10 << 20

// ImportHandler handles CSV statement import HTTP requests
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportResponse represents the outcome of an import run
type ImportResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ImportStatement handles POST /api/v1/businesses/:businessId/imports.
// The request is multipart form data with a "file" part and account fields.
func (h *ImportHandler) ImportStatement(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "Missing file", []ValidationError{
			{Field: "file", Message: "A CSV file is required"},
		})
	}
	if fileHeader.Size > maxStatementSize {
		return NewValidationError(c, "File too large", []ValidationError{
			{Field: "file", Message: "Statement files are limited to 10 MB"},
		})
	}

	opts := service.ImportOptions{FileName: fileHeader.Filename}

	bankAccountID, err := formAccountID(c, "bankAccountId")
	if err != nil || bankAccountID == nil {
		return NewValidationError(c, "Invalid bank account", []ValidationError{
			{Field: "bankAccountId", Message: "A bank account ID is required"},
		})
	}
	opts.BankAccountID = *bankAccountID

	if opts.ExpenseAccountID, err = formAccountID(c, "expenseAccountId"); err != nil {
		return NewValidationError(c, "Invalid expense account", nil)
	}
	if opts.RevenueAccountID, err = formAccountID(c, "revenueAccountId"); err != nil {
		return NewValidationError(c, "Invalid revenue account", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request().Context(), businessID, file, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoHeaderFound):
			return NewValidationError(c, "Could not detect a statement header in the first 20 lines", nil)
		case errors.Is(err, domain.ErrAccountNotFound):
			return NewValidationError(c, "Unknown account", []ValidationError{
				{Field: "bankAccountId", Message: "Account does not exist in this business"},
			})
		}
		log.Error().Err(err).Int32("business_id", businessID).Msg("Import failed")
		return NewInternalError(c, "Import failed")
	}

	return c.JSON(http.StatusOK, ImportResponse{
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Errors:   result.Errors,
	})
}

// formAccountID parses an optional account ID form field
func formAccountID(c echo.Context, field string) (*int32, error) {
	value := c.FormValue(field)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid account id")
	}
	result := int32(id)
	return &result, nil
}
