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

// TypeMappingHandler handles CSV type mapping HTTP requests
type TypeMappingHandler struct {
	typeMappingService *service.TypeMappingService
}

// NewTypeMappingHandler creates a new TypeMappingHandler
func NewTypeMappingHandler(typeMappingService *service.TypeMappingService) *TypeMappingHandler {
	return &TypeMappingHandler{typeMappingService: typeMappingService}
}

// TypeMappingRequest represents the create/update mapping request body
type TypeMappingRequest struct {
	CSVType      string  `json:"csvType"`
	InternalType string  `json:"internalType"`
	Direction    string  `json:"direction"`
	Description  *string `json:"description,omitempty"`
}

// TypeMappingResponse represents a mapping in API responses
type TypeMappingResponse struct {
	ID           int32   `json:"id"`
	CSVType      string  `json:"csvType"`
	InternalType string  `json:"internalType"`
	Direction    string  `json:"direction"`
	Description  *string `json:"description,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

// GetMappings handles GET /api/v1/type-mappings
func (h *TypeMappingHandler) GetMappings(c echo.Context) error {
	mappings, err := h.typeMappingService.GetMappings()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get type mappings")
		return NewInternalError(c, "Failed to get type mappings")
	}

	response := make([]TypeMappingResponse, len(mappings))
	for i, mapping := range mappings {
		response[i] = toTypeMappingResponse(mapping)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateMapping handles POST /api/v1/type-mappings
func (h *TypeMappingHandler) CreateMapping(c echo.Context) error {
	var req TypeMappingRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	mapping, err := h.typeMappingService.CreateMapping(service.CreateMappingInput{
		CSVType:      req.CSVType,
		InternalType: domain.TransactionType(req.InternalType),
		Direction:    domain.Direction(req.Direction),
		Description:  req.Description,
	})
	if err != nil {
		if resp := mappingErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Msg("Failed to create type mapping")
		return NewInternalError(c, "Failed to create type mapping")
	}

	log.Info().Int32("mapping_id", mapping.ID).Str("csv_type", mapping.CSVType).Msg("Type mapping created")
	return c.JSON(http.StatusCreated, toTypeMappingResponse(mapping))
}

// UpdateMapping handles PUT /api/v1/type-mappings/:id
func (h *TypeMappingHandler) UpdateMapping(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid mapping ID", nil)
	}

	var req TypeMappingRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	mapping, err := h.typeMappingService.UpdateMapping(id, service.CreateMappingInput{
		InternalType: domain.TransactionType(req.InternalType),
		Direction:    domain.Direction(req.Direction),
		Description:  req.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTypeMappingNotFound) {
			return NewNotFoundError(c, "Type mapping not found")
		}
		if resp := mappingErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("mapping_id", id).Msg("Failed to update type mapping")
		return NewInternalError(c, "Failed to update type mapping")
	}

	log.Info().Int32("mapping_id", mapping.ID).Msg("Type mapping updated")
	return c.JSON(http.StatusOK, toTypeMappingResponse(mapping))
}

// DeleteMapping handles DELETE /api/v1/type-mappings/:id
func (h *TypeMappingHandler) DeleteMapping(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid mapping ID", nil)
	}

	if err := h.typeMappingService.DeleteMapping(id); err != nil {
		if errors.Is(err, domain.ErrTypeMappingNotFound) {
			return NewNotFoundError(c, "Type mapping not found")
		}
		log.Error().Err(err).Int32("mapping_id", id).Msg("Failed to delete type mapping")
		return NewInternalError(c, "Failed to delete type mapping")
	}

	log.Info().Int32("mapping_id", id).Msg("Type mapping deleted")
	return c.NoContent(http.StatusNoContent)
}

func mappingErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrCodeRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "csvType", Message: "CSV type is required"},
		})
	case errors.Is(err, domain.ErrInvalidType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "internalType", Message: "Unknown transaction type"},
		})
	case errors.Is(err, domain.ErrInvalidDirection):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "direction", Message: "Direction must be DEBIT or CREDIT"},
		})
	case errors.Is(err, domain.ErrDuplicateTypeMapping):
		return NewConflictError(c, "A mapping for this CSV type already exists")
	}
	return nil
}

func toTypeMappingResponse(mapping *domain.TypeMapping) TypeMappingResponse {
	return TypeMappingResponse{
		ID:           mapping.ID,
		CSVType:      mapping.CSVType,
		InternalType: string(mapping.InternalType),
		Direction:    string(mapping.Direction),
		Description:  mapping.Description,
		CreatedAt:    mapping.CreatedAt.Format(time.RFC3339),
	}
}
