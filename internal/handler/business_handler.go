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

// BusinessHandler handles business-related HTTP requests
type BusinessHandler struct {
	businessService *service.BusinessService
}

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(businessService *service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// BusinessRequest represents the create/update business request body
type BusinessRequest struct {
	Name string `json:"name"`
}

// BusinessResponse represents a business in API responses
type BusinessResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateBusiness handles POST /api/v1/businesses
func (h *BusinessHandler) CreateBusiness(c echo.Context) error {
	var req BusinessRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	business, err := h.businessService.CreateBusiness(req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		log.Error().Err(err).Msg("Failed to create business")
		return NewInternalError(c, "Failed to create business")
	}

	log.Info().Int32("business_id", business.ID).Str("name", business.Name).Msg("Business created")
	return c.JSON(http.StatusCreated, toBusinessResponse(business))
}

// GetBusinesses handles GET /api/v1/businesses
func (h *BusinessHandler) GetBusinesses(c echo.Context) error {
	includeInactive := c.QueryParam("includeInactive") == "true"

	businesses, err := h.businessService.GetBusinesses(includeInactive)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get businesses")
		return NewInternalError(c, "Failed to get businesses")
	}

	response := make([]BusinessResponse, len(businesses))
	for i, business := range businesses {
		response[i] = toBusinessResponse(business)
	}
	return c.JSON(http.StatusOK, response)
}

// GetBusiness handles GET /api/v1/businesses/:businessId
func (h *BusinessHandler) GetBusiness(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	business, err := h.businessService.GetBusiness(businessID)
	if err != nil {
		if errors.Is(err, domain.ErrBusinessNotFound) {
			return NewNotFoundError(c, "Business not found")
		}
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to get business")
		return NewInternalError(c, "Failed to get business")
	}
	return c.JSON(http.StatusOK, toBusinessResponse(business))
}

// UpdateBusiness handles PUT /api/v1/businesses/:businessId
func (h *BusinessHandler) UpdateBusiness(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	var req BusinessRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	business, err := h.businessService.UpdateBusiness(businessID, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrBusinessNotFound) {
			return NewNotFoundError(c, "Business not found")
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to update business")
		return NewInternalError(c, "Failed to update business")
	}

	log.Info().Int32("business_id", business.ID).Str("name", business.Name).Msg("Business updated")
	return c.JSON(http.StatusOK, toBusinessResponse(business))
}

// DeactivateBusiness handles DELETE /api/v1/businesses/:businessId
func (h *BusinessHandler) DeactivateBusiness(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return NewValidationError(c, "Invalid business ID", nil)
	}

	if err := h.businessService.DeactivateBusiness(businessID); err != nil {
		if errors.Is(err, domain.ErrBusinessNotFound) {
			return NewNotFoundError(c, "Business not found")
		}
		log.Error().Err(err).Int32("business_id", businessID).Msg("Failed to deactivate business")
		return NewInternalError(c, "Failed to deactivate business")
	}

	log.Info().Int32("business_id", businessID).Msg("Business deactivated")
	return c.NoContent(http.StatusNoContent)
}

func toBusinessResponse(business *domain.Business) BusinessResponse {
	return BusinessResponse{
		ID:        business.ID,
		Name:      business.Name,
		IsActive:  business.IsActive,
		CreatedAt: business.CreatedAt.Format(time.RFC3339),
		UpdatedAt: business.UpdatedAt.Format(time.RFC3339),
	}
}
