package service

import (
	"strings"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
)

// BusinessService manages tenants
type BusinessService struct {
	businessRepo domain.BusinessRepository
}

// NewBusinessService creates a new BusinessService
func NewBusinessService(businessRepo domain.BusinessRepository) *BusinessService {
	return &BusinessService{businessRepo: businessRepo}
}

// CreateBusiness creates a new business
func (s *BusinessService) CreateBusiness(name string) (*domain.Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	return s.businessRepo.Create(&domain.Business{Name: name})
}

// GetBusiness retrieves a business by ID
func (s *BusinessService) GetBusiness(id int32) (*domain.Business, error) {
	return s.businessRepo.GetByID(id)
}

// GetBusinesses retrieves all businesses
func (s *BusinessService) GetBusinesses(includeInactive bool) ([]*domain.Business, error) {
	return s.businessRepo.GetAll(includeInactive)
}

// UpdateBusiness renames a business
func (s *BusinessService) UpdateBusiness(id int32, name string) (*domain.Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	return s.businessRepo.Update(id, name)
}

// DeactivateBusiness marks a business inactive; its ledger stays readable
func (s *BusinessService) DeactivateBusiness(id int32) error {
	return s.businessRepo.Deactivate(id)
}
