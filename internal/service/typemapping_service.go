package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// TypeMappingService resolves bank CSV type strings to internal transaction
// types, persisting derived mappings so later imports hit the exact lookup.
type TypeMappingService struct {
	mappingRepo domain.TypeMappingRepository
}

// NewTypeMappingService creates a new TypeMappingService
func NewTypeMappingService(mappingRepo domain.TypeMappingRepository) *TypeMappingService {
	return &TypeMappingService{mappingRepo: mappingRepo}
}

// typeRule maps a keyword found in a CSV type string to an internal type
// and direction. Rules are checked in order and the first match wins, so
// inflow keywords sit above the generic outflow ones: "ACH_CREDIT DEPOSIT"
// is a DEPOSIT, "CREDIT CARD PAYMENT" a PAYMENT_RECEIVED.
type typeRule struct {
	keyword      string
	internalType domain.TransactionType
	direction    domain.Direction
}

var typeRules = []typeRule{
	{"DEPOSIT", domain.TypeDeposit, domain.DirectionCredit},
	{"INCOME", domain.TypeIncome, domain.DirectionCredit},
	{"CREDIT", domain.TypePaymentReceived, domain.DirectionCredit},
	{"RECEIVED", domain.TypePaymentReceived, domain.DirectionCredit},
	{"INTEREST", domain.TypePaymentReceived, domain.DirectionCredit},
	{"DIVIDEND", domain.TypePaymentReceived, domain.DirectionCredit},
	{"WITHDRAWAL", domain.TypeWithdrawal, domain.DirectionDebit},
	{"FEE", domain.TypeExpense, domain.DirectionDebit},
	{"EXPENSE", domain.TypeExpense, domain.DirectionDebit},
	{"DEBIT", domain.TypePayment, domain.DirectionDebit},
	{"PAYMENT", domain.TypePayment, domain.DirectionDebit},
	{"CHARGE", domain.TypePayment, domain.DirectionDebit},
}

// Classify derives an internal type and direction for a CSV type with no
// stored mapping. Unmatched strings fall back to an ADJUSTMENT debit.
func Classify(csvType string) (domain.TransactionType, domain.Direction) {
	key := strings.ToUpper(strings.TrimSpace(csvType))
	for _, rule := range typeRules {
		if strings.Contains(key, rule.keyword) {
			return rule.internalType, rule.direction
		}
	}
	return domain.TypeAdjustment, domain.DirectionDebit
}

// Resolve returns the mapping for a CSV type, deriving and persisting one
// when no exact match exists. Resolve is idempotent: the same input always
// yields the same mapping, and a lost insert race is settled by re-reading
// the winner's row.
func (s *TypeMappingService) Resolve(csvType string) (*domain.TypeMapping, error) {
	key := strings.ToUpper(strings.TrimSpace(csvType))

	mapping, err := s.mappingRepo.GetByCSVType(key)
	if err == nil {
		return mapping, nil
	}
	if !errors.Is(err, domain.ErrTypeMappingNotFound) {
		return nil, err
	}

	internalType, direction := Classify(key)
	description := fmt.Sprintf("Auto-created from import for %q", csvType)

	created, err := s.mappingRepo.Create(&domain.TypeMapping{
		CSVType:      key,
		InternalType: internalType,
		Direction:    direction,
		Description:  &description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateTypeMapping) {
			// Another import inserted the same key first
			return s.mappingRepo.GetByCSVType(key)
		}
		return nil, err
	}

	log.Debug().
		Str("csv_type", key).
		Str("internal_type", string(internalType)).
		Str("direction", string(direction)).
		Msg("Auto-created type mapping")

	return created, nil
}

// GetMappings returns all stored mappings
func (s *TypeMappingService) GetMappings() ([]*domain.TypeMapping, error) {
	return s.mappingRepo.GetAll()
}

// CreateMappingInput holds the input for explicitly creating a mapping
type CreateMappingInput struct {
	CSVType      string
	InternalType domain.TransactionType
	Direction    domain.Direction
	Description  *string
}

// CreateMapping explicitly creates a mapping
func (s *TypeMappingService) CreateMapping(input CreateMappingInput) (*domain.TypeMapping, error) {
	key := strings.ToUpper(strings.TrimSpace(input.CSVType))
	if key == "" {
		return nil, domain.ErrCodeRequired
	}
	if !domain.ValidTransactionType(input.InternalType) {
		return nil, domain.ErrInvalidType
	}
	if input.Direction != domain.DirectionDebit && input.Direction != domain.DirectionCredit {
		return nil, domain.ErrInvalidDirection
	}
	return s.mappingRepo.Create(&domain.TypeMapping{
		CSVType:      key,
		InternalType: input.InternalType,
		Direction:    input.Direction,
		Description:  input.Description,
	})
}

// UpdateMapping updates an existing mapping's type, direction and description
func (s *TypeMappingService) UpdateMapping(id int32, input CreateMappingInput) (*domain.TypeMapping, error) {
	if !domain.ValidTransactionType(input.InternalType) {
		return nil, domain.ErrInvalidType
	}
	if input.Direction != domain.DirectionDebit && input.Direction != domain.DirectionCredit {
		return nil, domain.ErrInvalidDirection
	}
	return s.mappingRepo.Update(id, &domain.UpdateTypeMappingData{
		InternalType: input.InternalType,
		Direction:    input.Direction,
		Description:  input.Description,
	})
}

// DeleteMapping removes a mapping
func (s *TypeMappingService) DeleteMapping(id int32) error {
	return s.mappingRepo.Delete(id)
}
