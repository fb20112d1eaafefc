package domain

import "time"

// Direction says which way money moved relative to the bank account:
// DEBIT means money left it, CREDIT means money came in.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// TypeMapping translates a bank CSV type string (upper-cased, trimmed) into
// an internal transaction type and direction. Mappings are shared across
// businesses.
type TypeMapping struct {
	ID           int32           `json:"id"`
	CSVType      string          `json:"csvType"`
	InternalType TransactionType `json:"internalType"`
	Direction    Direction       `json:"direction"`
	Description  *string         `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// UpdateTypeMappingData holds the fields applied by a mapping update.
type UpdateTypeMappingData struct {
	InternalType TransactionType
	Direction    Direction
	Description  *string
}

type TypeMappingRepository interface {
	GetByCSVType(csvType string) (*TypeMapping, error)
	GetAll() ([]*TypeMapping, error)
	Create(mapping *TypeMapping) (*TypeMapping, error)
	Update(id int32, data *UpdateTypeMappingData) (*TypeMapping, error)
	Delete(id int32) error
}
