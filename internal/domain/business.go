package domain

import "time"

// Business is a tenant. Every account and transaction is scoped to exactly
// one business; no operation crosses businesses except the combined reports,
// which are read-only.
type Business struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BusinessRepository interface {
	Create(business *Business) (*Business, error)
	GetByID(id int32) (*Business, error)
	GetAll(includeInactive bool) ([]*Business, error)
	Update(id int32, name string) (*Business, error)
	Deactivate(id int32) error
}
