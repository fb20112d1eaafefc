package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
)

// BusinessRepository implements domain.BusinessRepository using PostgreSQL
type BusinessRepository struct {
	pool *pgxpool.Pool
}

// NewBusinessRepository creates a new BusinessRepository
func NewBusinessRepository(pool *pgxpool.Pool) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

const businessColumns = "id, name, is_active, created_at, updated_at"

// Create creates a new business
func (r *BusinessRepository) Create(business *domain.Business) (*domain.Business, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO businesses (name)
		VALUES ($1)
		RETURNING `+businessColumns,
		business.Name,
	)
	return scanBusiness(row)
}

// GetByID retrieves a business by its ID
func (r *BusinessRepository) GetByID(id int32) (*domain.Business, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+businessColumns+`
		FROM businesses
		WHERE id = $1`,
		id,
	)
	business, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

// GetAll retrieves all businesses, optionally including deactivated ones
func (r *BusinessRepository) GetAll(includeInactive bool) ([]*domain.Business, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+businessColumns+`
		FROM businesses
		WHERE is_active OR $1
		ORDER BY id`,
		includeInactive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	businesses := make([]*domain.Business, 0)
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, business)
	}
	return businesses, rows.Err()
}

// Update renames a business
func (r *BusinessRepository) Update(id int32, name string) (*domain.Business, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE businesses
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+businessColumns,
		id, name,
	)
	business, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

// Deactivate marks a business inactive; its data is kept
func (r *BusinessRepository) Deactivate(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE businesses
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBusinessNotFound
	}
	return nil
}

func scanBusiness(row pgx.Row) (*domain.Business, error) {
	var b domain.Business
	err := row.Scan(&b.ID, &b.Name, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
