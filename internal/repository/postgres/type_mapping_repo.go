package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
)

// TypeMappingRepository implements domain.TypeMappingRepository using PostgreSQL
type TypeMappingRepository struct {
	pool *pgxpool.Pool
}

// NewTypeMappingRepository creates a new TypeMappingRepository
func NewTypeMappingRepository(pool *pgxpool.Pool) *TypeMappingRepository {
	return &TypeMappingRepository{pool: pool}
}

const typeMappingColumns = "id, csv_type, internal_type, direction, description, created_at"

// GetByCSVType retrieves a mapping by its CSV type key
func (r *TypeMappingRepository) GetByCSVType(csvType string) (*domain.TypeMapping, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+typeMappingColumns+`
		FROM type_mappings
		WHERE csv_type = $1`,
		csvType,
	)
	mapping, err := scanTypeMapping(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTypeMappingNotFound
		}
		return nil, err
	}
	return mapping, nil
}

// GetAll retrieves all mappings ordered by CSV type
func (r *TypeMappingRepository) GetAll() ([]*domain.TypeMapping, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+typeMappingColumns+`
		FROM type_mappings
		ORDER BY csv_type`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mappings := make([]*domain.TypeMapping, 0)
	for rows.Next() {
		mapping, err := scanTypeMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}
	return mappings, rows.Err()
}

// Create creates a new mapping. A concurrent insert of the same key surfaces
// as ErrDuplicateTypeMapping so the caller can re-read the winner.
func (r *TypeMappingRepository) Create(mapping *domain.TypeMapping) (*domain.TypeMapping, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO type_mappings (csv_type, internal_type, direction, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+typeMappingColumns,
		mapping.CSVType, string(mapping.InternalType), string(mapping.Direction), mapping.Description,
	)
	created, err := scanTypeMapping(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateTypeMapping
		}
		return nil, err
	}
	return created, nil
}

// Update updates a mapping's target type and direction
func (r *TypeMappingRepository) Update(id int32, data *domain.UpdateTypeMappingData) (*domain.TypeMapping, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE type_mappings
		SET internal_type = $2, direction = $3, description = $4
		WHERE id = $1
		RETURNING `+typeMappingColumns,
		id, string(data.InternalType), string(data.Direction), data.Description,
	)
	mapping, err := scanTypeMapping(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTypeMappingNotFound
		}
		return nil, err
	}
	return mapping, nil
}

// Delete removes a mapping
func (r *TypeMappingRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM type_mappings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTypeMappingNotFound
	}
	return nil
}

func scanTypeMapping(row pgx.Row) (*domain.TypeMapping, error) {
	var m domain.TypeMapping
	err := row.Scan(&m.ID, &m.CSVType, &m.InternalType, &m.Direction, &m.Description, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
