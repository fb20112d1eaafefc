package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
)

// AccountTypeRepository implements domain.AccountTypeRepository using PostgreSQL.
// Account types are a global master list seeded by the migrations.
type AccountTypeRepository struct {
	pool *pgxpool.Pool
}

// NewAccountTypeRepository creates a new AccountTypeRepository
func NewAccountTypeRepository(pool *pgxpool.Pool) *AccountTypeRepository {
	return &AccountTypeRepository{pool: pool}
}

const accountTypeColumns = "id, code, name, category, normal_balance"

// GetAll retrieves the account type master list
func (r *AccountTypeRepository) GetAll() ([]*domain.AccountType, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountTypeColumns+`
		FROM account_types
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*domain.AccountType, 0)
	for rows.Next() {
		accountType, err := scanAccountType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, accountType)
	}
	return types, rows.Err()
}

// GetByID retrieves an account type by its ID
func (r *AccountTypeRepository) GetByID(id int32) (*domain.AccountType, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountTypeColumns+`
		FROM account_types
		WHERE id = $1`,
		id,
	)
	accountType, err := scanAccountType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountTypeNotFound
		}
		return nil, err
	}
	return accountType, nil
}

// GetFirstByCategory retrieves the lowest-ID account type in a category
func (r *AccountTypeRepository) GetFirstByCategory(category domain.AccountCategory) (*domain.AccountType, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountTypeColumns+`
		FROM account_types
		WHERE category = $1
		ORDER BY id
		LIMIT 1`,
		string(category),
	)
	accountType, err := scanAccountType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountTypeNotFound
		}
		return nil, err
	}
	return accountType, nil
}

func scanAccountType(row pgx.Row) (*domain.AccountType, error) {
	var t domain.AccountType
	err := row.Scan(&t.ID, &t.Code, &t.Name, &t.Category, &t.NormalBalance)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
