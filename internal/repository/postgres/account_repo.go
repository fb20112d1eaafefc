package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountSelect = `
	SELECT a.id, a.business_id, a.code, a.name, a.type_id, a.parent_id,
	       a.description, a.is_active, a.created_at, a.updated_at,
	       t.id, t.code, t.name, t.category, t.normal_balance
	FROM accounts a
	JOIN account_types t ON t.id = a.type_id`

// Create creates a new account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO accounts (business_id, code, name, type_id, parent_id, description)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT a.id, a.business_id, a.code, a.name, a.type_id, a.parent_id,
		       a.description, a.is_active, a.created_at, a.updated_at,
		       t.id, t.code, t.name, t.category, t.normal_balance
		FROM inserted a
		JOIN account_types t ON t.id = a.type_id`,
		account.BusinessID, account.Code, account.Name, account.TypeID,
		account.ParentID, account.Description,
	)
	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateAccountCode
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an account by its ID within a business
func (r *AccountRepository) GetByID(businessID int32, id int32) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, accountSelect+`
		WHERE a.business_id = $1 AND a.id = $2`,
		businessID, id,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetByCode retrieves an account by its code within a business
func (r *AccountRepository) GetByCode(businessID int32, code string) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, accountSelect+`
		WHERE a.business_id = $1 AND a.code = $2`,
		businessID, code,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAllByBusiness retrieves all accounts for a business, ordered by code
func (r *AccountRepository) GetAllByBusiness(businessID int32, includeInactive bool) ([]*domain.Account, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, accountSelect+`
		WHERE a.business_id = $1 AND (a.is_active OR $2)
		ORDER BY a.code`,
		businessID, includeInactive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// GetByCategories retrieves active accounts whose type falls in the given categories
func (r *AccountRepository) GetByCategories(businessID int32, categories []domain.AccountCategory) ([]*domain.Account, error) {
	ctx := context.Background()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	rows, err := r.pool.Query(ctx, accountSelect+`
		WHERE a.business_id = $1 AND a.is_active AND t.category = ANY($2)
		ORDER BY a.code`,
		businessID, names,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// Update updates an account
func (r *AccountRepository) Update(businessID int32, id int32, data *domain.UpdateAccountData) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE accounts
			SET code = $3, name = $4, type_id = $5, parent_id = $6,
			    description = $7, is_active = $8, updated_at = NOW()
			WHERE business_id = $1 AND id = $2
			RETURNING *
		)
		SELECT a.id, a.business_id, a.code, a.name, a.type_id, a.parent_id,
		       a.description, a.is_active, a.created_at, a.updated_at,
		       t.id, t.code, t.name, t.category, t.normal_balance
		FROM updated a
		JOIN account_types t ON t.id = a.type_id`,
		businessID, id, data.Code, data.Name, data.TypeID,
		data.ParentID, data.Description, data.IsActive,
	)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateAccountCode
		}
		return nil, err
	}
	return account, nil
}

// Deactivate marks an account inactive; transaction history referencing it stays
func (r *AccountRepository) Deactivate(businessID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET is_active = FALSE, updated_at = NOW()
		WHERE business_id = $1 AND id = $2`,
		businessID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var t domain.AccountType
	err := row.Scan(
		&a.ID, &a.BusinessID, &a.Code, &a.Name, &a.TypeID, &a.ParentID,
		&a.Description, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		&t.ID, &t.Code, &t.Name, &t.Category, &t.NormalBalance,
	)
	if err != nil {
		return nil, err
	}
	a.Type = &t
	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
