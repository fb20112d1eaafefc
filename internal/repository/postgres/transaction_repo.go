package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerline/ledgerline-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts the transaction header and its lines atomically
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (business_id, date, description, reference, type, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		transaction.BusinessID, timeToPgDate(transaction.Date), transaction.Description,
		transaction.Reference, string(transaction.Type), amount,
	).Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := insertLines(ctx, tx, transaction); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetByID retrieves a transaction with its lines
func (r *TransactionRepository) GetByID(businessID int32, id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT id, business_id, date, description, reference, type, amount, created_at, updated_at
		FROM transactions
		WHERE business_id = $1 AND id = $2`,
		businessID, id,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	linesByTx, err := r.loadLines(ctx, []int32{id})
	if err != nil {
		return nil, err
	}
	transaction.Lines = linesByTx[id]
	return transaction, nil
}

// GetByBusiness retrieves a page of transactions matching the filters,
// newest first.
func (r *TransactionRepository) GetByBusiness(businessID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	var accountID *int32
	var startDate, endDate *time.Time
	var txType *string
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
		}
		accountID = filters.AccountID
		startDate = filters.StartDate
		endDate = filters.EndDate
		if filters.Type != nil {
			s := string(*filters.Type)
			txType = &s
		}
	}

	where := `
		WHERE t.business_id = $1
		  AND ($2::date IS NULL OR t.date >= $2)
		  AND ($3::date IS NULL OR t.date <= $3)
		  AND ($4::text IS NULL OR t.type = $4)
		  AND ($5::int IS NULL OR EXISTS (
		        SELECT 1 FROM transaction_lines l
		        WHERE l.transaction_id = t.id AND l.account_id = $5))`
	args := []any{businessID, timePtrToPgDate(startDate), timePtrToPgDate(endDate), txType, accountID}

	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.business_id, t.date, t.description, t.reference, t.type, t.amount, t.created_at, t.updated_at
		FROM transactions t`+where+`
		ORDER BY t.date DESC, t.id DESC
		LIMIT $6 OFFSET $7`,
		append(args, pageSize, (page-1)*pageSize)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	ids := make([]int32, 0)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
		ids = append(ids, transaction.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	linesByTx, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, transaction := range transactions {
		transaction.Lines = linesByTx[transaction.ID]
	}

	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Replace rewrites a transaction's header and lines atomically
func (r *TransactionRepository) Replace(businessID int32, id int32, transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	err = tx.QueryRow(ctx, `
		UPDATE transactions
		SET date = $3, description = $4, reference = $5, type = $6, amount = $7, updated_at = NOW()
		WHERE business_id = $1 AND id = $2
		RETURNING id, created_at, updated_at`,
		businessID, id, timeToPgDate(transaction.Date), transaction.Description,
		transaction.Reference, string(transaction.Type), amount,
	).Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	transaction.BusinessID = businessID

	if _, err := tx.Exec(ctx, `DELETE FROM transaction_lines WHERE transaction_id = $1`, id); err != nil {
		return nil, err
	}
	if err := insertLines(ctx, tx, transaction); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return transaction, nil
}

// Delete removes a transaction; its lines cascade
func (r *TransactionRepository) Delete(businessID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM transactions
		WHERE business_id = $1 AND id = $2`,
		businessID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SumActivityByAccount sums debits and credits per account over an optional
// inclusive date window. Nil bounds leave that side open.
func (r *TransactionRepository) SumActivityByAccount(businessID int32, startDate, endDate *time.Time) ([]*domain.AccountActivity, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT l.account_id,
		       COALESCE(SUM(l.debit_amount), 0),
		       COALESCE(SUM(l.credit_amount), 0)
		FROM transaction_lines l
		JOIN transactions t ON t.id = l.transaction_id
		WHERE t.business_id = $1
		  AND ($2::date IS NULL OR t.date >= $2)
		  AND ($3::date IS NULL OR t.date <= $3)
		GROUP BY l.account_id
		ORDER BY l.account_id`,
		businessID, timePtrToPgDate(startDate), timePtrToPgDate(endDate),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*domain.AccountActivity, 0)
	for rows.Next() {
		var a domain.AccountActivity
		var debits, credits pgtype.Numeric
		if err := rows.Scan(&a.AccountID, &debits, &credits); err != nil {
			return nil, err
		}
		a.TotalDebits = pgNumericToDecimal(debits)
		a.TotalCredits = pgNumericToDecimal(credits)
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}

// GetAccountEntries lists one account's line-level history, oldest first
func (r *TransactionRepository) GetAccountEntries(businessID int32, accountID int32, startDate, endDate *time.Time) ([]*domain.AccountLedgerEntry, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.date, t.description, t.reference, t.type, l.debit_amount, l.credit_amount
		FROM transaction_lines l
		JOIN transactions t ON t.id = l.transaction_id
		WHERE t.business_id = $1
		  AND l.account_id = $2
		  AND ($3::date IS NULL OR t.date >= $3)
		  AND ($4::date IS NULL OR t.date <= $4)
		ORDER BY t.date, t.id`,
		businessID, accountID, timePtrToPgDate(startDate), timePtrToPgDate(endDate),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.AccountLedgerEntry, 0)
	for rows.Next() {
		var e domain.AccountLedgerEntry
		var debit, credit pgtype.Numeric
		if err := rows.Scan(&e.TransactionID, &e.Date, &e.Description, &e.Reference, &e.Type, &debit, &credit); err != nil {
			return nil, err
		}
		e.DebitAmount = pgNumericToDecimal(debit)
		e.CreditAmount = pgNumericToDecimal(credit)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func insertLines(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error {
	for i := range transaction.Lines {
		line := &transaction.Lines[i]
		debit, err := decimalToPgNumeric(line.DebitAmount)
		if err != nil {
			return fmt.Errorf("invalid debit amount: %w", err)
		}
		credit, err := decimalToPgNumeric(line.CreditAmount)
		if err != nil {
			return fmt.Errorf("invalid credit amount: %w", err)
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO transaction_lines (transaction_id, account_id, debit_amount, credit_amount)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			transaction.ID, line.AccountID, debit, credit,
		).Scan(&line.ID)
		if err != nil {
			return err
		}
		line.TransactionID = transaction.ID
	}
	return nil
}

// loadLines batch-loads lines for a set of transactions, enriched with
// account code and name.
func (r *TransactionRepository) loadLines(ctx context.Context, ids []int32) (map[int32][]domain.TransactionLine, error) {
	result := make(map[int32][]domain.TransactionLine, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.transaction_id, l.account_id, l.debit_amount, l.credit_amount,
		       a.code, a.name
		FROM transaction_lines l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.transaction_id = ANY($1)
		ORDER BY l.transaction_id, l.id`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.TransactionLine
		var debit, credit pgtype.Numeric
		err := rows.Scan(&line.ID, &line.TransactionID, &line.AccountID,
			&debit, &credit, &line.AccountCode, &line.AccountName)
		if err != nil {
			return nil, err
		}
		line.DebitAmount = pgNumericToDecimal(debit)
		line.CreditAmount = pgNumericToDecimal(credit)
		result[line.TransactionID] = append(result[line.TransactionID], line)
	}
	return result, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount pgtype.Numeric
	err := row.Scan(&t.ID, &t.BusinessID, &t.Date, &t.Description, &t.Reference,
		&t.Type, &amount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	return &t, nil
}
