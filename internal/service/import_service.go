package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/importer"
	"github.com/ledgerline/ledgerline-backend/internal/repository/storage"
	"github.com/ledgerline/ledgerline-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ImportService turns bank statement CSVs into balanced ledger transactions.
// Each data row is processed independently: a bad row is reported and
// skipped, never aborting the run, so a partially imported file commits the
// rows that succeeded.
type ImportService struct {
	ledger   *LedgerService
	accounts *AccountService
	mappings *TypeMappingService
	// archive is optional; nil disables statement archiving
	archive   storage.ArchiveRepository
	publisher websocket.EventPublisher
}

// NewImportService creates a new ImportService
func NewImportService(ledger *LedgerService, accounts *AccountService, mappings *TypeMappingService, archive storage.ArchiveRepository, publisher websocket.EventPublisher) *ImportService {
	return &ImportService{
		ledger:    ledger,
		accounts:  accounts,
		mappings:  mappings,
		archive:   archive,
		publisher: publisher,
	}
}

// ImportOptions selects the accounts the generated transactions post to
type ImportOptions struct {
	// BankAccountID is the ledger account mirroring the bank account the
	// statement belongs to. Required.
	BankAccountID int32
	// ExpenseAccountID and RevenueAccountID override the offset accounts;
	// when nil the business's uncategorized accounts are used (created on
	// first import).
	ExpenseAccountID *int32
	RevenueAccountID *int32
	FileName         string
}

// Import runs the CSV pipeline: archive, header detection, row-by-row
// parsing, and transaction creation. Row numbers in error messages are
// 1-based physical line numbers of the file.
func (s *ImportService) Import(ctx context.Context, businessID int32, r io.Reader, opts ImportOptions) (*domain.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	s.archiveStatement(ctx, businessID, data, opts.FileName)

	content := strings.TrimPrefix(string(data), "\ufeff")
	lines := splitPhysicalLines(content)

	layout, err := importer.DetectLayout(lines)
	if err != nil {
		if errors.Is(err, importer.ErrNoHeaderFound) {
			return nil, domain.ErrNoHeaderFound
		}
		return nil, err
	}

	bank, err := s.accounts.GetAccount(businessID, opts.BankAccountID)
	if err != nil {
		return nil, err
	}

	expense, err := s.offsetAccount(businessID, opts.ExpenseAccountID, domain.CategoryExpense)
	if err != nil {
		return nil, err
	}
	revenue, err := s.offsetAccount(businessID, opts.RevenueAccountID, domain.CategoryRevenue)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{Errors: []string{}}

	for i := layout.HeaderLine + 1; i < len(lines); i++ {
		rowNum := i + 1
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields, err := importer.SplitLine(line)
		if err != nil {
			s.rowError(result, rowNum, "malformed CSV row")
			continue
		}

		s.importRow(result, rowNum, fields, layout, businessID, bank, expense, revenue)
	}

	log.Info().
		Int32("business_id", businessID).
		Str("format", layout.Format.String()).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("CSV import completed")

	s.publisher.Publish(businessID, websocket.ImportCompleted(result))
	return result, nil
}

// importRow parses one data row and creates its transaction
func (s *ImportService) importRow(result *domain.ImportResult, rowNum int, fields []string, layout *importer.Layout, businessID int32, bank, expense, revenue *domain.Account) {
	get := func(col string) string {
		idx, ok := layout.Columns[col]
		if !ok || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	dateStr := get(importer.ColPostingDate)
	if dateStr == "" {
		s.rowError(result, rowNum, "missing date")
		return
	}
	date, err := importer.ParseDate(dateStr)
	if err != nil {
		s.rowError(result, rowNum, fmt.Sprintf("invalid date format: %s", dateStr))
		return
	}

	description := get(importer.ColDescription)
	if description == "" {
		description = get(importer.ColDetails)
	}
	if description == "" {
		description = "Imported from CSV"
	}

	var reference *string
	if ref := get(importer.ColReference); ref != "" {
		reference = &ref
	}

	var amount decimal.Decimal
	var direction domain.Direction
	txType := domain.TypeAdjustment

	switch layout.Format {
	case importer.FormatColumnar:
		credit, debit := decimal.Zero, decimal.Zero
		if str := get(importer.ColCredit); str != "" {
			if credit, err = importer.ParseAmount(str); err != nil {
				s.rowError(result, rowNum, fmt.Sprintf("invalid amount: %s", str))
				return
			}
		}
		if str := get(importer.ColDebit); str != "" {
			if debit, err = importer.ParseAmount(str); err != nil {
				s.rowError(result, rowNum, fmt.Sprintf("invalid amount: %s", str))
				return
			}
		}
		switch {
		case credit.IsZero() && debit.IsZero():
			result.Skipped++
			return
		case credit.IsPositive() && debit.IsZero():
			amount, direction, txType = credit, domain.DirectionCredit, domain.TypeDeposit
		case debit.IsPositive() && credit.IsZero():
			amount, direction, txType = debit, domain.DirectionDebit, domain.TypeWithdrawal
		default:
			s.rowError(result, rowNum, "row must have exactly one of Credit or Debit")
			return
		}

	case importer.FormatSignBased:
		str := get(importer.ColAmount)
		if str == "" {
			s.rowError(result, rowNum, "missing amount")
			return
		}
		signed, err := importer.ParseAmount(str)
		if err != nil {
			s.rowError(result, rowNum, fmt.Sprintf("invalid amount: %s", str))
			return
		}
		if signed.IsZero() {
			// A zero movement has no ledger meaning; note it and move on
			s.rowError(result, rowNum, "zero amount, row skipped")
			return
		}
		if signed.IsNegative() {
			amount, direction, txType = signed.Abs(), domain.DirectionDebit, domain.TypeWithdrawal
		} else {
			amount, direction, txType = signed, domain.DirectionCredit, domain.TypeDeposit
		}

	case importer.FormatTypeBased:
		str := get(importer.ColAmount)
		if str == "" {
			s.rowError(result, rowNum, "missing amount")
			return
		}
		signed, err := importer.ParseAmount(str)
		if err != nil {
			s.rowError(result, rowNum, fmt.Sprintf("invalid amount: %s", str))
			return
		}
		if signed.IsZero() {
			result.Skipped++
			return
		}
		amount = signed.Abs()

		mapping, err := s.mappings.Resolve(get(importer.ColType))
		if err != nil {
			s.rowError(result, rowNum, fmt.Sprintf("failed to resolve type: %v", err))
			return
		}
		direction = mapping.Direction
		txType = mapping.InternalType
	}

	// Build the two legs. Money out debits the offset expense account and
	// credits the bank; money in debits the bank and credits revenue.
	var lines []LineInput
	if direction == domain.DirectionDebit {
		if expense.ID == bank.ID {
			s.rowError(result, rowNum, "expense account must differ from bank account")
			return
		}
		lines = []LineInput{
			{AccountID: expense.ID, DebitAmount: amount},
			{AccountID: bank.ID, CreditAmount: amount},
		}
	} else {
		if revenue.ID == bank.ID {
			s.rowError(result, rowNum, "revenue account must differ from bank account")
			return
		}
		lines = []LineInput{
			{AccountID: bank.ID, DebitAmount: amount},
			{AccountID: revenue.ID, CreditAmount: amount},
		}
	}

	_, err = s.ledger.CreateTransaction(businessID, CreateTransactionInput{
		Date:        date,
		Description: description,
		Reference:   reference,
		Type:        &txType,
		Lines:       lines,
	})
	if err != nil {
		s.rowError(result, rowNum, err.Error())
		return
	}
	result.Imported++
}

// offsetAccount resolves an explicit offset account or falls back to the
// business's uncategorized account for the category.
func (s *ImportService) offsetAccount(businessID int32, accountID *int32, category domain.AccountCategory) (*domain.Account, error) {
	if accountID != nil {
		return s.accounts.GetAccount(businessID, *accountID)
	}
	return s.accounts.GetOrCreateUncategorized(businessID, category)
}

// archiveStatement stores the raw upload; failures are logged, never fatal
func (s *ImportService) archiveStatement(ctx context.Context, businessID int32, data []byte, fileName string) {
	if s.archive == nil {
		return
	}
	objectPath := storage.StatementObjectPath(businessID, fileName)
	if _, err := s.archive.Store(ctx, objectPath, bytes.NewReader(data), "text/csv", int64(len(data))); err != nil {
		log.Warn().
			Err(err).
			Int32("business_id", businessID).
			Str("object_path", objectPath).
			Msg("Failed to archive statement file")
	}
}

func (s *ImportService) rowError(result *domain.ImportResult, rowNum int, msg string) {
	result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, msg))
	result.Skipped++
}

// splitPhysicalLines splits on newlines without collapsing anything, so
// indexes map 1:1 to physical line numbers.
func splitPhysicalLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
