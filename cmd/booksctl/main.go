package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerline/ledgerline-backend/internal/config"
	"github.com/ledgerline/ledgerline-backend/internal/repository/postgres"
	"github.com/ledgerline/ledgerline-backend/internal/service"
	"github.com/ledgerline/ledgerline-backend/internal/websocket"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "booksctl",
		Short: "Bookkeeping administration CLI",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newMappingsCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newImportCommand() *cobra.Command {
	var businessID int32
	var bankAccountID int32
	var expenseAccountID int32
	var revenueAccountID int32

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Import a bank statement CSV into a business ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer file.Close()

			importService := newImportService(pool)

			opts := service.ImportOptions{
				BankAccountID: bankAccountID,
				FileName:      filepath.Base(args[0]),
			}
			if expenseAccountID != 0 {
				opts.ExpenseAccountID = &expenseAccountID
			}
			if revenueAccountID != 0 {
				opts.RevenueAccountID = &revenueAccountID
			}

			result, err := importService.Import(ctx, businessID, file, opts)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d transaction(s), skipped %d row(s)\n", result.Imported, result.Skipped)
			for _, rowErr := range result.Errors {
				fmt.Println(" ", rowErr)
			}
			return nil
		},
	}

	cmd.Flags().Int32Var(&businessID, "business", 0, "business ID (required)")
	_ = cmd.MarkFlagRequired("business")
	cmd.Flags().Int32Var(&bankAccountID, "bank-account", 0, "ledger account mirroring the bank account (required)")
	_ = cmd.MarkFlagRequired("bank-account")
	cmd.Flags().Int32Var(&expenseAccountID, "expense-account", 0, "offset account for withdrawals (defaults to the uncategorized expense account)")
	cmd.Flags().Int32Var(&revenueAccountID, "revenue-account", 0, "offset account for deposits (defaults to the uncategorized revenue account)")

	return cmd
}

func newMappingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mappings",
		Short: "List CSV type mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			mappings, err := service.NewTypeMappingService(postgres.NewTypeMappingRepository(pool)).GetMappings()
			if err != nil {
				return err
			}
			for _, m := range mappings {
				fmt.Printf("%-24s -> %-18s %s\n", m.CSVType, m.InternalType, m.Direction)
			}
			return nil
		},
	}
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, nil
}

// newImportService wires the import pipeline without the HTTP layer. The CLI
// skips archiving and event publishing.
func newImportService(pool *pgxpool.Pool) *service.ImportService {
	accountRepo := postgres.NewAccountRepository(pool)
	publisher := &websocket.NoOpPublisher{}
	ledger := service.NewLedgerService(postgres.NewTransactionRepository(pool), accountRepo, publisher)
	accounts := service.NewAccountService(accountRepo, postgres.NewAccountTypeRepository(pool))
	mappings := service.NewTypeMappingService(postgres.NewTypeMappingRepository(pool))
	return service.NewImportService(ledger, accounts, mappings, nil, publisher)
}
