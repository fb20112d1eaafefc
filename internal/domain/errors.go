package domain

import "errors"

// Domain errors
var (
	// Ledger validation failures
	ErrImbalancedTransaction = errors.New("transaction debits and credits are not balanced")
	ErrUnknownAccount        = errors.New("transaction line references an unknown account")
	ErrDegenerateLine        = errors.New("transaction line must have exactly one positive side")
	ErrInsufficientLines     = errors.New("transaction requires at least two lines")

	// Import failures
	ErrNoHeaderFound = errors.New("no recognizable header row found in file")

	// Lookup failures
	ErrBusinessNotFound    = errors.New("business not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountTypeNotFound = errors.New("account type not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTypeMappingNotFound = errors.New("type mapping not found")

	// Chart-of-accounts constraint violations
	ErrDuplicateAccountCode = errors.New("account code already exists for business")
	ErrDuplicateTypeMapping = errors.New("type mapping already exists for csv type")
	ErrAccountCycle         = errors.New("account parent assignment would create a cycle")

	// Input validation
	ErrNameRequired     = errors.New("name is required")
	ErrCodeRequired     = errors.New("code is required")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidType      = errors.New("invalid transaction type")
)
