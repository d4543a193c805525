package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BankAccountReader defines read operations for bank accounts.
type BankAccountReader interface {
	// FindAccountByID retrieves an account by its ID.
	FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error)

	// ListAccounts retrieves a page of accounts ordered by name.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error)

	// ComputeAccountBalance folds the account's transaction log from zero.
	ComputeAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// BankAccountWriter defines write operations for bank accounts.
type BankAccountWriter interface {
	SaveAccount(ctx context.Context, account domain.BankAccount) error
}

// BankAccountTransactionSupport defines account operations used inside ledger transactions.
type BankAccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate locks the accounts in ascending ID order and
	// returns them keyed by ID. Missing IDs fail with ErrAccountNotFound.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.BankAccount, error)

	// UpdateAccountBalanceInTx stores a new cached balance for a locked account.
	UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, userID string, now time.Time) error
}

// BankAccountRepositoryFacade combines all bank account repository interfaces.
type BankAccountRepositoryFacade interface {
	BankAccountReader
	BankAccountWriter
	BankAccountTransactionSupport
}
