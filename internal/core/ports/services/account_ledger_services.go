package services

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for bank accounts.
type AccountReaderSvc interface {
	GetAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error)

	// GetBalance returns the cached balance.
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// RecomputeBalance folds the account's log from zero.
	RecomputeBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// AccountWriterSvc defines write operations for bank accounts.
type AccountWriterSvc interface {
	CreateAccount(ctx context.Context, req dto.CreateBankAccountRequest, userID string) (*domain.BankAccount, error)

	// RecordTransaction appends a deposit or withdrawal and updates the cached balance.
	RecordTransaction(ctx context.Context, accountID string, req dto.RecordTransactionRequest, userID string) (*domain.BankTransaction, error)

	// Transfer moves money between two accounts atomically.
	Transfer(ctx context.Context, req dto.TransferRequest, userID string) (out *domain.BankTransaction, in *domain.BankTransaction, err error)
}

// AccountLedgerWriter appends to the ledger inside a transaction owned by the
// caller. Other services use it to book the cash side of their operations.
type AccountLedgerWriter interface {
	RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankTransaction, userID string) (*domain.BankTransaction, error)
}

// AccountLedgerSvcFacade combines all account ledger service interfaces.
type AccountLedgerSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountLedgerWriter
}
