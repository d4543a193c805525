package repositories

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// BankTransactionReader defines read operations over the append-only log.
type BankTransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error)

	// ListTransactionsByAccount returns one page of an account's log, newest
	// first, plus the token for the next page (nil on the last page).
	ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.BankTransaction, *string, error)
}

// BankTransactionAppender appends entries. There is no update or delete.
type BankTransactionAppender interface {
	// AppendTransactionInTx inserts txn and sets its Seq.
	AppendTransactionInTx(ctx context.Context, tx pgx.Tx, txn *domain.BankTransaction) error
}

// BankTransactionRepositoryFacade combines all bank transaction repository interfaces.
type BankTransactionRepositoryFacade interface {
	BankTransactionReader
	BankTransactionAppender
}
