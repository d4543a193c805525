package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, txMaxRetries int, statementTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       NewTxManager(dbPool, txMaxRetries, statementTimeout),
		AccountRepo:     newPgxBankAccountRepository(dbPool),
		TransactionRepo: newPgxBankTransactionRepository(dbPool),
		ExpenseRepo:     newPgxExpenseRepository(dbPool),
		InvoiceRepo:     newPgxInvoiceRepository(dbPool),
		AuditRepo:       newPgxAuditRepository(dbPool),
	}
}
