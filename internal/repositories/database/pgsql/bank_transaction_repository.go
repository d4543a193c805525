package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/contractor_ledger/internal/models"
	"github.com/SscSPs/contractor_ledger/internal/utils/mapping"
	"github.com/SscSPs/contractor_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bankTransactionColumns = `transaction_id, account_id, seq, transaction_type, amount, transaction_date,
	description, category, balance_after, related_expense_id, related_income_id,
	related_invoice_payment_id, related_transfer_id, created_at, created_by`

type PgxBankTransactionRepository struct {
	BaseRepository
}

func newPgxBankTransactionRepository(pool *pgxpool.Pool) *PgxBankTransactionRepository {
	return &PgxBankTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankTransactionRepositoryFacade = (*PgxBankTransactionRepository)(nil)

// AppendTransactionInTx inserts txn and copies the generated log sequence back into it.
func (r *PgxBankTransactionRepository) AppendTransactionInTx(ctx context.Context, tx pgx.Tx, txn *domain.BankTransaction) error {
	m := mapping.ToModelBankTransaction(*txn)
	query := `
		INSERT INTO bank_transactions (
			transaction_id, account_id, transaction_type, amount, transaction_date,
			description, category, balance_after, related_expense_id, related_income_id,
			related_invoice_payment_id, related_transfer_id, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq;
	`
	err := tx.QueryRow(ctx, query,
		m.TransactionID, m.AccountID, m.TransactionType, m.Amount, m.TransactionDate,
		m.Description, m.Category, m.BalanceAfter, m.RelatedExpenseID, m.RelatedIncomeID,
		m.RelatedInvoicePaymentID, m.RelatedTransferID, m.CreatedAt, m.CreatedBy,
	).Scan(&txn.Seq)
	if err != nil {
		return mapWriteError(err, "append bank transaction "+m.TransactionID)
	}
	return nil
}

func (r *PgxBankTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error) {
	query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions WHERE transaction_id = $1;`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bank transaction", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.BankTransaction])
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrNotFound, "bank transaction "+transactionID, "scan bank transaction")
	}
	txn := mapping.ToDomainBankTransaction(m)
	return &txn, nil
}

// ListTransactionsByAccount pages through an account's log newest first using
// keyset pagination on (transaction_date, seq).
func (r *PgxBankTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.BankTransaction, *string, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if nextToken != nil && *nextToken != "" {
		lastDate, lastSeq, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, decodeErr)
		}
		query := `
			SELECT ` + bankTransactionColumns + `
			FROM bank_transactions
			WHERE account_id = $1 AND (transaction_date, seq) < ($2, $3)
			ORDER BY transaction_date DESC, seq DESC
			LIMIT $4;
		`
		rows, err = r.Pool.Query(ctx, query, accountID, lastDate, lastSeq, limit+1)
	} else {
		query := `
			SELECT ` + bankTransactionColumns + `
			FROM bank_transactions
			WHERE account_id = $1
			ORDER BY transaction_date DESC, seq DESC
			LIMIT $2;
		`
		rows, err = r.Pool.Query(ctx, query, accountID, limit+1)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list transactions for account "+accountID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BankTransaction])
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan bank transactions", err)
	}

	var next *string
	if limit > 0 && len(ms) > limit {
		ms = ms[:limit]
		last := ms[len(ms)-1]
		token := pagination.EncodeToken(last.TransactionDate, last.Seq)
		next = &token
	}
	return mapping.ToDomainBankTransactionSlice(ms), next, nil
}
