package pgsql

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/contractor_ledger/internal/models"
	"github.com/SscSPs/contractor_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// LoadAuditSnapshot reads every table the reconciliation checks need. tx should
// be a read-only snapshot transaction so the sums agree with the rows.
func (r *PgxAuditRepository) LoadAuditSnapshot(ctx context.Context, tx pgx.Tx) (domain.AuditSnapshot, error) {
	var snap domain.AuditSnapshot

	accountRows, err := tx.Query(ctx, `SELECT `+bankAccountColumns+` FROM bank_accounts ORDER BY account_id;`)
	if err != nil {
		return snap, apperrors.NewAppError(500, "failed to load bank accounts", err)
	}
	accounts, err := pgx.CollectRows(accountRows, pgx.RowToStructByName[models.BankAccount])
	if err != nil {
		return snap, apperrors.NewAppError(500, "failed to scan bank accounts", err)
	}
	snap.Accounts = mapping.ToDomainBankAccountSlice(accounts)

	expenseRows, err := tx.Query(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY expense_date, expense_id;`)
	if err != nil {
		return snap, apperrors.NewAppError(500, "failed to load expenses", err)
	}
	expenses, err := pgx.CollectRows(expenseRows, pgx.RowToStructByName[models.Expense])
	if err != nil {
		return snap, apperrors.NewAppError(500, "failed to scan expenses", err)
	}
	snap.Expenses = mapping.ToDomainExpenseSlice(expenses)

	invoiceRows, err := tx.Query(ctx, `SELECT `+invoiceColumns+` FROM supplier_invoices ORDER BY invoice_id;`)
	if err != nil {
		return snap, apperrors.NewAppError(500, "failed to load supplier invoices", err)
	}
	invoices, err := pgx.CollectRows(invoiceRows, pgx.RowToStructByName[models.SupplierInvoice])
	if err != nil {
		return snap, apperrors.NewAppError(500, "failed to scan supplier invoices", err)
	}
	snap.Invoices = mapping.ToDomainSupplierInvoiceSlice(invoices)

	sums := []struct {
		target *map[string]decimal.Decimal
		query  string
	}{
		{&snap.RecomputedBalances, `
			SELECT account_id, SUM(` + signedAmountSQL + `)
			FROM bank_transactions GROUP BY account_id;`},
		{&snap.LinkSumByInvoice, `
			SELECT supplier_invoice_id, SUM(amount_applied)
			FROM invoice_expense_links GROUP BY supplier_invoice_id;`},
		{&snap.LinkSumByExpense, `
			SELECT expense_id, SUM(amount_applied)
			FROM invoice_expense_links GROUP BY expense_id;`},
		{&snap.PaymentSumByInvoice, `
			SELECT invoice_id, SUM(amount)
			FROM invoice_payments GROUP BY invoice_id;`},
		{&snap.DirectSumByExpense, `
			SELECT related_expense_id, SUM(amount)
			FROM bank_transactions
			WHERE related_expense_id IS NOT NULL AND transaction_type = 'withdrawal'
			GROUP BY related_expense_id;`},
	}
	for _, s := range sums {
		m, err := sumByKey(ctx, tx, s.query)
		if err != nil {
			return snap, err
		}
		*s.target = m
	}
	return snap, nil
}

func sumByKey(ctx context.Context, q querier, query string) (map[string]decimal.Decimal, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate audit sums", err)
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var (
			key string
			sum decimal.Decimal
		)
		if err := rows.Scan(&key, &sum); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit sum", err)
		}
		out[key] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read audit sums", err)
	}
	return out, nil
}
