package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/contractor_ledger/internal/models"
	"github.com/SscSPs/contractor_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	invoiceColumns = `invoice_id, vendor, invoice_number, total_amount, paid_amount, payment_status,
	transaction_type, issue_date, due_date, payment_method, credit_account_id, work_id, notes,
	created_at, created_by, last_updated_at, last_updated_by`

	invoicePaymentColumns = `payment_id, invoice_id, account_id, amount, payment_date, idempotency_key,
	transaction_id, allocation, created_at, created_by`

	invoiceLinkColumns = `link_id, supplier_invoice_id, expense_id, invoice_payment_id, amount_applied,
	created_by_staff_id, notes, created_at`
)

type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) *PgxInvoiceRepository {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.SupplierInvoice) error {
	return r.insertInvoice(ctx, r.Pool, invoice)
}

func (r *PgxInvoiceRepository) SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.SupplierInvoice) error {
	return r.insertInvoice(ctx, tx, invoice)
}

func (r *PgxInvoiceRepository) insertInvoice(ctx context.Context, q querier, invoice domain.SupplierInvoice) error {
	m := mapping.ToModelSupplierInvoice(invoice)
	query := `
		INSERT INTO supplier_invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := q.Exec(ctx, query,
		m.InvoiceID, m.Vendor, m.InvoiceNumber, m.TotalAmount, m.PaidAmount, m.PaymentStatus,
		m.TransactionType, m.IssueDate, m.DueDate, m.PaymentMethod, m.CreditAccountID, m.WorkID, m.Notes,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "insert supplier invoice "+m.InvoiceID)
	}
	return nil
}

func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.SupplierInvoice, error) {
	return r.findInvoice(ctx, r.Pool, `SELECT `+invoiceColumns+` FROM supplier_invoices WHERE invoice_id = $1;`, invoiceID)
}

func (r *PgxInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.SupplierInvoice, error) {
	return r.findInvoice(ctx, tx, `SELECT `+invoiceColumns+` FROM supplier_invoices WHERE invoice_id = $1 FOR UPDATE;`, invoiceID)
}

func (r *PgxInvoiceRepository) findInvoice(ctx context.Context, q querier, query string, invoiceID string) (*domain.SupplierInvoice, error) {
	rows, err := q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query supplier invoice", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.SupplierInvoice])
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrInvoiceNotFound, invoiceID, "scan supplier invoice")
	}
	invoice := mapping.ToDomainSupplierInvoice(m)
	return &invoice, nil
}

// ListInvoices returns invoices newest issue date first.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, filter portsrepo.InvoiceFilter, limit int, offset int) ([]domain.SupplierInvoice, error) {
	var (
		conds []string
		args  []any
	)
	if v := strings.TrimSpace(filter.Vendor); v != "" {
		args = append(args, strings.ToLower(v))
		conds = append(conds, fmt.Sprintf("lower(btrim(vendor)) = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if filter.WorkID != "" {
		args = append(args, filter.WorkID)
		conds = append(conds, fmt.Sprintf("work_id = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + invoiceColumns + " FROM supplier_invoices")
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&sb, " ORDER BY issue_date DESC, invoice_id DESC LIMIT $%d OFFSET $%d;", len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list supplier invoices", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.SupplierInvoice])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan supplier invoices", err)
	}
	return mapping.ToDomainSupplierInvoiceSlice(ms), nil
}

func (r *PgxInvoiceRepository) UpdateInvoiceStateInTx(ctx context.Context, tx pgx.Tx, invoice domain.SupplierInvoice) error {
	m := mapping.ToModelSupplierInvoice(invoice)
	query := `
		UPDATE supplier_invoices
		SET paid_amount = $2, payment_status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE invoice_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, m.InvoiceID, m.PaidAmount, m.PaymentStatus, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "update supplier invoice "+m.InvoiceID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrInvoiceNotFound, m.InvoiceID)
	}
	return nil
}

func (r *PgxInvoiceRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.InvoicePayment) error {
	m := mapping.ToModelInvoicePayment(payment)
	query := `
		INSERT INTO invoice_payments (` + invoicePaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		m.PaymentID, m.InvoiceID, m.AccountID, m.Amount, m.PaymentDate, m.IdempotencyKey,
		m.TransactionID, m.Allocation, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return mapWriteError(err, "insert invoice payment "+m.PaymentID)
	}
	return nil
}

func (r *PgxInvoiceRepository) ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]domain.InvoicePayment, error) {
	return r.collectPayments(ctx, r.Pool, invoiceID)
}

func (r *PgxInvoiceRepository) FindPaymentsByInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoicePayment, error) {
	return r.collectPayments(ctx, tx, invoiceID)
}

func (r *PgxInvoiceRepository) collectPayments(ctx context.Context, q querier, invoiceID string) ([]domain.InvoicePayment, error) {
	query := `
		SELECT ` + invoicePaymentColumns + `
		FROM invoice_payments
		WHERE invoice_id = $1
		ORDER BY payment_date, created_at, payment_id;
	`
	rows, err := q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments of invoice "+invoiceID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.InvoicePayment])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan invoice payments", err)
	}
	return mapping.ToDomainInvoicePaymentSlice(ms), nil
}

// SaveLinksInTx inserts all links in one batch round trip.
func (r *PgxInvoiceRepository) SaveLinksInTx(ctx context.Context, tx pgx.Tx, links []domain.InvoiceExpenseLink) error {
	if len(links) == 0 {
		return nil
	}
	query := `
		INSERT INTO invoice_expense_links (` + invoiceLinkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, link := range links {
		m := mapping.ToModelInvoiceExpenseLink(link)
		batch.Queue(query,
			m.LinkID, m.SupplierInvoiceID, m.ExpenseID, m.InvoicePaymentID, m.AmountApplied,
			m.CreatedByStaffID, m.Notes, m.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, link := range links {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapWriteError(err, "insert invoice link "+link.LinkID)
		}
	}
	if err := br.Close(); err != nil {
		return mapWriteError(err, "close invoice link batch")
	}
	return nil
}

func (r *PgxInvoiceRepository) ListLinksByInvoice(ctx context.Context, invoiceID string) ([]domain.InvoiceExpenseLink, error) {
	return r.collectLinks(ctx, r.Pool, "supplier_invoice_id", invoiceID)
}

func (r *PgxInvoiceRepository) FindLinksByInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoiceExpenseLink, error) {
	return r.collectLinks(ctx, tx, "supplier_invoice_id", invoiceID)
}

func (r *PgxInvoiceRepository) FindLinksByExpenseInTx(ctx context.Context, tx pgx.Tx, expenseID string) ([]domain.InvoiceExpenseLink, error) {
	return r.collectLinks(ctx, tx, "expense_id", expenseID)
}

// collectLinks filters on column, which is always one of the two fixed names above.
func (r *PgxInvoiceRepository) collectLinks(ctx context.Context, q querier, column string, id string) ([]domain.InvoiceExpenseLink, error) {
	query := `
		SELECT ` + invoiceLinkColumns + `
		FROM invoice_expense_links
		WHERE ` + column + ` = $1
		ORDER BY created_at, link_id;
	`
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invoice links", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.InvoiceExpenseLink])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan invoice links", err)
	}
	return mapping.ToDomainInvoiceExpenseLinkSlice(ms), nil
}
