package repositories

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// InvoiceFilter narrows invoice listings. Empty fields match everything.
type InvoiceFilter struct {
	Vendor string
	Status domain.InvoiceStatus
	WorkID string
}

// InvoiceReader defines read operations for supplier invoices and their links.
type InvoiceReader interface {
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.SupplierInvoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter, limit int, offset int) ([]domain.SupplierInvoice, error)
	ListLinksByInvoice(ctx context.Context, invoiceID string) ([]domain.InvoiceExpenseLink, error)
	ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]domain.InvoicePayment, error)
}

// InvoiceWriter defines write operations for supplier invoices.
type InvoiceWriter interface {
	SaveInvoice(ctx context.Context, invoice domain.SupplierInvoice) error
}

// InvoiceTransactionSupport defines invoice operations used inside ledger transactions.
type InvoiceTransactionSupport interface {
	SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.SupplierInvoice) error
	FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.SupplierInvoice, error)

	// UpdateInvoiceStateInTx stores paid amount, status and update audit fields.
	UpdateInvoiceStateInTx(ctx context.Context, tx pgx.Tx, invoice domain.SupplierInvoice) error

	SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.InvoicePayment) error
	FindPaymentsByInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoicePayment, error)

	SaveLinksInTx(ctx context.Context, tx pgx.Tx, links []domain.InvoiceExpenseLink) error
	FindLinksByInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoiceExpenseLink, error)
	FindLinksByExpenseInTx(ctx context.Context, tx pgx.Tx, expenseID string) ([]domain.InvoiceExpenseLink, error)
}

// InvoiceRepositoryFacade combines all supplier invoice repository interfaces.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
	InvoiceTransactionSupport
}
