package services

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/dto"
)

// InvoiceReaderSvc defines read operations for supplier invoices.
type InvoiceReaderSvc interface {
	GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.SupplierInvoice, error)
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.SupplierInvoice, error)
	ListInvoiceLinks(ctx context.Context, invoiceID string) ([]domain.InvoiceExpenseLink, error)
	ListInvoicePayments(ctx context.Context, invoiceID string) ([]domain.InvoicePayment, error)
}

// InvoiceWriterSvc defines write operations for supplier invoices.
type InvoiceWriterSvc interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.SupplierInvoice, error)

	// PayInvoice records a payment, allocates it over expenses and books the withdrawal.
	PayInvoice(ctx context.Context, invoiceID string, req dto.PayInvoiceRequest, userID string) (*dto.PayInvoiceResult, error)

	// LinkInvoiceToExpense attributes already paid, unallocated invoice money to an expense.
	LinkInvoiceToExpense(ctx context.Context, invoiceID string, req dto.LinkInvoiceRequest, userID string) (*domain.InvoiceExpenseLink, *domain.Expense, error)

	CancelInvoice(ctx context.Context, invoiceID string, userID string) (*domain.SupplierInvoice, error)

	// ReclassifyExpenseAsInvoicePayment replaces an unpaid expense with a payment-type invoice.
	ReclassifyExpenseAsInvoicePayment(ctx context.Context, expenseID string, req dto.ReclassifyExpenseRequest, userID string) (*domain.SupplierInvoice, error)
}

// InvoiceSvcFacade combines all supplier invoice service interfaces.
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
}
