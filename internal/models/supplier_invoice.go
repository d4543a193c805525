package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierInvoice is a row of supplier_invoices.
type SupplierInvoice struct {
	InvoiceID       string          `db:"invoice_id"`
	Vendor          string          `db:"vendor"`
	InvoiceNumber   string          `db:"invoice_number"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	PaidAmount      decimal.Decimal `db:"paid_amount"`
	PaymentStatus   string          `db:"payment_status"`
	TransactionType string          `db:"transaction_type"`
	IssueDate       time.Time       `db:"issue_date"`
	DueDate         *time.Time      `db:"due_date"`
	PaymentMethod   string          `db:"payment_method"`
	CreditAccountID *string         `db:"credit_account_id"`
	WorkID          *string         `db:"work_id"`
	Notes           string          `db:"notes"`
	AuditFields
}

// InvoicePayment is a row of invoice_payments.
type InvoicePayment struct {
	PaymentID      string          `db:"payment_id"`
	InvoiceID      string          `db:"invoice_id"`
	AccountID      string          `db:"account_id"`
	Amount         decimal.Decimal `db:"amount"`
	PaymentDate    time.Time       `db:"payment_date"`
	IdempotencyKey *string         `db:"idempotency_key"`
	TransactionID  string          `db:"transaction_id"`
	Allocation     string          `db:"allocation"`
	CreatedAt      time.Time       `db:"created_at"`
	CreatedBy      string          `db:"created_by"`
}

// InvoiceExpenseLink is a row of invoice_expense_links.
type InvoiceExpenseLink struct {
	LinkID            string          `db:"link_id"`
	SupplierInvoiceID string          `db:"supplier_invoice_id"`
	ExpenseID         string          `db:"expense_id"`
	InvoicePaymentID  *string         `db:"invoice_payment_id"`
	AmountApplied     decimal.Decimal `db:"amount_applied"`
	CreatedByStaffID  string          `db:"created_by_staff_id"`
	Notes             string          `db:"notes"`
	CreatedAt         time.Time       `db:"created_at"`
}
