package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a row of expenses.
type Expense struct {
	ExpenseID             string          `db:"expense_id"`
	Amount                decimal.Decimal `db:"amount"`
	PaidAmount            decimal.Decimal `db:"paid_amount"`
	InvoicePaidAmount     decimal.Decimal `db:"invoice_paid_amount"`
	PaymentStatus         string          `db:"payment_status"`
	Vendor                string          `db:"vendor"`
	Category              string          `db:"category"`
	Description           string          `db:"description"`
	PaymentMethod         string          `db:"payment_method"`
	ExpenseDate           time.Time       `db:"expense_date"`
	WorkID                *string         `db:"work_id"`
	RelatedFixedExpenseID *string         `db:"related_fixed_expense_id"`
	AuditFields
}
