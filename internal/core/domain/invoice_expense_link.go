package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceExpenseLink attributes part of an invoice payment to an expense.
type InvoiceExpenseLink struct {
	LinkID            string          `json:"linkID"`
	SupplierInvoiceID string          `json:"supplierInvoiceID"`
	ExpenseID         string          `json:"expenseID"`
	InvoicePaymentID  *string         `json:"invoicePaymentID,omitempty"`
	AmountApplied     decimal.Decimal `json:"amountApplied"`
	CreatedByStaffID  string          `json:"createdByStaffID"`
	Notes             string          `json:"notes"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// SumApplied totals AmountApplied over links.
func SumApplied(links []InvoiceExpenseLink) decimal.Decimal {
	total := decimal.Zero
	for _, l := range links {
		total = total.Add(l.AmountApplied)
	}
	return total
}
