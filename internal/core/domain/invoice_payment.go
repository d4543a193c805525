package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoicePayment records one payment made against a supplier invoice.
type InvoicePayment struct {
	PaymentID      string             `json:"paymentID"`
	InvoiceID      string             `json:"invoiceID"`
	AccountID      string             `json:"accountID"`
	Amount         decimal.Decimal    `json:"amount"`
	PaymentDate    time.Time          `json:"paymentDate"`
	IdempotencyKey *string            `json:"idempotencyKey,omitempty"`
	TransactionID  string             `json:"transactionID"`
	Allocation     AllocationStrategy `json:"allocation"`
	CreatedAt      time.Time          `json:"createdAt"`
	CreatedBy      string             `json:"createdBy"`
}

// SameIntent reports whether p looks like a retry of a payment with the
// given amount, date and account.
func (p InvoicePayment) SameIntent(amount decimal.Decimal, date time.Time, accountID string) bool {
	return p.Amount.Equal(amount) && CalendarDate(p.PaymentDate).Equal(CalendarDate(date)) && p.AccountID == accountID
}
