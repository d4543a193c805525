package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the stored state of a supplier invoice. InvoiceOverdue is
// never stored; EffectiveStatus overlays it.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePartial   InvoiceStatus = "partial"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceTransactionType separates real vendor bills from records created
// when a card payment was first booked as an expense.
type InvoiceTransactionType string

const (
	InvoiceTypePurchase InvoiceTransactionType = "purchase"
	InvoiceTypePayment  InvoiceTransactionType = "payment"
)

// SupplierInvoice is a vendor bill that may settle over several payments.
type SupplierInvoice struct {
	InvoiceID       string                 `json:"invoiceID"`
	Vendor          string                 `json:"vendor"`
	InvoiceNumber   string                 `json:"invoiceNumber"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
	PaidAmount      decimal.Decimal        `json:"paidAmount"`
	PaymentStatus   InvoiceStatus          `json:"paymentStatus"`
	TransactionType InvoiceTransactionType `json:"transactionType"`
	IssueDate       time.Time              `json:"issueDate"`
	DueDate         *time.Time             `json:"dueDate,omitempty"`
	PaymentMethod   PaymentMethod          `json:"paymentMethod"`
	CreditAccountID *string                `json:"creditAccountID,omitempty"`
	WorkID          *string                `json:"workID,omitempty"`
	Notes           string                 `json:"notes"`
	AuditFields
}

// DeriveInvoiceStatus maps a paid amount to the stored status.
func DeriveInvoiceStatus(total, paid decimal.Decimal) InvoiceStatus {
	switch {
	case !paid.IsPositive():
		return InvoicePending
	case paid.LessThan(total):
		return InvoicePartial
	default:
		return InvoicePaid
	}
}

// Remaining is the amount still owed on the invoice.
func (i SupplierInvoice) Remaining() decimal.Decimal {
	r := i.TotalAmount.Sub(i.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IsRevolvingCredit reports whether the invoice is settled through a credit card.
func (i SupplierInvoice) IsRevolvingCredit() bool {
	return i.PaymentMethod == MethodCreditCard
}

// PaymentCategory is the bank transaction category used when paying this invoice.
func (i SupplierInvoice) PaymentCategory() TransactionCategory {
	if i.IsRevolvingCredit() {
		return CategoryCreditCardPayment
	}
	return CategoryExpense
}

// EffectiveStatus returns the stored status with overdue overlaid for
// unsettled invoices whose due date is before today.
func (i SupplierInvoice) EffectiveStatus(today time.Time) InvoiceStatus {
	if i.PaymentStatus != InvoicePending && i.PaymentStatus != InvoicePartial {
		return i.PaymentStatus
	}
	if i.DueDate != nil && CalendarDate(*i.DueDate).Before(CalendarDate(today)) {
		return InvoiceOverdue
	}
	return i.PaymentStatus
}

// ApplyPayment adds amount to PaidAmount and re-derives the stored status.
func (i *SupplierInvoice) ApplyPayment(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if i.PaymentStatus == InvoiceCancelled {
		return fmt.Errorf("%w: invoice %s", apperrors.ErrInvoiceCancelled, i.InvoiceID)
	}
	if i.PaidAmount.Add(amount).GreaterThan(i.TotalAmount) {
		return fmt.Errorf("%w: invoice %s has %s remaining, payment of %s requested",
			apperrors.ErrOverPayment, i.InvoiceID, FormatAmount(i.Remaining()), FormatAmount(amount))
	}
	i.PaidAmount = i.PaidAmount.Add(amount)
	i.PaymentStatus = DeriveInvoiceStatus(i.TotalAmount, i.PaidAmount)
	return nil
}

// Cancel moves the invoice to the terminal cancelled state.
func (i *SupplierInvoice) Cancel() error {
	switch i.PaymentStatus {
	case InvoicePaid:
		return fmt.Errorf("%w: invoice %s is already paid", apperrors.ErrInvalidTransition, i.InvoiceID)
	case InvoiceCancelled:
		return fmt.Errorf("%w: invoice %s", apperrors.ErrInvoiceCancelled, i.InvoiceID)
	}
	i.PaymentStatus = InvoiceCancelled
	return nil
}

// Validate checks a new invoice before it is stored.
func (i SupplierInvoice) Validate() error {
	if err := ValidateAmount(i.TotalAmount); err != nil {
		return err
	}
	if strings.TrimSpace(i.Vendor) == "" {
		return fmt.Errorf("%w: vendor is required", apperrors.ErrValidation)
	}
	if !i.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, i.PaymentMethod)
	}
	if i.TransactionType != InvoiceTypePurchase && i.TransactionType != InvoiceTypePayment {
		return fmt.Errorf("%w: unknown invoice transaction type %q", apperrors.ErrValidation, i.TransactionType)
	}
	if i.IssueDate.IsZero() {
		return fmt.Errorf("%w: issue date is required", apperrors.ErrValidation)
	}
	if i.DueDate != nil && i.DueDate.Before(i.IssueDate) {
		return fmt.Errorf("%w: due date is before issue date", apperrors.ErrValidation)
	}
	return nil
}
