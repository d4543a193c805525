package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExpenseStatus is the settlement state of an expense. It is never set
// directly; DeriveExpenseStatus computes it from the paid amounts.
type ExpenseStatus string

const (
	ExpenseUnpaid         ExpenseStatus = "unpaid"
	ExpensePartial        ExpenseStatus = "partial"
	ExpensePaid           ExpenseStatus = "paid"
	ExpensePaidViaInvoice ExpenseStatus = "paid_via_invoice"
)

// Valid reports whether s is a known expense status.
func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpenseUnpaid, ExpensePartial, ExpensePaid, ExpensePaidViaInvoice:
		return true
	}
	return false
}

// IsSettled reports whether no money remains owed.
func (s ExpenseStatus) IsSettled() bool {
	return s == ExpensePaid || s == ExpensePaidViaInvoice
}

// PaymentSource tells where an expense payment came from.
type PaymentSource string

const (
	SourceDirect  PaymentSource = "direct"
	SourceInvoice PaymentSource = "invoice"
)

// PaymentMethod is how a supplier is paid.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
	MethodCash         PaymentMethod = "cash"
	MethodCreditCard   PaymentMethod = "credit_card"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodCheck, MethodCash, MethodCreditCard:
		return true
	}
	return false
}

// Expense is money committed to a vendor.
type Expense struct {
	ExpenseID             string          `json:"expenseID"`
	Amount                decimal.Decimal `json:"amount"`
	PaidAmount            decimal.Decimal `json:"paidAmount"`
	InvoicePaidAmount     decimal.Decimal `json:"invoicePaidAmount"`
	PaymentStatus         ExpenseStatus   `json:"paymentStatus"`
	Vendor                string          `json:"vendor"`
	Category              string          `json:"category"`
	Description           string          `json:"description"`
	PaymentMethod         PaymentMethod   `json:"paymentMethod"`
	ExpenseDate           time.Time       `json:"expenseDate"`
	WorkID                *string         `json:"workID,omitempty"`
	RelatedFixedExpenseID *string         `json:"relatedFixedExpenseID,omitempty"`
	AuditFields
}

// DeriveExpenseStatus maps paid amounts to a status. invoicePaid is the part
// of paid that was settled through invoice links.
func DeriveExpenseStatus(amount, paid, invoicePaid decimal.Decimal) ExpenseStatus {
	switch {
	case !paid.IsPositive():
		return ExpenseUnpaid
	case paid.LessThan(amount):
		return ExpensePartial
	case invoicePaid.Equal(amount):
		return ExpensePaidViaInvoice
	default:
		return ExpensePaid
	}
}

// Remaining is the amount still owed.
func (e Expense) Remaining() decimal.Decimal {
	r := e.Amount.Sub(e.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ApplyPayment adds amount to PaidAmount and re-derives the status.
// PaidAmount never exceeds Amount and never decreases.
func (e *Expense) ApplyPayment(amount decimal.Decimal, source PaymentSource) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if source != SourceDirect && source != SourceInvoice {
		return fmt.Errorf("%w: unknown payment source %q", apperrors.ErrValidation, source)
	}
	if e.PaidAmount.Add(amount).GreaterThan(e.Amount) {
		return fmt.Errorf("%w: expense %s has %s remaining, payment of %s requested",
			apperrors.ErrOverPayment, e.ExpenseID, FormatAmount(e.Remaining()), FormatAmount(amount))
	}
	e.PaidAmount = e.PaidAmount.Add(amount)
	if source == SourceInvoice {
		e.InvoicePaidAmount = e.InvoicePaidAmount.Add(amount)
	}
	e.PaymentStatus = DeriveExpenseStatus(e.Amount, e.PaidAmount, e.InvoicePaidAmount)
	return nil
}

// EnsureDeletable returns ErrExpenseHasPayments once any money was applied.
func (e Expense) EnsureDeletable() error {
	if !e.PaidAmount.IsZero() {
		return fmt.Errorf("%w: expense %s has %s paid", apperrors.ErrExpenseHasPayments, e.ExpenseID, FormatAmount(e.PaidAmount))
	}
	return nil
}

// IsSettlementCandidate reports whether an invoice of the given vendor and
// method may allocate a payment to this expense.
func (e Expense) IsSettlementCandidate(vendor string, method PaymentMethod) bool {
	if e.PaymentStatus.IsSettled() || !e.Remaining().IsPositive() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(e.Vendor), strings.TrimSpace(vendor)) && e.PaymentMethod == method
}

// Validate checks a new expense before it is stored.
func (e Expense) Validate() error {
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(e.Vendor) == "" {
		return fmt.Errorf("%w: vendor is required", apperrors.ErrValidation)
	}
	if !e.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, e.PaymentMethod)
	}
	if e.ExpenseDate.IsZero() {
		return fmt.Errorf("%w: expense date is required", apperrors.ErrValidation)
	}
	return nil
}
