package dto

import (
	"time"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest defines the data needed to record a supplier invoice.
type CreateInvoiceRequest struct {
	Vendor          string                        `json:"vendor" binding:"required"`
	InvoiceNumber   string                        `json:"invoiceNumber"`
	TotalAmount     decimal.Decimal               `json:"totalAmount" binding:"required,money"`
	TransactionType domain.InvoiceTransactionType `json:"transactionType" binding:"omitempty,oneof=purchase payment"`
	IssueDate       string                        `json:"issueDate" binding:"required,datetime=2006-01-02"`
	DueDate         *string                       `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod   domain.PaymentMethod          `json:"paymentMethod" binding:"required,oneof=bank_transfer check cash credit_card"`
	CreditAccountID *string                       `json:"creditAccountID"`
	WorkID          *string                       `json:"workID"`
	Notes           string                        `json:"notes"`
}

// AllocationLineRequest assigns part of a payment to one expense.
type AllocationLineRequest struct {
	ExpenseID string          `json:"expenseID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,money"`
}

// PayInvoiceRequest pays part or all of a supplier invoice. Without
// Allocations the payment is spread FIFO over the candidate expenses.
// DeferAllocation pays the invoice now and leaves the money to be
// attributed later through invoice links.
type PayInvoiceRequest struct {
	Amount              decimal.Decimal         `json:"amount" binding:"required,money"`
	AccountID           string                  `json:"accountID" binding:"required"`
	PaymentDate         string                  `json:"paymentDate" binding:"required,datetime=2006-01-02"`
	CandidateExpenseIDs []string                `json:"candidateExpenseIDs"`
	Allocations         []AllocationLineRequest `json:"allocations" binding:"omitempty,dive"`
	IdempotencyKey      *string                 `json:"idempotencyKey" binding:"omitempty,max=128"`
	ConfirmDuplicate    bool                    `json:"confirmDuplicate"`
	DeferAllocation     bool                    `json:"deferAllocation"`
	Description         string                  `json:"description"`
}

// LinkInvoiceRequest attributes already paid invoice money to an expense.
type LinkInvoiceRequest struct {
	ExpenseID        string          `json:"expenseID" binding:"required"`
	AmountApplied    decimal.Decimal `json:"amountApplied" binding:"required,money"`
	Notes            string          `json:"notes"`
	ConfirmDuplicate bool            `json:"confirmDuplicate"`
}

// ListInvoicesParams defines query parameters for listing invoices.
type ListInvoicesParams struct {
	Vendor string `form:"vendor"`
	Status string `form:"status" binding:"omitempty,oneof=pending partial paid cancelled"`
	WorkID string `form:"workID"`
	PageParams
}

// InvoiceResponse defines the data returned for a supplier invoice.
type InvoiceResponse struct {
	InvoiceID       string                        `json:"invoiceID"`
	Vendor          string                        `json:"vendor"`
	InvoiceNumber   string                        `json:"invoiceNumber"`
	TotalAmount     decimal.Decimal               `json:"totalAmount"`
	PaidAmount      decimal.Decimal               `json:"paidAmount"`
	RemainingAmount decimal.Decimal               `json:"remainingAmount"`
	PaymentStatus   domain.InvoiceStatus          `json:"paymentStatus"`
	TransactionType domain.InvoiceTransactionType `json:"transactionType"`
	IssueDate       string                        `json:"issueDate"`
	DueDate         *string                       `json:"dueDate,omitempty"`
	PaymentMethod   domain.PaymentMethod          `json:"paymentMethod"`
	CreditAccountID *string                       `json:"creditAccountID,omitempty"`
	WorkID          *string                       `json:"workID,omitempty"`
	Notes           string                        `json:"notes"`
	CreatedAt       time.Time                     `json:"createdAt"`
	CreatedBy       string                        `json:"createdBy"`
	LastUpdatedAt   time.Time                     `json:"lastUpdatedAt"`
	LastUpdatedBy   string                        `json:"lastUpdatedBy"`
}

// ToInvoiceResponse converts a domain.SupplierInvoice to its response DTO.
// PaymentStatus is the effective status as of today.
func ToInvoiceResponse(inv *domain.SupplierInvoice, today time.Time) InvoiceResponse {
	var due *string
	if inv.DueDate != nil {
		s := inv.DueDate.Format(domain.DateLayout)
		due = &s
	}
	return InvoiceResponse{
		InvoiceID:       inv.InvoiceID,
		Vendor:          inv.Vendor,
		InvoiceNumber:   inv.InvoiceNumber,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.Remaining(),
		PaymentStatus:   inv.EffectiveStatus(today),
		TransactionType: inv.TransactionType,
		IssueDate:       inv.IssueDate.Format(domain.DateLayout),
		DueDate:         due,
		PaymentMethod:   inv.PaymentMethod,
		CreditAccountID: inv.CreditAccountID,
		WorkID:          inv.WorkID,
		Notes:           inv.Notes,
		CreatedAt:       inv.CreatedAt,
		CreatedBy:       inv.CreatedBy,
		LastUpdatedAt:   inv.LastUpdatedAt,
		LastUpdatedBy:   inv.LastUpdatedBy,
	}
}

// ToListInvoiceResponse converts a slice of domain.SupplierInvoice.
func ToListInvoiceResponse(invoices []domain.SupplierInvoice, today time.Time) []InvoiceResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		res[i] = ToInvoiceResponse(&invoices[i], today)
	}
	return res
}

// PayInvoiceResult is what a payInvoice call produced. Replayed is true
// when an earlier call with the same idempotency key is being returned.
type PayInvoiceResult struct {
	Invoice     domain.SupplierInvoice      `json:"invoice"`
	Payment     domain.InvoicePayment       `json:"payment"`
	Transaction domain.BankTransaction      `json:"transaction"`
	Plan        domain.AllocationPlan       `json:"plan"`
	Links       []domain.InvoiceExpenseLink `json:"links"`
	Replayed    bool                        `json:"replayed"`
}

// PayInvoiceResponse is the HTTP rendering of PayInvoiceResult.
type PayInvoiceResponse struct {
	Invoice     InvoiceResponse             `json:"invoice"`
	Payment     domain.InvoicePayment       `json:"payment"`
	Transaction BankTransactionResponse     `json:"transaction"`
	Plan        domain.AllocationPlan       `json:"plan"`
	Links       []domain.InvoiceExpenseLink `json:"links"`
	Replayed    bool                        `json:"replayed"`
}

// ToPayInvoiceResponse converts a PayInvoiceResult to its response DTO.
func ToPayInvoiceResponse(r *PayInvoiceResult, today time.Time) PayInvoiceResponse {
	links := r.Links
	if links == nil {
		links = []domain.InvoiceExpenseLink{}
	}
	return PayInvoiceResponse{
		Invoice:     ToInvoiceResponse(&r.Invoice, today),
		Payment:     r.Payment,
		Transaction: ToBankTransactionResponse(&r.Transaction),
		Plan:        r.Plan,
		Links:       links,
		Replayed:    r.Replayed,
	}
}

// LinkInvoiceResult is the link created by a manual attribution and the
// expense it settled.
type LinkInvoiceResult struct {
	Link    domain.InvoiceExpenseLink `json:"link"`
	Expense ExpenseResponse           `json:"expense"`
}

// ReclassifyExpenseResult is the invoice created from a misclassified expense.
type ReclassifyExpenseResult struct {
	DeletedExpenseID string          `json:"deletedExpenseID"`
	Invoice          InvoiceResponse `json:"invoice"`
}
