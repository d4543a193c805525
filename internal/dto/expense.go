package dto

import (
	"time"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest defines the data needed to commit an expense.
type CreateExpenseRequest struct {
	Amount                decimal.Decimal      `json:"amount" binding:"required,money"`
	Vendor                string               `json:"vendor" binding:"required"`
	Category              string               `json:"category"`
	Description           string               `json:"description"`
	PaymentMethod         domain.PaymentMethod `json:"paymentMethod" binding:"required,oneof=bank_transfer check cash credit_card"`
	ExpenseDate           string               `json:"expenseDate" binding:"required,datetime=2006-01-02"`
	WorkID                *string              `json:"workID"`
	RelatedFixedExpenseID *string              `json:"relatedFixedExpenseID"`
}

// PayExpenseRequest pays an expense straight from a bank account.
type PayExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,money"`
	AccountID   string          `json:"accountID" binding:"required"`
	PaymentDate string          `json:"paymentDate" binding:"required,datetime=2006-01-02"`
	Description string          `json:"description"`
}

// ReclassifyExpenseRequest turns an unpaid expense into a payment-type
// supplier invoice. Empty fields fall back to the expense's values.
type ReclassifyExpenseRequest struct {
	InvoiceNumber   string               `json:"invoiceNumber"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=bank_transfer check cash credit_card"`
	CreditAccountID *string              `json:"creditAccountID"`
	IssueDate       string               `json:"issueDate" binding:"omitempty,datetime=2006-01-02"`
	Notes           string               `json:"notes"`
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Vendor string `form:"vendor"`
	Status string `form:"status" binding:"omitempty,oneof=unpaid partial paid paid_via_invoice"`
	WorkID string `form:"workID"`
	PageParams
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID             string               `json:"expenseID"`
	Amount                decimal.Decimal      `json:"amount"`
	PaidAmount            decimal.Decimal      `json:"paidAmount"`
	InvoicePaidAmount     decimal.Decimal      `json:"invoicePaidAmount"`
	RemainingAmount       decimal.Decimal      `json:"remainingAmount"`
	PaymentStatus         domain.ExpenseStatus `json:"paymentStatus"`
	Vendor                string               `json:"vendor"`
	Category              string               `json:"category"`
	Description           string               `json:"description"`
	PaymentMethod         domain.PaymentMethod `json:"paymentMethod"`
	ExpenseDate           string               `json:"expenseDate"`
	WorkID                *string              `json:"workID,omitempty"`
	RelatedFixedExpenseID *string              `json:"relatedFixedExpenseID,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
	CreatedBy             string               `json:"createdBy"`
	LastUpdatedAt         time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy         string               `json:"lastUpdatedBy"`
}

// ToExpenseResponse converts a domain.Expense to its response DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:             e.ExpenseID,
		Amount:                e.Amount,
		PaidAmount:            e.PaidAmount,
		InvoicePaidAmount:     e.InvoicePaidAmount,
		RemainingAmount:       e.Remaining(),
		PaymentStatus:         e.PaymentStatus,
		Vendor:                e.Vendor,
		Category:              e.Category,
		Description:           e.Description,
		PaymentMethod:         e.PaymentMethod,
		ExpenseDate:           e.ExpenseDate.Format(domain.DateLayout),
		WorkID:                e.WorkID,
		RelatedFixedExpenseID: e.RelatedFixedExpenseID,
		CreatedAt:             e.CreatedAt,
		CreatedBy:             e.CreatedBy,
		LastUpdatedAt:         e.LastUpdatedAt,
		LastUpdatedBy:         e.LastUpdatedBy,
	}
}

// ToListExpenseResponse converts a slice of domain.Expense.
func ToListExpenseResponse(expenses []domain.Expense) []ExpenseResponse {
	res := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		res[i] = ToExpenseResponse(&expenses[i])
	}
	return res
}

// PayExpenseResponse is the expense after payment plus the withdrawal that funded it.
type PayExpenseResponse struct {
	Expense     ExpenseResponse         `json:"expense"`
	Transaction BankTransactionResponse `json:"transaction"`
}
