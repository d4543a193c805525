package services

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/dto"
)

// ExpenseReaderSvc defines read operations for expenses.
type ExpenseReaderSvc interface {
	GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error)
}

// ExpenseWriterSvc defines write operations for expenses.
type ExpenseWriterSvc interface {
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error)

	// PayExpenseDirectly settles part of an expense from a bank account.
	PayExpenseDirectly(ctx context.Context, expenseID string, req dto.PayExpenseRequest, userID string) (*domain.Expense, *domain.BankTransaction, error)

	// DeleteExpense removes an expense that has no payments.
	DeleteExpense(ctx context.Context, expenseID string, userID string) error
}

// ExpenseSvcFacade combines all expense service interfaces.
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
