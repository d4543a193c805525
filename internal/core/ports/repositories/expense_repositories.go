package repositories

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ExpenseFilter narrows expense listings. Empty fields match everything.
type ExpenseFilter struct {
	Vendor string
	Status domain.ExpenseStatus
	WorkID string
}

// ExpenseReader defines read operations for expenses.
type ExpenseReader interface {
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter, limit int, offset int) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expenses.
type ExpenseWriter interface {
	SaveExpense(ctx context.Context, expense domain.Expense) error
}

// ExpenseTransactionSupport defines expense operations used inside ledger transactions.
type ExpenseTransactionSupport interface {
	// FindExpensesByIDsForUpdate locks the expenses in ascending ID order.
	// Missing IDs fail with ErrExpenseNotFound.
	FindExpensesByIDsForUpdate(ctx context.Context, tx pgx.Tx, expenseIDs []string) (map[string]domain.Expense, error)

	// FindSettlementCandidatesForUpdate locks and returns the unsettled
	// expenses of vendor paid with method, oldest first.
	FindSettlementCandidatesForUpdate(ctx context.Context, tx pgx.Tx, vendor string, method domain.PaymentMethod) ([]domain.Expense, error)

	// UpdateExpensePaymentInTx stores the paid amounts and status of a locked expense.
	UpdateExpensePaymentInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error

	DeleteExpenseInTx(ctx context.Context, tx pgx.Tx, expenseID string) error
}

// ExpenseRepositoryFacade combines all expense repository interfaces.
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
	ExpenseTransactionSupport
}
