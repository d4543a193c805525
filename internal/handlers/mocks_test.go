package handlers_test

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ledger service ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockLedgerService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) RecomputeBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) CreateAccount(ctx context.Context, req dto.CreateBankAccountRequest, userID string) (*domain.BankAccount, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockLedgerService) RecordTransaction(ctx context.Context, accountID string, req dto.RecordTransactionRequest, userID string) (*domain.BankTransaction, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

func (m *MockLedgerService) Transfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.BankTransaction, *domain.BankTransaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.BankTransaction), args.Get(1).(*domain.BankTransaction), args.Error(2)
}

func (m *MockLedgerService) RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankTransaction, userID string) (*domain.BankTransaction, error) {
	args := m.Called(ctx, tx, txn, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

var _ portssvc.AccountLedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock expense service ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) PayExpenseDirectly(ctx context.Context, expenseID string, req dto.PayExpenseRequest, userID string) (*domain.Expense, *domain.BankTransaction, error) {
	args := m.Called(ctx, expenseID, req, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Expense), args.Get(1).(*domain.BankTransaction), args.Error(2)
}

func (m *MockExpenseService) DeleteExpense(ctx context.Context, expenseID string, userID string) error {
	args := m.Called(ctx, expenseID, userID)
	return args.Error(0)
}

var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Mock invoice service ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.SupplierInvoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupplierInvoice), args.Error(1)
}

func (m *MockInvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.SupplierInvoice, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SupplierInvoice), args.Error(1)
}

func (m *MockInvoiceService) ListInvoiceLinks(ctx context.Context, invoiceID string) ([]domain.InvoiceExpenseLink, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceExpenseLink), args.Error(1)
}

func (m *MockInvoiceService) ListInvoicePayments(ctx context.Context, invoiceID string) ([]domain.InvoicePayment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoicePayment), args.Error(1)
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.SupplierInvoice, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupplierInvoice), args.Error(1)
}

func (m *MockInvoiceService) PayInvoice(ctx context.Context, invoiceID string, req dto.PayInvoiceRequest, userID string) (*dto.PayInvoiceResult, error) {
	args := m.Called(ctx, invoiceID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PayInvoiceResult), args.Error(1)
}

func (m *MockInvoiceService) LinkInvoiceToExpense(ctx context.Context, invoiceID string, req dto.LinkInvoiceRequest, userID string) (*domain.InvoiceExpenseLink, *domain.Expense, error) {
	args := m.Called(ctx, invoiceID, req, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.InvoiceExpenseLink), args.Get(1).(*domain.Expense), args.Error(2)
}

func (m *MockInvoiceService) CancelInvoice(ctx context.Context, invoiceID string, userID string) (*domain.SupplierInvoice, error) {
	args := m.Called(ctx, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupplierInvoice), args.Error(1)
}

func (m *MockInvoiceService) ReclassifyExpenseAsInvoicePayment(ctx context.Context, expenseID string, req dto.ReclassifyExpenseRequest, userID string) (*domain.SupplierInvoice, error) {
	args := m.Called(ctx, expenseID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupplierInvoice), args.Error(1)
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Mock audit service ---
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) RunAudit(ctx context.Context) (*domain.AuditReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditReport), args.Error(1)
}

var _ portssvc.AuditSvc = (*MockAuditService)(nil)
