package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/core/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/SscSPs/contractor_ledger/internal/platform/config"
)

const (
	staffID      = "staff-1"
	septicVendor = "Septic Supply Co"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// serviceSuite wires the real services over a fresh memStore for every test.
type serviceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memStore
	publisher *recordingPublisher
	svc       *portssvc.ServiceContainer
}

func (s *serviceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.publisher = &recordingPublisher{}
	cfg := &config.Config{AuditDuplicateWindowDays: domain.DefaultDuplicateWindowDays}
	s.svc = services.NewServiceContainer(cfg, s.store.provider(),
		services.WithPublisher(s.publisher),
		services.WithClock(func() time.Time { return fixedNow }),
	)
}

// openAccount creates an account and funds it with an opening deposit when
// opening is non-empty.
func (s *serviceSuite) openAccount(name string, accountType domain.BankAccountType, opening string) *domain.BankAccount {
	acc, err := s.svc.Ledger.CreateAccount(s.ctx, dto.CreateBankAccountRequest{Name: name, AccountType: accountType}, staffID)
	s.Require().NoError(err)
	if opening != "" {
		_, err = s.svc.Ledger.RecordTransaction(s.ctx, acc.AccountID, dto.RecordTransactionRequest{
			TransactionType: domain.Deposit,
			Amount:          dec(opening),
			TransactionDate: "2024-01-01",
			Description:     "Opening balance",
		}, staffID)
		s.Require().NoError(err)
	}
	return acc
}

func (s *serviceSuite) createExpense(amount, date string) *domain.Expense {
	exp, err := s.svc.Expense.CreateExpense(s.ctx, dto.CreateExpenseRequest{
		Amount:        dec(amount),
		Vendor:        septicVendor,
		Category:      "materials",
		Description:   "Tank risers " + date,
		PaymentMethod: domain.MethodCreditCard,
		ExpenseDate:   date,
	}, staffID)
	s.Require().NoError(err)
	return exp
}

func (s *serviceSuite) createInvoice(total string, txType domain.InvoiceTransactionType) *domain.SupplierInvoice {
	due := "2024-04-01"
	inv, err := s.svc.Invoice.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Vendor:          septicVendor,
		InvoiceNumber:   "INV-1001",
		TotalAmount:     dec(total),
		TransactionType: txType,
		IssueDate:       "2024-03-01",
		DueDate:         &due,
		PaymentMethod:   domain.MethodCreditCard,
	}, staffID)
	s.Require().NoError(err)
	return inv
}

func (s *serviceSuite) balanceOf(accountID string) decimal.Decimal {
	bal, err := s.svc.Ledger.GetBalance(s.ctx, accountID)
	s.Require().NoError(err)
	return bal
}

func (s *serviceSuite) expense(id string) *domain.Expense {
	exp, err := s.svc.Expense.GetExpenseByID(s.ctx, id)
	s.Require().NoError(err)
	return exp
}

func (s *serviceSuite) assertAuditClean() {
	report, err := s.svc.Audit.RunAudit(s.ctx)
	s.Require().NoError(err)
	s.Empty(report.BalanceDrifts)
	s.Empty(report.AllocationOverruns)
	s.Empty(report.PaidAmountDrifts)
}
