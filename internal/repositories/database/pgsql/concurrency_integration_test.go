//go:build integration

package pgsql_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/core/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/SscSPs/contractor_ledger/internal/platform/config"
	"github.com/SscSPs/contractor_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/contractor_ledger/pkg/database"
)

const integrationStaffID = "staff-integration"

// ConcurrencyTestSuite runs concurrent ledger writes against a real
// PostgreSQL database. Set PGSQL_TEST_URL to a disposable database.
type ConcurrencyTestSuite struct {
	suite.Suite
	ctx  context.Context
	pool *pgxpool.Pool
	svc  *portssvc.ServiceContainer
}

func TestConcurrencyTestSuite(t *testing.T) {
	if os.Getenv("PGSQL_TEST_URL") == "" {
		t.Skip("PGSQL_TEST_URL not set")
	}
	suite.Run(t, new(ConcurrencyTestSuite))
}

func (s *ConcurrencyTestSuite) SetupSuite() {
	url := os.Getenv("PGSQL_TEST_URL")
	s.ctx = context.Background()
	s.Require().NoError(database.RunMigrations(url, slog.Default()))

	pool, err := database.NewPgxPool(s.ctx, url, 16)
	s.Require().NoError(err)
	s.pool = pool

	cfg := &config.Config{AuditDuplicateWindowDays: domain.DefaultDuplicateWindowDays}
	repos := pgsql.NewRepositoryProvider(pool, 50, 5*time.Second)
	s.svc = services.NewServiceContainer(cfg, repos)
}

func (s *ConcurrencyTestSuite) TearDownSuite() {
	database.ClosePgxPool(s.pool)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// Concurrent payments on one invoice must serialise on the locked invoice
// row: exactly as many succeed as fit the total, the rest are OverPayment.
func (s *ConcurrencyTestSuite) TestPayInvoice_ConcurrentPaymentsNeverOverpay() {
	vendor := "Concurrent Supply " + uuid.NewString()

	acc, err := s.svc.Ledger.CreateAccount(s.ctx, dto.CreateBankAccountRequest{Name: vendor + " card", AccountType: domain.Checking}, integrationStaffID)
	s.Require().NoError(err)
	_, err = s.svc.Ledger.RecordTransaction(s.ctx, acc.AccountID, dto.RecordTransactionRequest{
		TransactionType: domain.Deposit,
		Amount:          dec("10000.00"),
		TransactionDate: "2024-01-01",
	}, integrationStaffID)
	s.Require().NoError(err)

	for _, date := range []string{"2024-02-01", "2024-02-02", "2024-02-03"} {
		_, err := s.svc.Expense.CreateExpense(s.ctx, dto.CreateExpenseRequest{
			Amount:        dec("100.00"),
			Vendor:        vendor,
			Description:   "Pump parts " + date,
			PaymentMethod: domain.MethodCreditCard,
			ExpenseDate:   date,
		}, integrationStaffID)
		s.Require().NoError(err)
	}
	invoice, err := s.svc.Invoice.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Vendor:        vendor,
		InvoiceNumber: "STMT-1",
		TotalAmount:   dec("300.00"),
		IssueDate:     "2024-02-28",
		PaymentMethod: domain.MethodCreditCard,
	}, integrationStaffID)
	s.Require().NoError(err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.Invoice.PayInvoice(s.ctx, invoice.InvoiceID, dto.PayInvoiceRequest{
				Amount:           dec("100.00"),
				AccountID:        acc.AccountID,
				PaymentDate:      "2024-03-05",
				ConfirmDuplicate: true,
			}, integrationStaffID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(errors.Is(err, apperrors.ErrOverPayment), err.Error())
	}
	s.Equal(3, succeeded)

	stored, err := s.svc.Invoice.GetInvoiceByID(s.ctx, invoice.InvoiceID)
	s.Require().NoError(err)
	s.True(dec("300.00").Equal(stored.PaidAmount))
	s.Equal(domain.InvoicePaid, stored.PaymentStatus)

	links, err := s.svc.Invoice.ListInvoiceLinks(s.ctx, invoice.InvoiceID)
	s.Require().NoError(err)
	s.True(dec("300.00").Equal(domain.SumApplied(links)))

	cached, err := s.svc.Ledger.GetBalance(s.ctx, acc.AccountID)
	s.Require().NoError(err)
	recomputed, err := s.svc.Ledger.RecomputeBalance(s.ctx, acc.AccountID)
	s.Require().NoError(err)
	s.True(dec("9700.00").Equal(cached))
	s.True(cached.Equal(recomputed))
}
