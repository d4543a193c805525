package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/SscSPs/contractor_ledger/internal/events"
)

// expenseService tracks committed expenses and their direct payments.
type expenseService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	expenseRepo portsrepo.ExpenseRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	ledger      portssvc.AccountLedgerWriter
}

// NewExpenseService creates a new expense service. ledger books the cash
// side of direct payments inside the same transaction.
func NewExpenseService(
	txManager portsrepo.TransactionManager,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	ledger portssvc.AccountLedgerWriter,
	opts ...ServiceOption,
) portssvc.ExpenseSvcFacade {
	return &expenseService{
		BaseService: newBaseService(opts...),
		txManager:   txManager,
		expenseRepo: expenseRepo,
		invoiceRepo: invoiceRepo,
		ledger:      ledger,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// CreateExpense commits a new unpaid expense.
func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error) {
	expenseDate, err := parseDate("expenseDate", req.ExpenseDate)
	if err != nil {
		return nil, err
	}

	expense := domain.Expense{
		ExpenseID:             uuid.NewString(),
		Amount:                req.Amount,
		PaidAmount:            decimal.Zero,
		InvoicePaidAmount:     decimal.Zero,
		PaymentStatus:         domain.ExpenseUnpaid,
		Vendor:                strings.TrimSpace(req.Vendor),
		Category:              req.Category,
		Description:           req.Description,
		PaymentMethod:         req.PaymentMethod,
		ExpenseDate:           expenseDate,
		WorkID:                req.WorkID,
		RelatedFixedExpenseID: req.RelatedFixedExpenseID,
		AuditFields:           domain.NewAuditFields(userID, s.now()),
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense", slog.String("vendor", expense.Vendor))
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.LogInfo(ctx, "Expense created",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("vendor", expense.Vendor),
		slog.String("amount", domain.FormatAmount(expense.Amount)))
	return &expense, nil
}

func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	return s.expenseRepo.FindExpenseByID(ctx, expenseID)
}

func (s *expenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	limit, offset := normalizePage(params.PageParams)
	filter := portsrepo.ExpenseFilter{
		Vendor: strings.TrimSpace(params.Vendor),
		Status: domain.ExpenseStatus(params.Status),
		WorkID: params.WorkID,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown expense status %q", apperrors.ErrValidation, params.Status)
	}
	return s.expenseRepo.ListExpenses(ctx, filter, limit, offset)
}

// PayExpenseDirectly applies a direct payment to the expense and books the
// matching withdrawal in one transaction.
func (s *expenseService) PayExpenseDirectly(ctx context.Context, expenseID string, req dto.PayExpenseRequest, userID string) (*domain.Expense, *domain.BankTransaction, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, nil, err
	}
	paymentDate, err := parseDate("paymentDate", req.PaymentDate)
	if err != nil {
		return nil, nil, err
	}

	var expense domain.Expense
	var txn *domain.BankTransaction
	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := s.expenseRepo.FindExpensesByIDsForUpdate(ctx, tx, []string{expenseID})
		if err != nil {
			return err
		}
		expense = locked[expenseID]
		if err := expense.ApplyPayment(req.Amount, domain.SourceDirect); err != nil {
			return err
		}
		expense.Touch(userID, s.now())
		if err := s.expenseRepo.UpdateExpensePaymentInTx(ctx, tx, expense); err != nil {
			return err
		}

		description := req.Description
		if description == "" {
			description = "Payment to " + expense.Vendor
		}
		txn, err = s.ledger.RecordTransactionInTx(ctx, tx, domain.BankTransaction{
			AccountID:       req.AccountID,
			TransactionType: domain.Withdrawal,
			Amount:          req.Amount,
			TransactionDate: paymentDate,
			Description:     description,
			Category:        domain.CategoryExpense,
			RelatedRefs:     domain.RelatedRefs{RelatedExpenseID: &expense.ExpenseID},
		}, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Direct expense payment failed",
			slog.String("expense_id", expenseID),
			slog.String("account_id", req.AccountID),
			slog.String("amount", domain.FormatAmount(req.Amount)))
		return nil, nil, err
	}

	s.LogInfo(ctx, "Expense paid directly",
		slog.String("expense_id", expenseID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("status", string(expense.PaymentStatus)))
	s.publish(ctx, events.New(events.TypeExpensePaid, expenseID, userID, dto.PayExpenseResponse{
		Expense:     dto.ToExpenseResponse(&expense),
		Transaction: dto.ToBankTransactionResponse(txn),
	}))
	return &expense, txn, nil
}

// DeleteExpense removes an expense nothing has been paid against.
func (s *expenseService) DeleteExpense(ctx context.Context, expenseID string, userID string) error {
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := lockUnpaidExpense(ctx, tx, s.expenseRepo, s.invoiceRepo, expenseID); err != nil {
			return err
		}
		return s.expenseRepo.DeleteExpenseInTx(ctx, tx, expenseID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete expense", slog.String("expense_id", expenseID))
		return err
	}

	s.LogInfo(ctx, "Expense deleted", slog.String("expense_id", expenseID))
	s.publish(ctx, events.New(events.TypeExpenseDeleted, expenseID, userID, nil))
	return nil
}

// lockUnpaidExpense locks the expense and checks that it carries no payment
// and no invoice link, the precondition for removing it.
func lockUnpaidExpense(ctx context.Context, tx pgx.Tx, expenseRepo portsrepo.ExpenseRepositoryFacade, invoiceRepo portsrepo.InvoiceRepositoryFacade, expenseID string) (domain.Expense, error) {
	locked, err := expenseRepo.FindExpensesByIDsForUpdate(ctx, tx, []string{expenseID})
	if err != nil {
		return domain.Expense{}, err
	}
	expense := locked[expenseID]
	if err := expense.EnsureDeletable(); err != nil {
		return domain.Expense{}, err
	}
	links, err := invoiceRepo.FindLinksByExpenseInTx(ctx, tx, expenseID)
	if err != nil {
		return domain.Expense{}, err
	}
	if len(links) > 0 {
		return domain.Expense{}, fmt.Errorf("%w: expense %s is linked to %d invoice(s)", apperrors.ErrExpenseHasPayments, expenseID, len(links))
	}
	return expense, nil
}

// normalizePage clamps offset pagination parameters.
func normalizePage(p dto.PageParams) (int, int) {
	limit, offset := p.Limit, p.Offset
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
