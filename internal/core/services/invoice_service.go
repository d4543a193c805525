package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

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

// invoiceService owns supplier invoices, their payments and the links that
// attribute those payments to expenses.
type invoiceService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	expenseRepo portsrepo.ExpenseRepositoryFacade
	accountRepo portsrepo.BankAccountReader
	txnRepo     portsrepo.BankTransactionReader
	ledger      portssvc.AccountLedgerWriter
}

// NewInvoiceService creates a new supplier invoice service.
func NewInvoiceService(
	txManager portsrepo.TransactionManager,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	accountRepo portsrepo.BankAccountReader,
	txnRepo portsrepo.BankTransactionReader,
	ledger portssvc.AccountLedgerWriter,
	opts ...ServiceOption,
) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		BaseService: newBaseService(opts...),
		txManager:   txManager,
		invoiceRepo: invoiceRepo,
		expenseRepo: expenseRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		ledger:      ledger,
	}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// CreateInvoice records a new pending supplier invoice.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.SupplierInvoice, error) {
	issueDate, err := parseDate("issueDate", req.IssueDate)
	if err != nil {
		return nil, err
	}
	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		d, err := parseDate("dueDate", *req.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = &d
	}
	txType := req.TransactionType
	if txType == "" {
		txType = domain.InvoiceTypePurchase
	}

	if req.CreditAccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, *req.CreditAccountID); err != nil {
			return nil, err
		}
	}

	invoice := domain.SupplierInvoice{
		InvoiceID:       uuid.NewString(),
		Vendor:          strings.TrimSpace(req.Vendor),
		InvoiceNumber:   req.InvoiceNumber,
		TotalAmount:     req.TotalAmount,
		PaidAmount:      decimal.Zero,
		PaymentStatus:   domain.InvoicePending,
		TransactionType: txType,
		IssueDate:       issueDate,
		DueDate:         dueDate,
		PaymentMethod:   req.PaymentMethod,
		CreditAccountID: req.CreditAccountID,
		WorkID:          req.WorkID,
		Notes:           req.Notes,
		AuditFields:     domain.NewAuditFields(userID, s.now()),
	}
	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveInvoice(ctx, invoice); err != nil {
		s.LogError(ctx, err, "Failed to save supplier invoice", slog.String("vendor", invoice.Vendor))
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.LogInfo(ctx, "Supplier invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("vendor", invoice.Vendor),
		slog.String("total", domain.FormatAmount(invoice.TotalAmount)))
	return &invoice, nil
}

func (s *invoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.SupplierInvoice, error) {
	return s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
}

// ListInvoices lists invoices. The overdue status is derived, so filtering
// on it is not supported here.
func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.SupplierInvoice, error) {
	limit, offset := normalizePage(params.PageParams)
	return s.invoiceRepo.ListInvoices(ctx, portsrepo.InvoiceFilter{
		Vendor: strings.TrimSpace(params.Vendor),
		Status: domain.InvoiceStatus(params.Status),
		WorkID: params.WorkID,
	}, limit, offset)
}

func (s *invoiceService) ListInvoiceLinks(ctx context.Context, invoiceID string) ([]domain.InvoiceExpenseLink, error) {
	if _, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListLinksByInvoice(ctx, invoiceID)
}

func (s *invoiceService) ListInvoicePayments(ctx context.Context, invoiceID string) ([]domain.InvoicePayment, error) {
	if _, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListPaymentsByInvoice(ctx, invoiceID)
}

// PayInvoice records a payment against the invoice, spreads it over the
// invoice's expenses and books the withdrawal, all in one transaction.
func (s *invoiceService) PayInvoice(ctx context.Context, invoiceID string, req dto.PayInvoiceRequest, userID string) (*dto.PayInvoiceResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("invoice_id", invoiceID))

	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	paymentDate, err := parseDate("paymentDate", req.PaymentDate)
	if err != nil {
		return nil, err
	}
	if req.AccountID == "" {
		return nil, fmt.Errorf("%w: accountID is required", apperrors.ErrValidation)
	}
	if req.IdempotencyKey != nil && strings.TrimSpace(*req.IdempotencyKey) == "" {
		req.IdempotencyKey = nil
	}
	manual := make([]domain.AllocationLine, len(req.Allocations))
	for i, a := range req.Allocations {
		manual[i] = domain.AllocationLine{ExpenseID: a.ExpenseID, Amount: a.Amount}
	}

	var result *dto.PayInvoiceResult
	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		result = nil

		invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		payments, err := s.invoiceRepo.FindPaymentsByInvoiceInTx(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		if prior := findByIdempotencyKey(payments, req.IdempotencyKey); prior != nil {
			links, err := s.invoiceRepo.FindLinksByInvoiceInTx(ctx, tx, invoiceID)
			if err != nil {
				return err
			}
			result = replayedPayment(*invoice, *prior, links)
			return nil
		}

		if invoice.PaymentStatus == domain.InvoiceCancelled {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrInvoiceCancelled, invoiceID)
		}
		if invoice.PaidAmount.Add(req.Amount).GreaterThan(invoice.TotalAmount) {
			return fmt.Errorf("%w: invoice %s has %s remaining, payment of %s requested",
				apperrors.ErrOverPayment, invoiceID, domain.FormatAmount(invoice.Remaining()), domain.FormatAmount(req.Amount))
		}
		if !req.ConfirmDuplicate {
			for _, p := range payments {
				if p.SameIntent(req.Amount, paymentDate, req.AccountID) {
					return fmt.Errorf("%w: payment %s on %s already paid %s from account %s",
						apperrors.ErrDuplicateLinkSuspected, p.PaymentID, p.PaymentDate.Format(domain.DateLayout),
						domain.FormatAmount(p.Amount), p.AccountID)
				}
			}
		}

		plan, expenses, err := s.planAllocation(ctx, tx, *invoice, req.Amount, req.CandidateExpenseIDs, manual, req.DeferAllocation)
		if err != nil {
			return err
		}

		now := s.now()
		if err := invoice.ApplyPayment(req.Amount); err != nil {
			return err
		}
		invoice.Touch(userID, now)
		if err := s.invoiceRepo.UpdateInvoiceStateInTx(ctx, tx, *invoice); err != nil {
			return err
		}

		paymentID := uuid.NewString()
		links := make([]domain.InvoiceExpenseLink, 0, len(plan.Lines))
		for _, line := range plan.Lines {
			expense := expenses[line.ExpenseID]
			if err := expense.ApplyPayment(line.Amount, domain.SourceInvoice); err != nil {
				return err
			}
			expense.Touch(userID, now)
			if err := s.expenseRepo.UpdateExpensePaymentInTx(ctx, tx, expense); err != nil {
				return err
			}
			expenses[line.ExpenseID] = expense
			links = append(links, domain.InvoiceExpenseLink{
				LinkID:            uuid.NewString(),
				SupplierInvoiceID: invoiceID,
				ExpenseID:         line.ExpenseID,
				InvoicePaymentID:  &paymentID,
				AmountApplied:     line.Amount,
				CreatedByStaffID:  userID,
				Notes:             fmt.Sprintf("%s allocation of payment %s", plan.Strategy, paymentID),
				CreatedAt:         now,
			})
		}

		description := req.Description
		if description == "" {
			description = invoicePaymentDescription(*invoice)
		}
		txn, err := s.ledger.RecordTransactionInTx(ctx, tx, domain.BankTransaction{
			AccountID:       req.AccountID,
			TransactionType: domain.Withdrawal,
			Amount:          req.Amount,
			TransactionDate: paymentDate,
			Description:     description,
			Category:        invoice.PaymentCategory(),
			RelatedRefs:     domain.RelatedRefs{RelatedInvoicePaymentID: &paymentID},
		}, userID)
		if err != nil {
			return err
		}

		payment := domain.InvoicePayment{
			PaymentID:      paymentID,
			InvoiceID:      invoiceID,
			AccountID:      req.AccountID,
			Amount:         req.Amount,
			PaymentDate:    paymentDate,
			IdempotencyKey: req.IdempotencyKey,
			TransactionID:  txn.TransactionID,
			Allocation:     plan.Strategy,
			CreatedAt:      now,
			CreatedBy:      userID,
		}
		if err := s.invoiceRepo.SavePaymentInTx(ctx, tx, payment); err != nil {
			return err
		}
		if len(links) > 0 {
			if err := s.invoiceRepo.SaveLinksInTx(ctx, tx, links); err != nil {
				return err
			}
		}

		result = &dto.PayInvoiceResult{
			Invoice:     *invoice,
			Payment:     payment,
			Transaction: *txn,
			Plan:        plan,
			Links:       links,
		}
		return nil
	})
	if err != nil {
		logger.Error("Invoice payment failed",
			slog.String("error", err.Error()),
			slog.String("kind", apperrors.Kind(err)),
			slog.String("amount", domain.FormatAmount(req.Amount)))
		return nil, err
	}

	if result.Replayed {
		txn, err := s.txnRepo.FindTransactionByID(ctx, result.Payment.TransactionID)
		if err != nil {
			return nil, err
		}
		result.Transaction = *txn
		logger.Info("Invoice payment replayed for idempotency key", slog.String("payment_id", result.Payment.PaymentID))
		return result, nil
	}

	logger.Info("Invoice paid",
		slog.String("payment_id", result.Payment.PaymentID),
		slog.String("amount", domain.FormatAmount(req.Amount)),
		slog.String("allocation", string(result.Plan.Strategy)),
		slog.Int("links", len(result.Links)),
		slog.String("status", string(result.Invoice.PaymentStatus)))
	s.publish(ctx, events.New(events.TypeInvoicePaid, invoiceID, userID, result))
	return result, nil
}

// planAllocation locks the expenses the payment may settle and builds the
// plan. Payment-type invoices and deferred payments settle no expenses.
func (s *invoiceService) planAllocation(
	ctx context.Context,
	tx pgx.Tx,
	invoice domain.SupplierInvoice,
	amount decimal.Decimal,
	candidateIDs []string,
	manual []domain.AllocationLine,
	deferred bool,
) (domain.AllocationPlan, map[string]domain.Expense, error) {
	if invoice.TransactionType == domain.InvoiceTypePayment || deferred {
		if len(manual) > 0 || len(candidateIDs) > 0 {
			return domain.AllocationPlan{}, nil, fmt.Errorf("%w: payment-type invoices and deferred payments do not settle expenses", apperrors.ErrValidation)
		}
		return domain.AllocationPlan{Strategy: domain.AllocationNone, Total: amount}, map[string]domain.Expense{}, nil
	}

	ids := candidateIDs
	if len(ids) == 0 && len(manual) > 0 {
		for _, l := range manual {
			ids = append(ids, l.ExpenseID)
		}
	}

	var candidates []domain.Expense
	if len(ids) > 0 {
		locked, err := s.expenseRepo.FindExpensesByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return domain.AllocationPlan{}, nil, err
		}
		for _, id := range uniqueSorted(ids) {
			exp := locked[id]
			if !exp.IsSettlementCandidate(invoice.Vendor, invoice.PaymentMethod) {
				return domain.AllocationPlan{}, nil, fmt.Errorf("%w: expense %s is not an open %s expense of vendor %q",
					apperrors.ErrValidation, id, invoice.PaymentMethod, invoice.Vendor)
			}
			candidates = append(candidates, exp)
		}
	} else {
		var err error
		candidates, err = s.expenseRepo.FindSettlementCandidatesForUpdate(ctx, tx, invoice.Vendor, invoice.PaymentMethod)
		if err != nil {
			return domain.AllocationPlan{}, nil, err
		}
	}

	var plan domain.AllocationPlan
	var err error
	if len(manual) > 0 {
		plan, err = domain.ValidateManualAllocation(amount, manual, candidates)
	} else {
		plan, err = domain.PlanFIFOAllocation(amount, candidates)
	}
	if err != nil {
		return domain.AllocationPlan{}, nil, err
	}

	byID := make(map[string]domain.Expense, len(candidates))
	for _, c := range candidates {
		byID[c.ExpenseID] = c
	}
	return plan, byID, nil
}

// LinkInvoiceToExpense attributes paid but unallocated invoice money to an expense.
func (s *invoiceService) LinkInvoiceToExpense(ctx context.Context, invoiceID string, req dto.LinkInvoiceRequest, userID string) (*domain.InvoiceExpenseLink, *domain.Expense, error) {
	if err := domain.ValidateAmount(req.AmountApplied); err != nil {
		return nil, nil, err
	}

	var link domain.InvoiceExpenseLink
	var expense domain.Expense
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.PaymentStatus == domain.InvoiceCancelled {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrInvoiceCancelled, invoiceID)
		}
		if invoice.TransactionType == domain.InvoiceTypePayment {
			return fmt.Errorf("%w: payment-type invoices do not settle expenses", apperrors.ErrValidation)
		}

		existing, err := s.invoiceRepo.FindLinksByInvoiceInTx(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		unallocated := invoice.PaidAmount.Sub(domain.SumApplied(existing))
		if req.AmountApplied.GreaterThan(unallocated) {
			return fmt.Errorf("%w: invoice %s has %s paid but unallocated, %s requested",
				apperrors.ErrOverPayment, invoiceID, domain.FormatAmount(unallocated), domain.FormatAmount(req.AmountApplied))
		}

		locked, err := s.expenseRepo.FindExpensesByIDsForUpdate(ctx, tx, []string{req.ExpenseID})
		if err != nil {
			return err
		}
		expense = locked[req.ExpenseID]

		if !req.ConfirmDuplicate {
			for _, l := range existing {
				if l.ExpenseID == req.ExpenseID {
					return fmt.Errorf("%w: invoice %s already applies %s to expense %s",
						apperrors.ErrDuplicateLinkSuspected, invoiceID, domain.FormatAmount(l.AmountApplied), req.ExpenseID)
				}
			}
		}

		now := s.now()
		if err := expense.ApplyPayment(req.AmountApplied, domain.SourceInvoice); err != nil {
			return err
		}
		expense.Touch(userID, now)
		if err := s.expenseRepo.UpdateExpensePaymentInTx(ctx, tx, expense); err != nil {
			return err
		}

		link = domain.InvoiceExpenseLink{
			LinkID:            uuid.NewString(),
			SupplierInvoiceID: invoiceID,
			ExpenseID:         req.ExpenseID,
			AmountApplied:     req.AmountApplied,
			CreatedByStaffID:  userID,
			Notes:             req.Notes,
			CreatedAt:         now,
		}
		return s.invoiceRepo.SaveLinksInTx(ctx, tx, []domain.InvoiceExpenseLink{link})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to link invoice to expense",
			slog.String("invoice_id", invoiceID),
			slog.String("expense_id", req.ExpenseID))
		return nil, nil, err
	}

	s.LogInfo(ctx, "Invoice linked to expense",
		slog.String("link_id", link.LinkID),
		slog.String("invoice_id", invoiceID),
		slog.String("expense_id", req.ExpenseID),
		slog.String("amount", domain.FormatAmount(req.AmountApplied)))
	s.publish(ctx, events.New(events.TypeInvoiceLinked, invoiceID, userID, link))
	return &link, &expense, nil
}

// CancelInvoice moves an unpaid or partly paid invoice to cancelled.
func (s *invoiceService) CancelInvoice(ctx context.Context, invoiceID string, userID string) (*domain.SupplierInvoice, error) {
	var invoice *domain.SupplierInvoice
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		invoice, err = s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if err := invoice.Cancel(); err != nil {
			return err
		}
		invoice.Touch(userID, s.now())
		return s.invoiceRepo.UpdateInvoiceStateInTx(ctx, tx, *invoice)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}

	s.LogInfo(ctx, "Invoice cancelled", slog.String("invoice_id", invoiceID))
	s.publish(ctx, events.New(events.TypeInvoiceCancelled, invoiceID, userID, nil))
	return invoice, nil
}

// ReclassifyExpenseAsInvoicePayment corrects a card payment that was booked
// as an expense: the unpaid expense is deleted and a payment-type invoice
// for the same total takes its place.
func (s *invoiceService) ReclassifyExpenseAsInvoicePayment(ctx context.Context, expenseID string, req dto.ReclassifyExpenseRequest, userID string) (*domain.SupplierInvoice, error) {
	method := req.PaymentMethod
	if method == "" {
		method = domain.MethodCreditCard
	}
	var issueDate *time.Time
	if req.IssueDate != "" {
		d, err := parseDate("issueDate", req.IssueDate)
		if err != nil {
			return nil, err
		}
		issueDate = &d
	}
	if req.CreditAccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, *req.CreditAccountID); err != nil {
			return nil, err
		}
	}

	var invoice domain.SupplierInvoice
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		expense, err := lockUnpaidExpense(ctx, tx, s.expenseRepo, s.invoiceRepo, expenseID)
		if err != nil {
			return err
		}

		invoice = domain.SupplierInvoice{
			InvoiceID:       uuid.NewString(),
			Vendor:          expense.Vendor,
			InvoiceNumber:   req.InvoiceNumber,
			TotalAmount:     expense.Amount,
			PaidAmount:      decimal.Zero,
			PaymentStatus:   domain.InvoicePending,
			TransactionType: domain.InvoiceTypePayment,
			IssueDate:       expense.ExpenseDate,
			PaymentMethod:   method,
			CreditAccountID: req.CreditAccountID,
			WorkID:          expense.WorkID,
			Notes:           req.Notes,
			AuditFields:     domain.NewAuditFields(userID, s.now()),
		}
		if issueDate != nil {
			invoice.IssueDate = *issueDate
		}
		if invoice.Notes == "" {
			invoice.Notes = fmt.Sprintf("Reclassified from expense %s (%s)", expense.ExpenseID, expense.Description)
		}
		if err := invoice.Validate(); err != nil {
			return err
		}

		if err := s.expenseRepo.DeleteExpenseInTx(ctx, tx, expenseID); err != nil {
			return err
		}
		return s.invoiceRepo.SaveInvoiceInTx(ctx, tx, invoice)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reclassify expense", slog.String("expense_id", expenseID))
		return nil, err
	}

	s.LogInfo(ctx, "Expense reclassified as invoice payment",
		slog.String("expense_id", expenseID),
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("total", domain.FormatAmount(invoice.TotalAmount)))
	s.publish(ctx, events.New(events.TypeExpenseReclassified, expenseID, userID, invoice))
	return &invoice, nil
}

func findByIdempotencyKey(payments []domain.InvoicePayment, key *string) *domain.InvoicePayment {
	if key == nil {
		return nil
	}
	for i := range payments {
		if payments[i].IdempotencyKey != nil && *payments[i].IdempotencyKey == *key {
			return &payments[i]
		}
	}
	return nil
}

// replayedPayment rebuilds the result of an earlier payment from its stored rows.
func replayedPayment(invoice domain.SupplierInvoice, payment domain.InvoicePayment, links []domain.InvoiceExpenseLink) *dto.PayInvoiceResult {
	own := make([]domain.InvoiceExpenseLink, 0)
	lines := make([]domain.AllocationLine, 0)
	for _, l := range links {
		if l.InvoicePaymentID != nil && *l.InvoicePaymentID == payment.PaymentID {
			own = append(own, l)
			lines = append(lines, domain.AllocationLine{ExpenseID: l.ExpenseID, Amount: l.AmountApplied})
		}
	}
	return &dto.PayInvoiceResult{
		Invoice:  invoice,
		Payment:  payment,
		Plan:     domain.AllocationPlan{Strategy: payment.Allocation, Total: payment.Amount, Lines: lines},
		Links:    own,
		Replayed: true,
	}
}

func invoicePaymentDescription(invoice domain.SupplierInvoice) string {
	if invoice.InvoiceNumber != "" {
		return fmt.Sprintf("Payment of invoice %s to %s", invoice.InvoiceNumber, invoice.Vendor)
	}
	return "Payment to " + invoice.Vendor
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
