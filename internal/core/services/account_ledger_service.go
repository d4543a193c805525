package services

import (
	"context"
	"fmt"
	"log/slog"
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

const defaultCurrencyCode = "USD"

// ledgerService owns bank accounts and their append-only transaction logs.
type ledgerService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.BankAccountRepositoryFacade
	txnRepo     portsrepo.BankTransactionRepositoryFacade
}

// NewLedgerService creates a new account ledger service.
func NewLedgerService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.BankAccountRepositoryFacade,
	txnRepo portsrepo.BankTransactionRepositoryFacade,
	opts ...ServiceOption,
) portssvc.AccountLedgerSvcFacade {
	return &ledgerService{
		BaseService: newBaseService(opts...),
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
	}
}

var _ portssvc.AccountLedgerSvcFacade = (*ledgerService)(nil)

// CreateAccount opens a new account with a zero balance.
func (s *ledgerService) CreateAccount(ctx context.Context, req dto.CreateBankAccountRequest, userID string) (*domain.BankAccount, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	if !req.AccountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" {
		currency = defaultCurrencyCode
	}

	account := domain.BankAccount{
		AccountID:      uuid.NewString(),
		Name:           strings.TrimSpace(req.Name),
		AccountType:    req.AccountType,
		CurrencyCode:   currency,
		CurrentBalance: decimal.Zero,
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(userID, s.now()),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save bank account", slog.String("account_name", account.Name))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.LogInfo(ctx, "Bank account created",
		slog.String("account_id", account.AccountID),
		slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

func (s *ledgerService) GetAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

func (s *ledgerService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

// GetBalance returns the cached balance.
func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.CurrentBalance, nil
}

// RecomputeBalance folds the account's log from zero. It never writes the
// result back; drift is reported by the auditor.
func (s *ledgerService) RecomputeBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	return s.accountRepo.ComputeAccountBalance(ctx, accountID)
}

func (s *ledgerService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	txns, nextToken, err := s.txnRepo.ListTransactionsByAccount(ctx, accountID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToBankTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// RecordTransaction appends a manual deposit or withdrawal.
func (s *ledgerService) RecordTransaction(ctx context.Context, accountID string, req dto.RecordTransactionRequest, userID string) (*domain.BankTransaction, error) {
	if req.TransactionType != domain.Deposit && req.TransactionType != domain.Withdrawal {
		return nil, fmt.Errorf("%w: transaction type %q cannot be recorded directly", apperrors.ErrValidation, req.TransactionType)
	}
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	date, err := parseDate("transactionDate", req.TransactionDate)
	if err != nil {
		return nil, err
	}
	category := req.Category
	if category == "" {
		category = domain.CategoryOther
		if req.TransactionType == domain.Deposit {
			category = domain.CategoryIncome
		}
	}
	if category == domain.CategoryTransfer {
		return nil, fmt.Errorf("%w: transfer category is reserved for transfers", apperrors.ErrValidation)
	}

	txn := domain.BankTransaction{
		AccountID:       accountID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		TransactionDate: date,
		Description:     req.Description,
		Category:        category,
		RelatedRefs:     domain.RelatedRefs{RelatedIncomeID: req.RelatedIncomeID},
	}

	var recorded *domain.BankTransaction
	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var txErr error
		recorded, txErr = s.RecordTransactionInTx(ctx, tx, txn, userID)
		return txErr
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record bank transaction", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Bank transaction recorded",
		slog.String("transaction_id", recorded.TransactionID),
		slog.String("account_id", accountID),
		slog.String("type", string(recorded.TransactionType)),
		slog.String("amount", domain.FormatAmount(recorded.Amount)))
	s.publish(ctx, events.New(events.TypeTransactionRecorded, recorded.TransactionID, userID, recorded))
	return recorded, nil
}

// RecordTransactionInTx locks the account, appends txn and updates the
// cached balance. Callers own tx.
func (s *ledgerService) RecordTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankTransaction, userID string) (*domain.BankTransaction, error) {
	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{txn.AccountID})
	if err != nil {
		return nil, err
	}
	account := accounts[txn.AccountID]
	return s.appendToLockedAccount(ctx, tx, &account, txn, userID)
}

// appendToLockedAccount writes one log entry against an account already
// locked in tx and advances account.CurrentBalance in place.
func (s *ledgerService) appendToLockedAccount(ctx context.Context, tx pgx.Tx, account *domain.BankAccount, txn domain.BankTransaction, userID string) (*domain.BankTransaction, error) {
	if err := account.EnsureUsable(); err != nil {
		return nil, err
	}
	txn.AccountID = account.AccountID
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	if txn.TransactionID == "" {
		txn.TransactionID = uuid.NewString()
	}
	txn.TransactionDate = domain.CalendarDate(txn.TransactionDate)
	txn.BalanceAfter = account.CurrentBalance.Add(txn.SignedAmount())
	txn.CreatedAt = now
	txn.CreatedBy = userID

	if err := s.txnRepo.AppendTransactionInTx(ctx, tx, &txn); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}
	if err := s.accountRepo.UpdateAccountBalanceInTx(ctx, tx, account.AccountID, txn.BalanceAfter, userID, now); err != nil {
		return nil, fmt.Errorf("failed to update account balance: %w", err)
	}
	account.CurrentBalance = txn.BalanceAfter
	return &txn, nil
}

// Transfer moves money between two accounts in one transaction. Both legs
// share a RelatedTransferID.
func (s *ledgerService) Transfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.BankTransaction, *domain.BankTransaction, error) {
	if req.FromAccountID == "" || req.ToAccountID == "" {
		return nil, nil, fmt.Errorf("%w: both accounts are required", apperrors.ErrValidation)
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, nil, fmt.Errorf("%w: cannot transfer from an account to itself", apperrors.ErrValidation)
	}
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, nil, err
	}
	date, err := parseDate("transactionDate", req.TransactionDate)
	if err != nil {
		return nil, nil, err
	}
	description := req.Description
	if description == "" {
		description = "Transfer"
	}

	var out, in *domain.BankTransaction
	transferID := uuid.NewString()
	err = s.txManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{req.FromAccountID, req.ToAccountID})
		if err != nil {
			return err
		}
		from, to := accounts[req.FromAccountID], accounts[req.ToAccountID]
		if from.CurrencyCode != to.CurrencyCode {
			return fmt.Errorf("%w: accounts use different currencies (%s, %s)", apperrors.ErrValidation, from.CurrencyCode, to.CurrencyCode)
		}

		refs := domain.RelatedRefs{RelatedTransferID: &transferID}
		out, err = s.appendToLockedAccount(ctx, tx, &from, domain.BankTransaction{
			TransactionType: domain.TransferOut,
			Amount:          req.Amount,
			TransactionDate: date,
			Description:     description,
			Category:        domain.CategoryTransfer,
			RelatedRefs:     refs,
		}, userID)
		if err != nil {
			return err
		}
		in, err = s.appendToLockedAccount(ctx, tx, &to, domain.BankTransaction{
			TransactionType: domain.TransferIn,
			Amount:          req.Amount,
			TransactionDate: date,
			Description:     description,
			Category:        domain.CategoryTransfer,
			RelatedRefs:     refs,
		}, userID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Transfer failed",
			slog.String("from_account_id", req.FromAccountID),
			slog.String("to_account_id", req.ToAccountID))
		return nil, nil, err
	}

	s.LogInfo(ctx, "Transfer completed",
		slog.String("transfer_id", transferID),
		slog.String("from_account_id", req.FromAccountID),
		slog.String("to_account_id", req.ToAccountID),
		slog.String("amount", domain.FormatAmount(req.Amount)))
	s.publish(ctx, events.New(events.TypeTransferCompleted, transferID, userID, dto.TransferResponse{
		TransferID: transferID,
		Out:        dto.ToBankTransactionResponse(out),
		In:         dto.ToBankTransactionResponse(in),
	}))
	return out, in, nil
}

// parseDate parses a YYYY-MM-DD request field.
func parseDate(field, value string) (time.Time, error) {
	t, err := domain.ParseCalendarDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", apperrors.ErrValidation, field)
	}
	return t, nil
}
