package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/contractor_ledger/internal/models"
	"github.com/SscSPs/contractor_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const bankAccountColumns = `account_id, name, account_type, currency_code, current_balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxBankAccountRepository struct {
	BaseRepository
}

func newPgxBankAccountRepository(pool *pgxpool.Pool) *PgxBankAccountRepository {
	return &PgxBankAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankAccountRepositoryFacade = (*PgxBankAccountRepository)(nil)

func (r *PgxBankAccountRepository) SaveAccount(ctx context.Context, account domain.BankAccount) error {
	m := mapping.ToModelBankAccount(account)
	query := `
		INSERT INTO bank_accounts (` + bankAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.Name, m.AccountType, m.CurrencyCode, m.CurrentBalance, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "insert bank account "+m.AccountID)
	}
	return nil
}

func (r *PgxBankAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE account_id = $1;`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bank account", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.BankAccount])
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrAccountNotFound, accountID, "scan bank account")
	}
	account := mapping.ToDomainBankAccount(m)
	return &account, nil
}

func (r *PgxBankAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	query := `
		SELECT ` + bankAccountColumns + `
		FROM bank_accounts
		ORDER BY name, account_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list bank accounts", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BankAccount])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan bank accounts", err)
	}
	return mapping.ToDomainBankAccountSlice(ms), nil
}

// signedAmountSQL folds a bank_transactions row into its effect on the balance.
const signedAmountSQL = `CASE WHEN transaction_type IN ('deposit', 'transfer_in') THEN amount ELSE -amount END`

func (r *PgxBankAccountRepository) ComputeAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var exists bool
	if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bank_accounts WHERE account_id = $1);`, accountID).Scan(&exists); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to check bank account", err)
	}
	if !exists {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}

	var balance decimal.Decimal
	query := `SELECT COALESCE(SUM(` + signedAmountSQL + `), 0) FROM bank_transactions WHERE account_id = $1;`
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to compute balance for account "+accountID, err)
	}
	return balance, nil
}

func (r *PgxBankAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.BankAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.BankAccount{}, nil
	}
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)

	query := `
		SELECT ` + bankAccountColumns + `
		FROM bank_accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock bank accounts", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BankAccount])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan locked bank accounts", err)
	}

	out := make(map[string]domain.BankAccount, len(ms))
	for _, m := range ms {
		out[m.AccountID] = mapping.ToDomainBankAccount(m)
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}
	return out, nil
}

func (r *PgxBankAccountRepository) UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE bank_accounts
		SET current_balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, accountID, balance, now, userID)
	if err != nil {
		return mapWriteError(err, "update balance for account "+accountID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return nil
}
