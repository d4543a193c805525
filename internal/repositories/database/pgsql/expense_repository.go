package pgsql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/contractor_ledger/internal/models"
	"github.com/SscSPs/contractor_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `expense_id, amount, paid_amount, invoice_paid_amount, payment_status, vendor,
	category, description, payment_method, expense_date, work_id, related_fixed_expense_id,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) *PgxExpenseRepository {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ExpenseID, m.Amount, m.PaidAmount, m.InvoicePaidAmount, m.PaymentStatus, m.Vendor,
		m.Category, m.Description, m.PaymentMethod, m.ExpenseDate, m.WorkID, m.RelatedFixedExpenseID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "insert expense "+m.ExpenseID)
	}
	return nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	rows, err := r.Pool.Query(ctx, query, expenseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expense", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Expense])
	if err != nil {
		return nil, mapReadError(err, apperrors.ErrExpenseNotFound, expenseID, "scan expense")
	}
	expense := mapping.ToDomainExpense(m)
	return &expense, nil
}

// ListExpenses returns expenses newest first. Vendor matching is case-insensitive.
func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, filter portsrepo.ExpenseFilter, limit int, offset int) ([]domain.Expense, error) {
	var (
		conds []string
		args  []any
	)
	if v := strings.TrimSpace(filter.Vendor); v != "" {
		args = append(args, strings.ToLower(v))
		conds = append(conds, fmt.Sprintf("lower(btrim(vendor)) = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if filter.WorkID != "" {
		args = append(args, filter.WorkID)
		conds = append(conds, fmt.Sprintf("work_id = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + expenseColumns + " FROM expenses")
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&sb, " ORDER BY expense_date DESC, expense_id DESC LIMIT $%d OFFSET $%d;", len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list expenses", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Expense])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan expenses", err)
	}
	return mapping.ToDomainExpenseSlice(ms), nil
}

func (r *PgxExpenseRepository) FindExpensesByIDsForUpdate(ctx context.Context, tx pgx.Tx, expenseIDs []string) (map[string]domain.Expense, error) {
	if len(expenseIDs) == 0 {
		return map[string]domain.Expense{}, nil
	}
	ids := append([]string(nil), expenseIDs...)
	sort.Strings(ids)

	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE expense_id = ANY($1)
		ORDER BY expense_id
		FOR UPDATE;
	`
	ms, err := r.collectExpenses(ctx, tx, query, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Expense, len(ms))
	for _, e := range ms {
		out[e.ExpenseID] = e
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrExpenseNotFound, id)
		}
	}
	return out, nil
}

// FindSettlementCandidatesForUpdate locks candidates in ID order, then returns
// them oldest first for allocation.
func (r *PgxExpenseRepository) FindSettlementCandidatesForUpdate(ctx context.Context, tx pgx.Tx, vendor string, method domain.PaymentMethod) ([]domain.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE lower(btrim(vendor)) = lower(btrim($1))
		  AND payment_method = $2
		  AND payment_status IN ('unpaid', 'partial')
		  AND paid_amount < amount
		ORDER BY expense_id
		FOR UPDATE;
	`
	candidates, err := r.collectExpenses(ctx, tx, query, vendor, string(method))
	if err != nil {
		return nil, err
	}
	domain.SortFIFO(candidates)
	return candidates, nil
}

func (r *PgxExpenseRepository) UpdateExpensePaymentInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		UPDATE expenses
		SET paid_amount = $2, invoice_paid_amount = $3, payment_status = $4,
		    last_updated_at = $5, last_updated_by = $6
		WHERE expense_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ExpenseID, m.PaidAmount, m.InvoicePaidAmount, m.PaymentStatus, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "update payment of expense "+m.ExpenseID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrExpenseNotFound, m.ExpenseID)
	}
	return nil
}

func (r *PgxExpenseRepository) DeleteExpenseInTx(ctx context.Context, tx pgx.Tx, expenseID string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return mapWriteError(err, "delete expense "+expenseID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrExpenseNotFound, expenseID)
	}
	return nil
}

func (r *PgxExpenseRepository) collectExpenses(ctx context.Context, q querier, query string, args ...any) ([]domain.Expense, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expenses", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Expense])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan expenses", err)
	}
	return mapping.ToDomainExpenseSlice(ms), nil
}
