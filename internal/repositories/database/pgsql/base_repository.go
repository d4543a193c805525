package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	initialRetryBackoff = 20 * time.Millisecond
)

// querier is the part of pgxpool.Pool and pgx.Tx the repositories use,
// so read helpers can run either standalone or inside a ledger transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

type pgxTxManager struct {
	BaseRepository
	maxRetries       int
	statementTimeout time.Duration
}

// NewTxManager returns a TransactionManager backed by pool. Serialization
// failures and deadlocks are retried up to maxRetries times with doubling backoff.
func NewTxManager(pool *pgxpool.Pool, maxRetries int, statementTimeout time.Duration) portsrepo.TransactionManager {
	return &pgxTxManager{
		BaseRepository:   BaseRepository{Pool: pool},
		maxRetries:       maxRetries,
		statementTimeout: statementTimeout,
	}
}

var _ portsrepo.TransactionManager = (*pgxTxManager)(nil)

func (m *pgxTxManager) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	opts := pgx.TxOptions{IsoLevel: pgx.Serializable, AccessMode: pgx.ReadWrite}
	backoff := initialRetryBackoff
	for attempt := 0; ; attempt++ {
		err := m.runOnce(ctx, opts, fn)
		if err == nil || !isRetryable(err) || attempt >= m.maxRetries {
			return err
		}
		slog.WarnContext(ctx, "Retrying ledger transaction", "attempt", attempt+1, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (m *pgxTxManager) RunReadOnlyTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return m.runOnce(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (m *pgxTxManager) runOnce(ctx context.Context, opts pgx.TxOptions, fn portsrepo.TxFunc) error {
	tx, err := m.Pool.BeginTx(ctx, opts)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		if rbErr := m.Rollback(ctx, tx); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
	}()

	if m.statementTimeout > 0 {
		ms := strconv.FormatInt(m.statementTimeout.Milliseconds(), 10)
		if _, err := tx.Exec(ctx, "SELECT set_config('statement_timeout', $1, true)", ms); err != nil {
			return apperrors.NewAppError(500, "failed to set statement timeout", err)
		}
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// isRetryable reports whether err carries a serialization failure or deadlock.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

// mapWriteError translates constraint violations into ledger error kinds.
// Anything else stays wrapped so the retry loop can still inspect it.
func mapWriteError(err error, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, action, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s violates %s", apperrors.ErrConflict, action, pgErr.ConstraintName)
		}
	}
	return apperrors.NewAppError(500, "failed to "+action, err)
}

// mapReadError turns a missing row into notFound and wraps everything else.
func mapReadError(err error, notFound error, id string, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return apperrors.NewAppError(500, "failed to "+action, err)
}
