package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxFunc is a unit of work executed inside a database transaction.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// TransactionManager runs units of work inside database transactions.
type TransactionManager interface {
	// RunInTx executes fn in a serializable read-write transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Serialization failures are retried, so fn may run more than once.
	RunInTx(ctx context.Context, fn TxFunc) error

	// RunReadOnlyTx executes fn against one consistent read-only snapshot.
	RunReadOnlyTx(ctx context.Context, fn TxFunc) error
}
