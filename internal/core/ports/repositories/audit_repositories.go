package repositories

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AuditRepository loads everything the reconciliation checks read.
type AuditRepository interface {
	LoadAuditSnapshot(ctx context.Context, tx pgx.Tx) (domain.AuditSnapshot, error)
}
