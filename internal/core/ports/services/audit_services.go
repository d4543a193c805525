package services

import (
	"context"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
)

// AuditSvc runs the read-only reconciliation checks.
type AuditSvc interface {
	RunAudit(ctx context.Context) (*domain.AuditReport, error)
}
