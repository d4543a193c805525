package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/events"
)

// auditService runs the reconciliation checks over one consistent snapshot.
// It never writes.
type auditService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	auditRepo  portsrepo.AuditRepository
	windowDays int
}

// NewAuditService creates a new reconciliation auditor. windowDays is the
// date window used to cluster possible duplicate expenses.
func NewAuditService(txManager portsrepo.TransactionManager, auditRepo portsrepo.AuditRepository, windowDays int, opts ...ServiceOption) portssvc.AuditSvc {
	if windowDays < 0 {
		windowDays = domain.DefaultDuplicateWindowDays
	}
	return &auditService{
		BaseService: newBaseService(opts...),
		txManager:   txManager,
		auditRepo:   auditRepo,
		windowDays:  windowDays,
	}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

// RunAudit loads the snapshot and reports every inconsistency it finds.
func (s *auditService) RunAudit(ctx context.Context) (*domain.AuditReport, error) {
	var snapshot domain.AuditSnapshot
	err := s.txManager.RunReadOnlyTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		snapshot, err = s.auditRepo.LoadAuditSnapshot(ctx, tx)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to load audit snapshot")
		return nil, fmt.Errorf("failed to load audit snapshot: %w", err)
	}

	report := domain.BuildAuditReport(snapshot, s.windowDays, s.now())

	logger := s.GetLogger(ctx).With(
		slog.Int("balance_drifts", len(report.BalanceDrifts)),
		slog.Int("possible_duplicates", len(report.PossibleDuplicates)),
		slog.Int("allocation_overruns", len(report.AllocationOverruns)),
		slog.Int("paid_amount_drifts", len(report.PaidAmountDrifts)),
	)
	if report.HasFindings() {
		logger.Warn("Reconciliation audit found inconsistencies")
	} else {
		logger.Info("Reconciliation audit clean")
	}
	return &report, nil
}

// AuditScheduler runs the auditor on a fixed interval and publishes each report.
type AuditScheduler struct {
	BaseService
	audit    portssvc.AuditSvc
	interval time.Duration
}

// NewAuditScheduler creates a scheduler. A non-positive interval makes Run
// return immediately.
func NewAuditScheduler(audit portssvc.AuditSvc, interval time.Duration, opts ...ServiceOption) *AuditScheduler {
	return &AuditScheduler{
		BaseService: newBaseService(opts...),
		audit:       audit,
		interval:    interval,
	}
}

// Run blocks until ctx is done. A failed run is logged and retried on the
// next tick.
func (a *AuditScheduler) Run(ctx context.Context) error {
	if a.interval <= 0 {
		return nil
	}
	a.LogInfo(ctx, "Scheduled reconciliation audit started", slog.Duration("interval", a.interval))

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.LogInfo(ctx, "Scheduled reconciliation audit stopped")
			return nil
		case <-ticker.C:
			a.runOnce(ctx)
		}
	}
}

func (a *AuditScheduler) runOnce(ctx context.Context) {
	report, err := a.audit.RunAudit(ctx)
	if err != nil {
		a.LogError(ctx, err, "Scheduled reconciliation audit failed")
		return
	}
	a.publish(ctx, events.New(events.TypeAuditCompleted, report.GeneratedAt.Format(time.RFC3339), "", report))
}
