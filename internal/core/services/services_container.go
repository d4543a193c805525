package services

import (
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The ledger is created first; the expense and invoice services book
	// their cash movements through it.
	container.Ledger = NewLedgerService(repos.TxManager, repos.AccountRepo, repos.TransactionRepo, opts...)

	container.Expense = NewExpenseService(repos.TxManager, repos.ExpenseRepo, repos.InvoiceRepo, container.Ledger, opts...)
	container.Invoice = NewInvoiceService(repos.TxManager, repos.InvoiceRepo, repos.ExpenseRepo, repos.AccountRepo, repos.TransactionRepo, container.Ledger, opts...)
	container.Audit = NewAuditService(repos.TxManager, repos.AuditRepo, cfg.AuditDuplicateWindowDays, opts...)

	return container
}
