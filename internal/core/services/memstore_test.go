package services_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/contractor_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/contractor_ledger/internal/events"
)

// memStore implements every repository port in memory. RunInTx holds one
// lock for the whole unit of work and restores a snapshot when it fails, so
// it behaves like a fully serialized database. Methods ending in InTx or
// ForUpdate must only be called inside RunInTx; the others take the lock.
type memStore struct {
	mu       sync.Mutex
	seq      int64
	accounts map[string]domain.BankAccount
	txns     []domain.BankTransaction
	expenses map[string]domain.Expense
	invoices map[string]domain.SupplierInvoice
	payments []domain.InvoicePayment
	links    []domain.InvoiceExpenseLink
	txCount  int
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]domain.BankAccount{},
		expenses: map[string]domain.Expense{},
		invoices: map[string]domain.SupplierInvoice{},
	}
}

var (
	_ portsrepo.TransactionManager              = (*memStore)(nil)
	_ portsrepo.BankAccountRepositoryFacade     = (*memStore)(nil)
	_ portsrepo.BankTransactionRepositoryFacade = (*memStore)(nil)
	_ portsrepo.ExpenseRepositoryFacade         = (*memStore)(nil)
	_ portsrepo.InvoiceRepositoryFacade         = (*memStore)(nil)
	_ portsrepo.AuditRepository                 = (*memStore)(nil)
)

func (m *memStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       m,
		AccountRepo:     m,
		TransactionRepo: m,
		ExpenseRepo:     m,
		InvoiceRepo:     m,
		AuditRepo:       m,
	}
}

type memSnapshot struct {
	seq      int64
	accounts map[string]domain.BankAccount
	txns     []domain.BankTransaction
	expenses map[string]domain.Expense
	invoices map[string]domain.SupplierInvoice
	payments []domain.InvoicePayment
	links    []domain.InvoiceExpenseLink
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		seq:      m.seq,
		accounts: make(map[string]domain.BankAccount, len(m.accounts)),
		txns:     append([]domain.BankTransaction(nil), m.txns...),
		expenses: make(map[string]domain.Expense, len(m.expenses)),
		invoices: make(map[string]domain.SupplierInvoice, len(m.invoices)),
		payments: append([]domain.InvoicePayment(nil), m.payments...),
		links:    append([]domain.InvoiceExpenseLink(nil), m.links...),
	}
	for k, v := range m.accounts {
		s.accounts[k] = v
	}
	for k, v := range m.expenses {
		s.expenses[k] = v
	}
	for k, v := range m.invoices {
		s.invoices[k] = v
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.seq = s.seq
	m.accounts = s.accounts
	m.txns = s.txns
	m.expenses = s.expenses
	m.invoices = s.invoices
	m.payments = s.payments
	m.links = s.links
}

func (m *memStore) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++
	snap := m.snapshot()
	if err := fn(ctx, nil); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) RunReadOnlyTx(ctx context.Context, fn portsrepo.TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	err := fn(ctx, nil)
	m.restore(snap)
	return err
}

// --- bank accounts ---

func (m *memStore) FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return &a, nil
}

func (m *memStore) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.BankAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.BankAccount, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (m *memStore) ComputeAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.foldBalance(accountID), nil
}

func (m *memStore) foldBalance(accountID string) decimal.Decimal {
	var own []domain.BankTransaction
	for _, t := range m.txns {
		if t.AccountID == accountID {
			own = append(own, t)
		}
	}
	return domain.FoldBalance(own)
}

func (m *memStore) SaveAccount(ctx context.Context, account domain.BankAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.AccountID]; ok {
		return apperrors.ErrDuplicate
	}
	m.accounts[account.AccountID] = account
	return nil
}

func (m *memStore) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.BankAccount, error) {
	out := make(map[string]domain.BankAccount, len(accountIDs))
	for _, id := range accountIDs {
		a, ok := m.accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		out[id] = a
	}
	return out, nil
}

func (m *memStore) UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	a, ok := m.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	a.CurrentBalance = balance
	a.Touch(userID, now)
	m.accounts[accountID] = a
	return nil
}

// --- bank transactions ---

func (m *memStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.TransactionID == transactionID {
			t := t
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
}

func (m *memStore) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.BankTransaction, *string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var before int64 = 1<<63 - 1
	if nextToken != nil && *nextToken != "" {
		v, err := strconv.ParseInt(*nextToken, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		before = v
	}
	var out []domain.BankTransaction
	for i := len(m.txns) - 1; i >= 0; i-- {
		t := m.txns[i]
		if t.AccountID == accountID && t.Seq < before {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[:limit]
		token := strconv.FormatInt(out[len(out)-1].Seq, 10)
		return out, &token, nil
	}
	return out, nil, nil
}

func (m *memStore) AppendTransactionInTx(ctx context.Context, tx pgx.Tx, txn *domain.BankTransaction) error {
	m.seq++
	txn.Seq = m.seq
	m.txns = append(m.txns, *txn)
	return nil
}

// --- expenses ---

func (m *memStore) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrExpenseNotFound, expenseID)
	}
	return &e, nil
}

func (m *memStore) ListExpenses(ctx context.Context, filter portsrepo.ExpenseFilter, limit int, offset int) ([]domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Expense
	for _, e := range m.expenses {
		if filter.Vendor != "" && !strings.EqualFold(e.Vendor, filter.Vendor) {
			continue
		}
		if filter.Status != "" && e.PaymentStatus != filter.Status {
			continue
		}
		if filter.WorkID != "" && (e.WorkID == nil || *e.WorkID != filter.WorkID) {
			continue
		}
		out = append(out, e)
	}
	domain.SortFIFO(out)
	return page(out, limit, offset), nil
}

func (m *memStore) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ExpenseID] = expense
	return nil
}

func (m *memStore) FindExpensesByIDsForUpdate(ctx context.Context, tx pgx.Tx, expenseIDs []string) (map[string]domain.Expense, error) {
	out := make(map[string]domain.Expense, len(expenseIDs))
	for _, id := range expenseIDs {
		e, ok := m.expenses[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrExpenseNotFound, id)
		}
		out[id] = e
	}
	return out, nil
}

func (m *memStore) FindSettlementCandidatesForUpdate(ctx context.Context, tx pgx.Tx, vendor string, method domain.PaymentMethod) ([]domain.Expense, error) {
	var out []domain.Expense
	for _, e := range m.expenses {
		if e.IsSettlementCandidate(vendor, method) {
			out = append(out, e)
		}
	}
	domain.SortFIFO(out)
	return out, nil
}

func (m *memStore) UpdateExpensePaymentInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	if _, ok := m.expenses[expense.ExpenseID]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrExpenseNotFound, expense.ExpenseID)
	}
	m.expenses[expense.ExpenseID] = expense
	return nil
}

func (m *memStore) DeleteExpenseInTx(ctx context.Context, tx pgx.Tx, expenseID string) error {
	if _, ok := m.expenses[expenseID]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrExpenseNotFound, expenseID)
	}
	delete(m.expenses, expenseID)
	return nil
}

// --- invoices ---

func (m *memStore) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.SupplierInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findInvoice(invoiceID)
}

func (m *memStore) findInvoice(invoiceID string) (*domain.SupplierInvoice, error) {
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvoiceNotFound, invoiceID)
	}
	return &inv, nil
}

func (m *memStore) ListInvoices(ctx context.Context, filter portsrepo.InvoiceFilter, limit int, offset int) ([]domain.SupplierInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SupplierInvoice
	for _, inv := range m.invoices {
		if filter.Vendor != "" && !strings.EqualFold(inv.Vendor, filter.Vendor) {
			continue
		}
		if filter.Status != "" && inv.PaymentStatus != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceID < out[j].InvoiceID })
	return page(out, limit, offset), nil
}

func (m *memStore) ListLinksByInvoice(ctx context.Context, invoiceID string) ([]domain.InvoiceExpenseLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FindLinksByInvoiceInTx(ctx, nil, invoiceID)
}

func (m *memStore) ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]domain.InvoicePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FindPaymentsByInvoiceInTx(ctx, nil, invoiceID)
}

func (m *memStore) SaveInvoice(ctx context.Context, invoice domain.SupplierInvoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SaveInvoiceInTx(ctx, nil, invoice)
}

func (m *memStore) SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.SupplierInvoice) error {
	m.invoices[invoice.InvoiceID] = invoice
	return nil
}

func (m *memStore) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.SupplierInvoice, error) {
	return m.findInvoice(invoiceID)
}

func (m *memStore) UpdateInvoiceStateInTx(ctx context.Context, tx pgx.Tx, invoice domain.SupplierInvoice) error {
	if _, ok := m.invoices[invoice.InvoiceID]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrInvoiceNotFound, invoice.InvoiceID)
	}
	m.invoices[invoice.InvoiceID] = invoice
	return nil
}

func (m *memStore) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.InvoicePayment) error {
	for _, p := range m.payments {
		if p.InvoiceID == payment.InvoiceID && p.IdempotencyKey != nil && payment.IdempotencyKey != nil && *p.IdempotencyKey == *payment.IdempotencyKey {
			return apperrors.ErrDuplicate
		}
	}
	m.payments = append(m.payments, payment)
	return nil
}

func (m *memStore) FindPaymentsByInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoicePayment, error) {
	var out []domain.InvoicePayment
	for _, p := range m.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) SaveLinksInTx(ctx context.Context, tx pgx.Tx, links []domain.InvoiceExpenseLink) error {
	for _, l := range links {
		if l.InvoicePaymentID != nil {
			for _, existing := range m.links {
				if existing.InvoicePaymentID != nil && *existing.InvoicePaymentID == *l.InvoicePaymentID && existing.ExpenseID == l.ExpenseID {
					return apperrors.ErrDuplicate
				}
			}
		}
		m.links = append(m.links, l)
	}
	return nil
}

func (m *memStore) FindLinksByInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoiceExpenseLink, error) {
	var out []domain.InvoiceExpenseLink
	for _, l := range m.links {
		if l.SupplierInvoiceID == invoiceID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) FindLinksByExpenseInTx(ctx context.Context, tx pgx.Tx, expenseID string) ([]domain.InvoiceExpenseLink, error) {
	var out []domain.InvoiceExpenseLink
	for _, l := range m.links {
		if l.ExpenseID == expenseID {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- audit ---

func (m *memStore) LoadAuditSnapshot(ctx context.Context, tx pgx.Tx) (domain.AuditSnapshot, error) {
	s := domain.AuditSnapshot{
		RecomputedBalances:  map[string]decimal.Decimal{},
		LinkSumByInvoice:    map[string]decimal.Decimal{},
		LinkSumByExpense:    map[string]decimal.Decimal{},
		PaymentSumByInvoice: map[string]decimal.Decimal{},
		DirectSumByExpense:  map[string]decimal.Decimal{},
	}
	for id, a := range m.accounts {
		s.Accounts = append(s.Accounts, a)
		s.RecomputedBalances[id] = m.foldBalance(id)
	}
	for _, e := range m.expenses {
		s.Expenses = append(s.Expenses, e)
	}
	for _, inv := range m.invoices {
		s.Invoices = append(s.Invoices, inv)
	}
	for _, l := range m.links {
		s.LinkSumByInvoice[l.SupplierInvoiceID] = s.LinkSumByInvoice[l.SupplierInvoiceID].Add(l.AmountApplied)
		s.LinkSumByExpense[l.ExpenseID] = s.LinkSumByExpense[l.ExpenseID].Add(l.AmountApplied)
	}
	for _, p := range m.payments {
		s.PaymentSumByInvoice[p.InvoiceID] = s.PaymentSumByInvoice[p.InvoiceID].Add(p.Amount)
	}
	for _, t := range m.txns {
		if t.RelatedExpenseID != nil && t.TransactionType == domain.Withdrawal {
			s.DirectSumByExpense[*t.RelatedExpenseID] = s.DirectSumByExpense[*t.RelatedExpenseID].Add(t.Amount)
		}
	}
	return s, nil
}

// --- test helpers ---

// corruptBalance overwrites an account's cached balance outside the ledger.
func (m *memStore) corruptBalance(accountID string, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.accounts[accountID]
	a.CurrentBalance = balance
	m.accounts[accountID] = a
}

func (m *memStore) allLinks() []domain.InvoiceExpenseLink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.InvoiceExpenseLink(nil), m.links...)
}

func (m *memStore) transactionsFor(accountID string) []domain.BankTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BankTransaction
	for _, t := range m.txns {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
