package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDuplicateWindowDays is the date window used to cluster look-alike expenses.
const DefaultDuplicateWindowDays = 3

// BalanceDrift is an account whose cached balance disagrees with its log.
type BalanceDrift struct {
	AccountID  string          `json:"accountID"`
	Cached     decimal.Decimal `json:"cached"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Difference decimal.Decimal `json:"difference"`
}

// DuplicateExpenseGroup is a cluster of expenses that share vendor, amount
// and description and fall within the duplicate window of each other.
type DuplicateExpenseGroup struct {
	Vendor      string          `json:"vendor"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ExpenseIDs  []string        `json:"expenseIDs"`
	FirstDate   time.Time       `json:"firstDate"`
	LastDate    time.Time       `json:"lastDate"`
}

// AuditSubject names the entity a finding refers to.
type AuditSubject string

const (
	SubjectInvoice AuditSubject = "invoice"
	SubjectExpense AuditSubject = "expense"
)

// AllocationOverrun is an invoice or expense whose links exceed its total.
type AllocationOverrun struct {
	Subject AuditSubject    `json:"subject"`
	ID      string          `json:"id"`
	Limit   decimal.Decimal `json:"limit"`
	Applied decimal.Decimal `json:"applied"`
}

// PaidAmountDrift is a stored paid amount that disagrees with the records
// that should add up to it.
type PaidAmountDrift struct {
	Subject  AuditSubject    `json:"subject"`
	ID       string          `json:"id"`
	Field    string          `json:"field"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
}

// AuditReport is the result of one reconciliation pass.
type AuditReport struct {
	BalanceDrifts      []BalanceDrift          `json:"balanceDrifts"`
	PossibleDuplicates []DuplicateExpenseGroup `json:"possibleDuplicates"`
	AllocationOverruns []AllocationOverrun     `json:"allocationOverruns"`
	PaidAmountDrifts   []PaidAmountDrift       `json:"paidAmountDrifts"`
	GeneratedAt        time.Time               `json:"generatedAt"`
}

// HasFindings reports whether any check produced an entry.
func (r AuditReport) HasFindings() bool {
	return r.FindingCount() > 0
}

// FindingCount is the total number of entries over all checks.
func (r AuditReport) FindingCount() int {
	return len(r.BalanceDrifts) + len(r.PossibleDuplicates) + len(r.AllocationOverruns) + len(r.PaidAmountDrifts)
}

// AuditSnapshot is everything the checks read, loaded from one consistent view.
// The sum maps are keyed by entity ID; missing keys mean zero.
type AuditSnapshot struct {
	Accounts            []BankAccount
	RecomputedBalances  map[string]decimal.Decimal
	Expenses            []Expense
	Invoices            []SupplierInvoice
	LinkSumByInvoice    map[string]decimal.Decimal
	LinkSumByExpense    map[string]decimal.Decimal
	PaymentSumByInvoice map[string]decimal.Decimal
	DirectSumByExpense  map[string]decimal.Decimal
}

func sumOf(m map[string]decimal.Decimal, id string) decimal.Decimal {
	if v, ok := m[id]; ok {
		return v
	}
	return decimal.Zero
}

// BuildAuditReport runs every check over the snapshot. It does not modify it.
func BuildAuditReport(s AuditSnapshot, windowDays int, now time.Time) AuditReport {
	return AuditReport{
		BalanceDrifts:      FindBalanceDrifts(s),
		PossibleDuplicates: FindPossibleDuplicates(s.Expenses, windowDays),
		AllocationOverruns: FindAllocationOverruns(s),
		PaidAmountDrifts:   FindPaidAmountDrifts(s),
		GeneratedAt:        now,
	}
}

// FindBalanceDrifts compares each cached balance to its recomputed value.
func FindBalanceDrifts(s AuditSnapshot) []BalanceDrift {
	drifts := []BalanceDrift{}
	for _, a := range s.Accounts {
		rec := sumOf(s.RecomputedBalances, a.AccountID)
		if !a.CurrentBalance.Equal(rec) {
			drifts = append(drifts, BalanceDrift{
				AccountID:  a.AccountID,
				Cached:     a.CurrentBalance,
				Recomputed: rec,
				Difference: a.CurrentBalance.Sub(rec),
			})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].AccountID < drifts[j].AccountID })
	return drifts
}

type duplicateKey struct {
	vendor      string
	amount      string
	description string
}

// FindPossibleDuplicates groups expenses by case-insensitive vendor and
// description plus exact amount, then splits each group wherever two
// consecutive dates are more than windowDays apart.
func FindPossibleDuplicates(expenses []Expense, windowDays int) []DuplicateExpenseGroup {
	if windowDays < 0 {
		windowDays = 0
	}
	groups := make(map[duplicateKey][]Expense)
	for _, e := range expenses {
		k := duplicateKey{
			vendor:      strings.ToLower(strings.TrimSpace(e.Vendor)),
			amount:      FormatAmount(e.Amount),
			description: strings.ToLower(strings.TrimSpace(e.Description)),
		}
		groups[k] = append(groups[k], e)
	}

	window := time.Duration(windowDays) * 24 * time.Hour
	found := []DuplicateExpenseGroup{}
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		SortFIFO(members)
		cluster := []Expense{members[0]}
		flush := func() {
			if len(cluster) > 1 {
				found = append(found, newDuplicateGroup(cluster))
			}
		}
		for _, e := range members[1:] {
			prev := CalendarDate(cluster[len(cluster)-1].ExpenseDate)
			if CalendarDate(e.ExpenseDate).Sub(prev) <= window {
				cluster = append(cluster, e)
				continue
			}
			flush()
			cluster = []Expense{e}
		}
		flush()
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].FirstDate.Equal(found[j].FirstDate) {
			return found[i].FirstDate.Before(found[j].FirstDate)
		}
		return found[i].ExpenseIDs[0] < found[j].ExpenseIDs[0]
	})
	return found
}

func newDuplicateGroup(cluster []Expense) DuplicateExpenseGroup {
	ids := make([]string, len(cluster))
	for i, e := range cluster {
		ids[i] = e.ExpenseID
	}
	return DuplicateExpenseGroup{
		Vendor:      cluster[0].Vendor,
		Amount:      cluster[0].Amount,
		Description: cluster[0].Description,
		ExpenseIDs:  ids,
		FirstDate:   CalendarDate(cluster[0].ExpenseDate),
		LastDate:    CalendarDate(cluster[len(cluster)-1].ExpenseDate),
	}
}

// FindAllocationOverruns reports invoices and expenses whose links sum past their totals.
func FindAllocationOverruns(s AuditSnapshot) []AllocationOverrun {
	overruns := []AllocationOverrun{}
	for _, inv := range s.Invoices {
		applied := sumOf(s.LinkSumByInvoice, inv.InvoiceID)
		if applied.GreaterThan(inv.TotalAmount) {
			overruns = append(overruns, AllocationOverrun{Subject: SubjectInvoice, ID: inv.InvoiceID, Limit: inv.TotalAmount, Applied: applied})
		}
	}
	for _, exp := range s.Expenses {
		applied := sumOf(s.LinkSumByExpense, exp.ExpenseID)
		if applied.GreaterThan(exp.Amount) {
			overruns = append(overruns, AllocationOverrun{Subject: SubjectExpense, ID: exp.ExpenseID, Limit: exp.Amount, Applied: applied})
		}
	}
	sort.Slice(overruns, func(i, j int) bool {
		if overruns[i].Subject != overruns[j].Subject {
			return overruns[i].Subject < overruns[j].Subject
		}
		return overruns[i].ID < overruns[j].ID
	})
	return overruns
}

// FindPaidAmountDrifts checks stored paid amounts against links, direct
// withdrawals and invoice payments.
func FindPaidAmountDrifts(s AuditSnapshot) []PaidAmountDrift {
	drifts := []PaidAmountDrift{}
	for _, exp := range s.Expenses {
		linked := sumOf(s.LinkSumByExpense, exp.ExpenseID)
		if !exp.InvoicePaidAmount.Equal(linked) {
			drifts = append(drifts, PaidAmountDrift{Subject: SubjectExpense, ID: exp.ExpenseID, Field: "invoicePaidAmount", Stored: exp.InvoicePaidAmount, Expected: linked})
		}
		expected := linked.Add(sumOf(s.DirectSumByExpense, exp.ExpenseID))
		if !exp.PaidAmount.Equal(expected) {
			drifts = append(drifts, PaidAmountDrift{Subject: SubjectExpense, ID: exp.ExpenseID, Field: "paidAmount", Stored: exp.PaidAmount, Expected: expected})
		}
	}
	for _, inv := range s.Invoices {
		paid := sumOf(s.PaymentSumByInvoice, inv.InvoiceID)
		if !inv.PaidAmount.Equal(paid) {
			drifts = append(drifts, PaidAmountDrift{Subject: SubjectInvoice, ID: inv.InvoiceID, Field: "paidAmount", Stored: inv.PaidAmount, Expected: paid})
		}
	}
	sort.Slice(drifts, func(i, j int) bool {
		if drifts[i].Subject != drifts[j].Subject {
			return drifts[i].Subject < drifts[j].Subject
		}
		if drifts[i].ID != drifts[j].ID {
			return drifts[i].ID < drifts[j].ID
		}
		return drifts[i].Field < drifts[j].Field
	})
	return drifts
}
