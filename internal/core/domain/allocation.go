package domain

import (
	"fmt"
	"sort"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AllocationStrategy names how an invoice payment was spread over expenses.
type AllocationStrategy string

const (
	AllocationFIFO   AllocationStrategy = "fifo"
	AllocationManual AllocationStrategy = "manual"
	AllocationNone   AllocationStrategy = "none"
)

// AllocationLine is the share of a payment applied to one expense.
type AllocationLine struct {
	ExpenseID string          `json:"expenseID"`
	Amount    decimal.Decimal `json:"amount"`
}

// AllocationPlan is the full distribution of a payment. The line amounts
// always sum to Total.
type AllocationPlan struct {
	Strategy AllocationStrategy `json:"strategy"`
	Total    decimal.Decimal    `json:"total"`
	Lines    []AllocationLine   `json:"lines"`
}

// SortFIFO orders expenses oldest first, ties broken by ID.
func SortFIFO(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		di, dj := CalendarDate(expenses[i].ExpenseDate), CalendarDate(expenses[j].ExpenseDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return expenses[i].ExpenseID < expenses[j].ExpenseID
	})
}

// PlanFIFOAllocation greedily covers amount with the candidates' remaining
// balances, oldest first. The candidates slice is not modified.
func PlanFIFOAllocation(amount decimal.Decimal, candidates []Expense) (AllocationPlan, error) {
	if err := ValidateAmount(amount); err != nil {
		return AllocationPlan{}, err
	}

	ordered := make([]Expense, len(candidates))
	copy(ordered, candidates)
	SortFIFO(ordered)

	left := amount
	lines := make([]AllocationLine, 0, len(ordered))
	for _, exp := range ordered {
		if !left.IsPositive() {
			break
		}
		rem := exp.Remaining()
		if !rem.IsPositive() {
			continue
		}
		take := MinAmount(left, rem)
		lines = append(lines, AllocationLine{ExpenseID: exp.ExpenseID, Amount: take})
		left = left.Sub(take)
	}

	if left.IsPositive() {
		return AllocationPlan{}, fmt.Errorf("%w: payment of %s exceeds %s outstanding on %d candidate expenses",
			apperrors.ErrAllocationMismatch, FormatAmount(amount), FormatAmount(amount.Sub(left)), len(candidates))
	}
	return AllocationPlan{Strategy: AllocationFIFO, Total: amount, Lines: lines}, nil
}

// ValidateManualAllocation checks a caller-supplied plan against the
// candidates: every line must be positive, target a known expense once, fit
// its remaining balance, and all lines must sum to amount.
func ValidateManualAllocation(amount decimal.Decimal, lines []AllocationLine, candidates []Expense) (AllocationPlan, error) {
	if err := ValidateAmount(amount); err != nil {
		return AllocationPlan{}, err
	}
	byID := make(map[string]Expense, len(candidates))
	for _, c := range candidates {
		byID[c.ExpenseID] = c
	}

	seen := make(map[string]struct{}, len(lines))
	sum := decimal.Zero
	out := make([]AllocationLine, 0, len(lines))
	for _, l := range lines {
		if err := ValidateAmount(l.Amount); err != nil {
			return AllocationPlan{}, err
		}
		exp, ok := byID[l.ExpenseID]
		if !ok {
			return AllocationPlan{}, fmt.Errorf("%w: %s is not a settlement candidate", apperrors.ErrExpenseNotFound, l.ExpenseID)
		}
		if _, dup := seen[l.ExpenseID]; dup {
			return AllocationPlan{}, fmt.Errorf("%w: expense %s appears twice in the allocation", apperrors.ErrValidation, l.ExpenseID)
		}
		seen[l.ExpenseID] = struct{}{}
		if l.Amount.GreaterThan(exp.Remaining()) {
			return AllocationPlan{}, fmt.Errorf("%w: expense %s has %s remaining, %s allocated",
				apperrors.ErrOverPayment, exp.ExpenseID, FormatAmount(exp.Remaining()), FormatAmount(l.Amount))
		}
		sum = sum.Add(l.Amount)
		out = append(out, l)
	}

	if !sum.Equal(amount) {
		return AllocationPlan{}, fmt.Errorf("%w: allocation lines sum to %s, payment is %s",
			apperrors.ErrAllocationMismatch, FormatAmount(sum), FormatAmount(amount))
	}
	return AllocationPlan{Strategy: AllocationManual, Total: amount, Lines: out}, nil
}

// Sum totals the plan's lines.
func (p AllocationPlan) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		total = total.Add(l.Amount)
	}
	return total
}
