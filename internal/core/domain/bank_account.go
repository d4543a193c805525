package domain

import (
	"fmt"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BankAccountType classifies where money is held.
type BankAccountType string

const (
	Checking   BankAccountType = "checking"
	Savings    BankAccountType = "savings"
	Cash       BankAccountType = "cash"
	CreditCard BankAccountType = "credit_card"
)

// Valid reports whether t is a known account type.
func (t BankAccountType) Valid() bool {
	switch t {
	case Checking, Savings, Cash, CreditCard:
		return true
	}
	return false
}

// BankAccount is a place money lives in. CurrentBalance is a cache of the
// signed sum of the account's transaction log.
type BankAccount struct {
	AccountID      string          `json:"accountID"`
	Name           string          `json:"name"`
	AccountType    BankAccountType `json:"accountType"`
	CurrencyCode   string          `json:"currencyCode"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// IsRevolvingCredit reports whether the account is a credit card.
func (a BankAccount) IsRevolvingCredit() bool {
	return a.AccountType == CreditCard
}

// EnsureUsable returns an error when the account cannot take new transactions.
func (a BankAccount) EnsureUsable() error {
	if !a.IsActive {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, a.AccountID)
	}
	return nil
}
