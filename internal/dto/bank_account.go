package dto

import (
	"time"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBankAccountRequest defines the data needed to open a bank account.
// Accounts start at zero; an opening balance is recorded as a deposit.
type CreateBankAccountRequest struct {
	Name         string                 `json:"name" binding:"required"`
	AccountType  domain.BankAccountType `json:"accountType" binding:"required,oneof=checking savings cash credit_card"`
	CurrencyCode string                 `json:"currencyCode" binding:"omitempty,len=3"`
}

// BankAccountResponse defines the data returned for a bank account.
type BankAccountResponse struct {
	AccountID      string                 `json:"accountID"`
	Name           string                 `json:"name"`
	AccountType    domain.BankAccountType `json:"accountType"`
	CurrencyCode   string                 `json:"currencyCode"`
	CurrentBalance decimal.Decimal        `json:"currentBalance"`
	IsActive       bool                   `json:"isActive"`
	CreatedAt      time.Time              `json:"createdAt"`
	CreatedBy      string                 `json:"createdBy"`
	LastUpdatedAt  time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy  string                 `json:"lastUpdatedBy"`
}

// ToBankAccountResponse converts a domain.BankAccount to its response DTO.
func ToBankAccountResponse(acc *domain.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		AccountID:      acc.AccountID,
		Name:           acc.Name,
		AccountType:    acc.AccountType,
		CurrencyCode:   acc.CurrencyCode,
		CurrentBalance: acc.CurrentBalance,
		IsActive:       acc.IsActive,
		CreatedAt:      acc.CreatedAt,
		CreatedBy:      acc.CreatedBy,
		LastUpdatedAt:  acc.LastUpdatedAt,
		LastUpdatedBy:  acc.LastUpdatedBy,
	}
}

// ToListBankAccountResponse converts a slice of domain.BankAccount.
func ToListBankAccountResponse(accounts []domain.BankAccount) []BankAccountResponse {
	res := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToBankAccountResponse(&accounts[i])
	}
	return res
}

// AccountBalanceResponse defines the data returned for a balance query.
// Recomputed and Drift are only set when the caller asked for a recompute.
type AccountBalanceResponse struct {
	AccountID  string           `json:"accountID"`
	Balance    decimal.Decimal  `json:"balance"`
	Recomputed *decimal.Decimal `json:"recomputed,omitempty"`
	Drift      *decimal.Decimal `json:"drift,omitempty"`
}

// GetBalanceParams defines query parameters for the balance endpoint.
type GetBalanceParams struct {
	Recompute bool `form:"recompute"`
}
