package models

import "github.com/shopspring/decimal"

// BankAccount is a row of bank_accounts.
type BankAccount struct {
	AccountID      string          `db:"account_id"`
	Name           string          `db:"name"`
	AccountType    string          `db:"account_type"`
	CurrencyCode   string          `db:"currency_code"`
	CurrentBalance decimal.Decimal `db:"current_balance"` // cached; bank_transactions is authoritative
	IsActive       bool            `db:"is_active"`
	AuditFields
}
