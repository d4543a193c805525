package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is a row of the append-only bank_transactions log.
type BankTransaction struct {
	TransactionID           string          `db:"transaction_id"`
	AccountID               string          `db:"account_id"`
	Seq                     int64           `db:"seq"`
	TransactionType         string          `db:"transaction_type"`
	Amount                  decimal.Decimal `db:"amount"`
	TransactionDate         time.Time       `db:"transaction_date"`
	Description             string          `db:"description"`
	Category                string          `db:"category"`
	BalanceAfter            decimal.Decimal `db:"balance_after"`
	RelatedExpenseID        *string         `db:"related_expense_id"`
	RelatedIncomeID         *string         `db:"related_income_id"`
	RelatedInvoicePaymentID *string         `db:"related_invoice_payment_id"`
	RelatedTransferID       *string         `db:"related_transfer_id"`
	CreatedAt               time.Time       `db:"created_at"`
	CreatedBy               string          `db:"created_by"`
}
