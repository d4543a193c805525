package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BankTransactionType is the direction of a cash movement on one account.
type BankTransactionType string

const (
	Deposit     BankTransactionType = "deposit"
	Withdrawal  BankTransactionType = "withdrawal"
	TransferIn  BankTransactionType = "transfer_in"
	TransferOut BankTransactionType = "transfer_out"
)

// Valid reports whether t is a known transaction type.
func (t BankTransactionType) Valid() bool {
	switch t {
	case Deposit, Withdrawal, TransferIn, TransferOut:
		return true
	}
	return false
}

// IsTransfer reports whether t is one leg of a transfer.
func (t BankTransactionType) IsTransfer() bool {
	return t == TransferIn || t == TransferOut
}

// Sign returns +1 for inflows and -1 for outflows.
func (t BankTransactionType) Sign() int64 {
	if t == Deposit || t == TransferIn {
		return 1
	}
	return -1
}

// TransactionCategory classifies the economic event behind a transaction.
type TransactionCategory string

const (
	CategoryExpense           TransactionCategory = "expense"
	CategoryCreditCardPayment TransactionCategory = "credit_card_payment"
	CategoryTransfer          TransactionCategory = "transfer"
	CategoryIncome            TransactionCategory = "income"
	CategoryAdjustment        TransactionCategory = "adjustment"
	CategoryOther             TransactionCategory = "other"
)

// RelatedRefs links a transaction to the event that caused it.
type RelatedRefs struct {
	RelatedExpenseID        *string `json:"relatedExpenseID,omitempty"`
	RelatedIncomeID         *string `json:"relatedIncomeID,omitempty"`
	RelatedInvoicePaymentID *string `json:"relatedInvoicePaymentID,omitempty"`
	RelatedTransferID       *string `json:"relatedTransferID,omitempty"`
}

// BankTransaction is one immutable entry of an account's log. Corrections are
// new offsetting entries.
type BankTransaction struct {
	TransactionID   string              `json:"transactionID"`
	AccountID       string              `json:"accountID"`
	Seq             int64               `json:"seq"`
	TransactionType BankTransactionType `json:"transactionType"`
	Amount          decimal.Decimal     `json:"amount"`
	TransactionDate time.Time           `json:"transactionDate"`
	Description     string              `json:"description"`
	Category        TransactionCategory `json:"category"`
	BalanceAfter    decimal.Decimal     `json:"balanceAfter"`
	RelatedRefs
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// SignedAmount is the effect of the transaction on its account balance.
func (t BankTransaction) SignedAmount() decimal.Decimal {
	if t.TransactionType.Sign() < 0 {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Validate checks the fields every log entry needs before it is appended.
func (t BankTransaction) Validate() error {
	if !t.TransactionType.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, t.TransactionType)
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if t.AccountID == "" {
		return fmt.Errorf("%w: account ID is required", apperrors.ErrValidation)
	}
	if t.TransactionType.IsTransfer() && t.RelatedTransferID == nil {
		return fmt.Errorf("%w: transfer legs require a related transfer ID", apperrors.ErrValidation)
	}
	return nil
}

// FoldBalance recomputes a balance from zero over a transaction log.
func FoldBalance(txns []BankTransaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txns {
		balance = balance.Add(t.SignedAmount())
	}
	return balance
}
