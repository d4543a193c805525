package dto

import (
	"time"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordTransactionRequest defines a manual deposit or withdrawal.
// Transfers go through TransferRequest and expense payments through
// PayExpenseRequest, so neither can be linked here.
type RecordTransactionRequest struct {
	TransactionType domain.BankTransactionType `json:"transactionType" binding:"required,oneof=deposit withdrawal"`
	Amount          decimal.Decimal            `json:"amount" binding:"required,money"`
	TransactionDate string                     `json:"transactionDate" binding:"required,datetime=2006-01-02"`
	Description     string                     `json:"description"`
	Category        domain.TransactionCategory `json:"category" binding:"omitempty,oneof=expense credit_card_payment income adjustment other"`
	RelatedIncomeID *string                    `json:"relatedIncomeID"`
}

// TransferRequest moves money between two accounts.
type TransferRequest struct {
	FromAccountID   string          `json:"fromAccountID" binding:"required"`
	ToAccountID     string          `json:"toAccountID" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required,money"`
	TransactionDate string          `json:"transactionDate" binding:"required,datetime=2006-01-02"`
	Description     string          `json:"description"`
}

// BankTransactionResponse defines the data returned for a log entry.
type BankTransactionResponse struct {
	TransactionID           string                     `json:"transactionID"`
	AccountID               string                     `json:"accountID"`
	Seq                     int64                      `json:"seq"`
	TransactionType         domain.BankTransactionType `json:"transactionType"`
	Amount                  decimal.Decimal            `json:"amount"`
	TransactionDate         string                     `json:"transactionDate"`
	Description             string                     `json:"description"`
	Category                domain.TransactionCategory `json:"category"`
	BalanceAfter            decimal.Decimal            `json:"balanceAfter"`
	RelatedExpenseID        *string                    `json:"relatedExpenseID,omitempty"`
	RelatedIncomeID         *string                    `json:"relatedIncomeID,omitempty"`
	RelatedInvoicePaymentID *string                    `json:"relatedInvoicePaymentID,omitempty"`
	RelatedTransferID       *string                    `json:"relatedTransferID,omitempty"`
	CreatedAt               time.Time                  `json:"createdAt"`
	CreatedBy               string                     `json:"createdBy"`
}

// ToBankTransactionResponse converts a domain.BankTransaction to its response DTO.
func ToBankTransactionResponse(txn *domain.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		TransactionID:           txn.TransactionID,
		AccountID:               txn.AccountID,
		Seq:                     txn.Seq,
		TransactionType:         txn.TransactionType,
		Amount:                  txn.Amount,
		TransactionDate:         txn.TransactionDate.Format(domain.DateLayout),
		Description:             txn.Description,
		Category:                txn.Category,
		BalanceAfter:            txn.BalanceAfter,
		RelatedExpenseID:        txn.RelatedExpenseID,
		RelatedIncomeID:         txn.RelatedIncomeID,
		RelatedInvoicePaymentID: txn.RelatedInvoicePaymentID,
		RelatedTransferID:       txn.RelatedTransferID,
		CreatedAt:               txn.CreatedAt,
		CreatedBy:               txn.CreatedBy,
	}
}

// ToBankTransactionResponses converts a slice of domain.BankTransaction.
func ToBankTransactionResponses(txns []domain.BankTransaction) []BankTransactionResponse {
	res := make([]BankTransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToBankTransactionResponse(&txns[i])
	}
	return res
}

// TransferResponse holds both legs of a transfer.
type TransferResponse struct {
	TransferID string                  `json:"transferID"`
	Out        BankTransactionResponse `json:"out"`
	In         BankTransactionResponse `json:"in"`
}

// ListTransactionsParams defines query parameters for an account's log.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is one page of an account's log.
type ListTransactionsResponse struct {
	Transactions []BankTransactionResponse `json:"transactions"`
	NextToken    *string                   `json:"nextToken,omitempty"`
}
