package mapping

import (
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/models"
)

// ToModelBankTransaction converts a domain BankTransaction to a model BankTransaction
func ToModelBankTransaction(d domain.BankTransaction) models.BankTransaction {
	return models.BankTransaction{
		TransactionID:           d.TransactionID,
		AccountID:               d.AccountID,
		Seq:                     d.Seq,
		TransactionType:         string(d.TransactionType),
		Amount:                  d.Amount,
		TransactionDate:         d.TransactionDate,
		Description:             d.Description,
		Category:                string(d.Category),
		BalanceAfter:            d.BalanceAfter,
		RelatedExpenseID:        d.RelatedExpenseID,
		RelatedIncomeID:         d.RelatedIncomeID,
		RelatedInvoicePaymentID: d.RelatedInvoicePaymentID,
		RelatedTransferID:       d.RelatedTransferID,
		CreatedAt:               d.CreatedAt,
		CreatedBy:               d.CreatedBy,
	}
}

// ToDomainBankTransaction converts a model BankTransaction to a domain BankTransaction
func ToDomainBankTransaction(m models.BankTransaction) domain.BankTransaction {
	return domain.BankTransaction{
		TransactionID:   m.TransactionID,
		AccountID:       m.AccountID,
		Seq:             m.Seq,
		TransactionType: domain.BankTransactionType(m.TransactionType),
		Amount:          m.Amount,
		TransactionDate: domain.CalendarDate(m.TransactionDate),
		Description:     m.Description,
		Category:        domain.TransactionCategory(m.Category),
		BalanceAfter:    m.BalanceAfter,
		RelatedRefs: domain.RelatedRefs{
			RelatedExpenseID:        m.RelatedExpenseID,
			RelatedIncomeID:         m.RelatedIncomeID,
			RelatedInvoicePaymentID: m.RelatedInvoicePaymentID,
			RelatedTransferID:       m.RelatedTransferID,
		},
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

// ToDomainBankTransactionSlice converts a slice of model BankTransactions
func ToDomainBankTransactionSlice(ms []models.BankTransaction) []domain.BankTransaction {
	ds := make([]domain.BankTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBankTransaction(m)
	}
	return ds
}
