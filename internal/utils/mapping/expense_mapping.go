package mapping

import (
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:             d.ExpenseID,
		Amount:                d.Amount,
		PaidAmount:            d.PaidAmount,
		InvoicePaidAmount:     d.InvoicePaidAmount,
		PaymentStatus:         string(d.PaymentStatus),
		Vendor:                d.Vendor,
		Category:              d.Category,
		Description:           d.Description,
		PaymentMethod:         string(d.PaymentMethod),
		ExpenseDate:           d.ExpenseDate,
		WorkID:                d.WorkID,
		RelatedFixedExpenseID: d.RelatedFixedExpenseID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model Expense to a domain Expense
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:             m.ExpenseID,
		Amount:                m.Amount,
		PaidAmount:            m.PaidAmount,
		InvoicePaidAmount:     m.InvoicePaidAmount,
		PaymentStatus:         domain.ExpenseStatus(m.PaymentStatus),
		Vendor:                m.Vendor,
		Category:              m.Category,
		Description:           m.Description,
		PaymentMethod:         domain.PaymentMethod(m.PaymentMethod),
		ExpenseDate:           domain.CalendarDate(m.ExpenseDate),
		WorkID:                m.WorkID,
		RelatedFixedExpenseID: m.RelatedFixedExpenseID,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainExpenseSlice converts a slice of model Expenses
func ToDomainExpenseSlice(ms []models.Expense) []domain.Expense {
	ds := make([]domain.Expense, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExpense(m)
	}
	return ds
}
