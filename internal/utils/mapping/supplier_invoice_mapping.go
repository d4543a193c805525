package mapping

import (
	"time"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/models"
)

// ToModelSupplierInvoice converts a domain SupplierInvoice to a model SupplierInvoice
func ToModelSupplierInvoice(d domain.SupplierInvoice) models.SupplierInvoice {
	return models.SupplierInvoice{
		InvoiceID:       d.InvoiceID,
		Vendor:          d.Vendor,
		InvoiceNumber:   d.InvoiceNumber,
		TotalAmount:     d.TotalAmount,
		PaidAmount:      d.PaidAmount,
		PaymentStatus:   string(d.PaymentStatus),
		TransactionType: string(d.TransactionType),
		IssueDate:       d.IssueDate,
		DueDate:         d.DueDate,
		PaymentMethod:   string(d.PaymentMethod),
		CreditAccountID: d.CreditAccountID,
		WorkID:          d.WorkID,
		Notes:           d.Notes,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSupplierInvoice converts a model SupplierInvoice to a domain SupplierInvoice
func ToDomainSupplierInvoice(m models.SupplierInvoice) domain.SupplierInvoice {
	var due *time.Time
	if m.DueDate != nil {
		d := domain.CalendarDate(*m.DueDate)
		due = &d
	}
	return domain.SupplierInvoice{
		InvoiceID:       m.InvoiceID,
		Vendor:          m.Vendor,
		InvoiceNumber:   m.InvoiceNumber,
		TotalAmount:     m.TotalAmount,
		PaidAmount:      m.PaidAmount,
		PaymentStatus:   domain.InvoiceStatus(m.PaymentStatus),
		TransactionType: domain.InvoiceTransactionType(m.TransactionType),
		IssueDate:       domain.CalendarDate(m.IssueDate),
		DueDate:         due,
		PaymentMethod:   domain.PaymentMethod(m.PaymentMethod),
		CreditAccountID: m.CreditAccountID,
		WorkID:          m.WorkID,
		Notes:           m.Notes,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSupplierInvoiceSlice converts a slice of model SupplierInvoices
func ToDomainSupplierInvoiceSlice(ms []models.SupplierInvoice) []domain.SupplierInvoice {
	ds := make([]domain.SupplierInvoice, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSupplierInvoice(m)
	}
	return ds
}

// ToModelInvoicePayment converts a domain InvoicePayment to a model InvoicePayment
func ToModelInvoicePayment(d domain.InvoicePayment) models.InvoicePayment {
	return models.InvoicePayment{
		PaymentID:      d.PaymentID,
		InvoiceID:      d.InvoiceID,
		AccountID:      d.AccountID,
		Amount:         d.Amount,
		PaymentDate:    d.PaymentDate,
		IdempotencyKey: d.IdempotencyKey,
		TransactionID:  d.TransactionID,
		Allocation:     string(d.Allocation),
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// ToDomainInvoicePayment converts a model InvoicePayment to a domain InvoicePayment
func ToDomainInvoicePayment(m models.InvoicePayment) domain.InvoicePayment {
	return domain.InvoicePayment{
		PaymentID:      m.PaymentID,
		InvoiceID:      m.InvoiceID,
		AccountID:      m.AccountID,
		Amount:         m.Amount,
		PaymentDate:    domain.CalendarDate(m.PaymentDate),
		IdempotencyKey: m.IdempotencyKey,
		TransactionID:  m.TransactionID,
		Allocation:     domain.AllocationStrategy(m.Allocation),
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}

// ToDomainInvoicePaymentSlice converts a slice of model InvoicePayments
func ToDomainInvoicePaymentSlice(ms []models.InvoicePayment) []domain.InvoicePayment {
	ds := make([]domain.InvoicePayment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvoicePayment(m)
	}
	return ds
}

// ToModelInvoiceExpenseLink converts a domain InvoiceExpenseLink to a model InvoiceExpenseLink
func ToModelInvoiceExpenseLink(d domain.InvoiceExpenseLink) models.InvoiceExpenseLink {
	return models.InvoiceExpenseLink{
		LinkID:            d.LinkID,
		SupplierInvoiceID: d.SupplierInvoiceID,
		ExpenseID:         d.ExpenseID,
		InvoicePaymentID:  d.InvoicePaymentID,
		AmountApplied:     d.AmountApplied,
		CreatedByStaffID:  d.CreatedByStaffID,
		Notes:             d.Notes,
		CreatedAt:         d.CreatedAt,
	}
}

// ToDomainInvoiceExpenseLink converts a model InvoiceExpenseLink to a domain InvoiceExpenseLink
func ToDomainInvoiceExpenseLink(m models.InvoiceExpenseLink) domain.InvoiceExpenseLink {
	return domain.InvoiceExpenseLink{
		LinkID:            m.LinkID,
		SupplierInvoiceID: m.SupplierInvoiceID,
		ExpenseID:         m.ExpenseID,
		InvoicePaymentID:  m.InvoicePaymentID,
		AmountApplied:     m.AmountApplied,
		CreatedByStaffID:  m.CreatedByStaffID,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
	}
}

// ToDomainInvoiceExpenseLinkSlice converts a slice of model InvoiceExpenseLinks
func ToDomainInvoiceExpenseLinkSlice(ms []models.InvoiceExpenseLink) []domain.InvoiceExpenseLink {
	ds := make([]domain.InvoiceExpenseLink, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvoiceExpenseLink(m)
	}
	return ds
}
