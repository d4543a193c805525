package handlers_test

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
)

func sampleExpense(status domain.ExpenseStatus, paid string) *domain.Expense {
	return &domain.Expense{
		ExpenseID:     "exp-1",
		Amount:        dec("300.00"),
		PaidAmount:    dec(paid),
		PaymentStatus: status,
		Vendor:        "Septic Supply Co",
		Description:   "Tank risers",
		PaymentMethod: domain.MethodCheck,
		ExpenseDate:   time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		AuditFields:   domain.NewAuditFields(staffID, time.Now()),
	}
}

func (suite *HandlerTestSuite) TestCreateExpense_Success() {
	suite.expenses.On("CreateExpense", mock.Anything,
		mock.MatchedBy(func(r dto.CreateExpenseRequest) bool {
			return r.Vendor == "Septic Supply Co" && r.Amount.Equal(dec("300")) && r.PaymentMethod == domain.MethodCheck
		}),
		staffID,
	).Return(sampleExpense(domain.ExpenseUnpaid, "0"), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"amount":        "300.00",
		"vendor":        "Septic Supply Co",
		"description":   "Tank risers",
		"paymentMethod": "check",
		"expenseDate":   "2024-02-10",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ExpenseResponse
	suite.decode(w, &resp)
	suite.Equal(domain.ExpenseUnpaid, resp.PaymentStatus)
	suite.True(resp.RemainingAmount.Equal(dec("300")))
	suite.Equal("2024-02-10", resp.ExpenseDate)
}

func (suite *HandlerTestSuite) TestCreateExpense_BadDate() {
	w := suite.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"amount":        "300.00",
		"vendor":        "Septic Supply Co",
		"paymentMethod": "check",
		"expenseDate":   "02/10/2024",
	})
	suite.assertError(w, http.StatusBadRequest, "Validation")
}

func (suite *HandlerTestSuite) TestPayExpense_Partial() {
	expense := sampleExpense(domain.ExpensePartial, "100.00")
	txn := &domain.BankTransaction{
		TransactionID:   "txn-9",
		AccountID:       "acc-1",
		TransactionType: domain.Withdrawal,
		Amount:          dec("100.00"),
		Category:        domain.CategoryExpense,
		RelatedRefs:     domain.RelatedRefs{RelatedExpenseID: strPtr("exp-1")},
	}
	suite.expenses.On("PayExpenseDirectly", mock.Anything, "exp-1",
		mock.MatchedBy(func(r dto.PayExpenseRequest) bool {
			return r.AccountID == "acc-1" && r.Amount.Equal(dec("100"))
		}),
		staffID,
	).Return(expense, txn, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/expenses/exp-1/payments", map[string]any{
		"amount":      "100.00",
		"accountID":   "acc-1",
		"paymentDate": "2024-02-15",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.PayExpenseResponse
	suite.decode(w, &resp)
	suite.Equal(domain.ExpensePartial, resp.Expense.PaymentStatus)
	suite.True(resp.Expense.RemainingAmount.Equal(dec("200")))
	suite.Require().NotNil(resp.Transaction.RelatedExpenseID)
	suite.Equal("exp-1", *resp.Transaction.RelatedExpenseID)
}

func (suite *HandlerTestSuite) TestPayExpense_OverPayment() {
	suite.expenses.On("PayExpenseDirectly", mock.Anything, "exp-1", mock.Anything, staffID).
		Return(nil, nil, fmt.Errorf("%w: 400.00 exceeds remaining 300.00", apperrors.ErrOverPayment)).Once()

	w := suite.do(http.MethodPost, "/api/v1/expenses/exp-1/payments", map[string]any{
		"amount":      "400.00",
		"accountID":   "acc-1",
		"paymentDate": "2024-02-15",
	})

	suite.assertError(w, http.StatusUnprocessableEntity, "OverPayment")
}

func (suite *HandlerTestSuite) TestDeleteExpense_Unpaid() {
	suite.expenses.On("DeleteExpense", mock.Anything, "exp-1", staffID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/expenses/exp-1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteExpense_HasPayments() {
	suite.expenses.On("DeleteExpense", mock.Anything, "exp-1", staffID).
		Return(fmt.Errorf("%w: exp-1 has 100.00 paid", apperrors.ErrExpenseHasPayments)).Once()

	w := suite.do(http.MethodDelete, "/api/v1/expenses/exp-1", nil)

	suite.assertError(w, http.StatusConflict, "ExpenseHasPayments")
}

func (suite *HandlerTestSuite) TestListExpenses_FilterByStatus() {
	suite.expenses.On("ListExpenses", mock.Anything,
		mock.MatchedBy(func(p dto.ListExpensesParams) bool {
			return p.Status == "partial" && p.Vendor == "septic supply co" && p.Limit == 20
		}),
	).Return([]domain.Expense{*sampleExpense(domain.ExpensePartial, "100.00")}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/expenses?status=partial&vendor=septic%20supply%20co", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp []dto.ExpenseResponse
	suite.decode(w, &resp)
	suite.Len(resp, 1)
}

func (suite *HandlerTestSuite) TestListExpenses_UnknownStatus() {
	w := suite.do(http.MethodGet, "/api/v1/expenses?status=overdue", nil)
	suite.assertError(w, http.StatusBadRequest, "Validation")
}

func (suite *HandlerTestSuite) TestReclassifyExpense_CreatesPaymentInvoice() {
	invoice := &domain.SupplierInvoice{
		InvoiceID:       "inv-7",
		Vendor:          "Septic Supply Co",
		TotalAmount:     dec("300.00"),
		PaymentStatus:   domain.InvoicePending,
		TransactionType: domain.InvoiceTypePayment,
		IssueDate:       time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod:   domain.MethodCheck,
	}
	suite.invoices.On("ReclassifyExpenseAsInvoicePayment", mock.Anything, "exp-1",
		mock.MatchedBy(func(r dto.ReclassifyExpenseRequest) bool { return r.InvoiceNumber == "CHK-2231" }),
		staffID,
	).Return(invoice, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/expenses/exp-1/reclassify", map[string]any{
		"invoiceNumber": "CHK-2231",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ReclassifyExpenseResult
	suite.decode(w, &resp)
	suite.Equal("exp-1", resp.DeletedExpenseID)
	suite.Equal(domain.InvoiceTypePayment, resp.Invoice.TransactionType)
}
