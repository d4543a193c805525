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

func sampleInvoice(status domain.InvoiceStatus, paid string) *domain.SupplierInvoice {
	due := time.Date(2099, 4, 1, 0, 0, 0, 0, time.UTC)
	return &domain.SupplierInvoice{
		InvoiceID:       "inv-1",
		Vendor:          "Septic Supply Co",
		InvoiceNumber:   "INV-1001",
		TotalAmount:     dec("500.00"),
		PaidAmount:      dec(paid),
		PaymentStatus:   status,
		TransactionType: domain.InvoiceTypePurchase,
		IssueDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:         &due,
		PaymentMethod:   domain.MethodCreditCard,
		AuditFields:     domain.NewAuditFields(staffID, time.Now()),
	}
}

func (suite *HandlerTestSuite) TestCreateInvoice_Success() {
	suite.invoices.On("CreateInvoice", mock.Anything,
		mock.MatchedBy(func(r dto.CreateInvoiceRequest) bool {
			return r.Vendor == "Septic Supply Co" && r.TotalAmount.Equal(dec("500")) && r.DueDate != nil
		}),
		staffID,
	).Return(sampleInvoice(domain.InvoicePending, "0"), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices", map[string]any{
		"vendor":        "Septic Supply Co",
		"invoiceNumber": "INV-1001",
		"totalAmount":   "500.00",
		"issueDate":     "2024-03-01",
		"dueDate":       "2099-04-01",
		"paymentMethod": "credit_card",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.InvoiceResponse
	suite.decode(w, &resp)
	suite.Equal("inv-1", resp.InvoiceID)
	suite.Equal(domain.InvoicePending, resp.PaymentStatus)
	suite.Require().NotNil(resp.DueDate)
	suite.Equal("2099-04-01", *resp.DueDate)
}

func (suite *HandlerTestSuite) TestGetInvoice_OverdueIsDerived() {
	inv := sampleInvoice(domain.InvoicePartial, "100.00")
	past := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	inv.DueDate = &past
	suite.invoices.On("GetInvoiceByID", mock.Anything, "inv-1").Return(inv, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/invoices/inv-1", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.InvoiceResponse
	suite.decode(w, &resp)
	suite.Equal(domain.InvoiceOverdue, resp.PaymentStatus)
}

func payResult(replayed bool) *dto.PayInvoiceResult {
	paymentID := "pay-1"
	return &dto.PayInvoiceResult{
		Invoice: *sampleInvoice(domain.InvoicePaid, "500.00"),
		Payment: domain.InvoicePayment{
			PaymentID:     paymentID,
			InvoiceID:     "inv-1",
			AccountID:     "acc-1",
			Amount:        dec("500.00"),
			TransactionID: "txn-1",
			Allocation:    domain.AllocationFIFO,
		},
		Transaction: domain.BankTransaction{
			TransactionID:   "txn-1",
			AccountID:       "acc-1",
			TransactionType: domain.Withdrawal,
			Amount:          dec("500.00"),
			Category:        domain.CategoryCreditCardPayment,
			RelatedRefs:     domain.RelatedRefs{RelatedInvoicePaymentID: &paymentID},
		},
		Plan: domain.AllocationPlan{
			Strategy: domain.AllocationFIFO,
			Total:    dec("500.00"),
			Lines:    []domain.AllocationLine{{ExpenseID: "exp-1", Amount: dec("500.00")}},
		},
		Links: []domain.InvoiceExpenseLink{{
			LinkID:            "link-1",
			SupplierInvoiceID: "inv-1",
			ExpenseID:         "exp-1",
			InvoicePaymentID:  &paymentID,
			AmountApplied:     dec("500.00"),
			CreatedByStaffID:  staffID,
		}},
		Replayed: replayed,
	}
}

func (suite *HandlerTestSuite) TestPayInvoice_FIFOFullSettlement() {
	suite.invoices.On("PayInvoice", mock.Anything, "inv-1",
		mock.MatchedBy(func(r dto.PayInvoiceRequest) bool {
			return r.AccountID == "acc-1" && r.Amount.Equal(dec("500")) && r.IdempotencyKey != nil && *r.IdempotencyKey == "k-1"
		}),
		staffID,
	).Return(payResult(false), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/payments", map[string]any{
		"amount":         "500.00",
		"accountID":      "acc-1",
		"paymentDate":    "2024-03-12",
		"idempotencyKey": "k-1",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.PayInvoiceResponse
	suite.decode(w, &resp)
	suite.Equal(domain.InvoicePaid, resp.Invoice.PaymentStatus)
	suite.Len(resp.Links, 1)
	suite.True(resp.Links[0].AmountApplied.Equal(dec("500")))
	suite.Equal(domain.CategoryCreditCardPayment, resp.Transaction.Category)
	suite.False(resp.Replayed)
}

func (suite *HandlerTestSuite) TestPayInvoice_ReplayReturnsOK() {
	suite.invoices.On("PayInvoice", mock.Anything, "inv-1", mock.Anything, staffID).Return(payResult(true), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/payments", map[string]any{
		"amount":         "500.00",
		"accountID":      "acc-1",
		"paymentDate":    "2024-03-12",
		"idempotencyKey": "k-1",
	})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.PayInvoiceResponse
	suite.decode(w, &resp)
	suite.True(resp.Replayed)
}

func (suite *HandlerTestSuite) TestPayInvoice_AllocationMismatch() {
	suite.invoices.On("PayInvoice", mock.Anything, "inv-1", mock.Anything, staffID).
		Return(nil, fmt.Errorf("%w: candidates cover 300.00 of 500.00", apperrors.ErrAllocationMismatch)).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/payments", map[string]any{
		"amount":      "500.00",
		"accountID":   "acc-1",
		"paymentDate": "2024-03-12",
	})

	suite.assertError(w, http.StatusUnprocessableEntity, "AllocationMismatch")
}

func (suite *HandlerTestSuite) TestPayInvoice_DuplicateSuspected() {
	suite.invoices.On("PayInvoice", mock.Anything, "inv-1", mock.Anything, staffID).
		Return(nil, fmt.Errorf("%w: payment pay-1 on 2024-03-12", apperrors.ErrDuplicateLinkSuspected)).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/payments", map[string]any{
		"amount":      "500.00",
		"accountID":   "acc-1",
		"paymentDate": "2024-03-12",
	})

	suite.assertError(w, http.StatusConflict, "DuplicateLinkSuspected")
}

func (suite *HandlerTestSuite) TestPayInvoice_ManualAllocationLinesAreValidated() {
	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/payments", map[string]any{
		"amount":      "500.00",
		"accountID":   "acc-1",
		"paymentDate": "2024-03-12",
		"allocations": []map[string]any{{"expenseID": "exp-1", "amount": "0"}},
	})

	suite.assertError(w, http.StatusBadRequest, "Validation")
}

func (suite *HandlerTestSuite) TestLinkExpense_Success() {
	link := &domain.InvoiceExpenseLink{LinkID: "link-2", SupplierInvoiceID: "inv-1", ExpenseID: "exp-1", AmountApplied: dec("200.00")}
	expense := sampleExpense(domain.ExpensePartial, "200.00")
	suite.invoices.On("LinkInvoiceToExpense", mock.Anything, "inv-1",
		mock.MatchedBy(func(r dto.LinkInvoiceRequest) bool {
			return r.ExpenseID == "exp-1" && r.AmountApplied.Equal(dec("200")) && !r.ConfirmDuplicate
		}),
		staffID,
	).Return(link, expense, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/links", map[string]any{
		"expenseID":     "exp-1",
		"amountApplied": "200.00",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.LinkInvoiceResult
	suite.decode(w, &resp)
	suite.Equal("link-2", resp.Link.LinkID)
	suite.Equal(domain.ExpensePartial, resp.Expense.PaymentStatus)
}

func (suite *HandlerTestSuite) TestListLinks_EmptyIsArray() {
	suite.invoices.On("ListInvoiceLinks", mock.Anything, "inv-1").Return(nil, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/invoices/inv-1/links", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq("[]", w.Body.String())
}

func (suite *HandlerTestSuite) TestCancelInvoice_PaidIsInvalidTransition() {
	suite.invoices.On("CancelInvoice", mock.Anything, "inv-1", staffID).
		Return(nil, fmt.Errorf("%w: paid invoice cannot be cancelled", apperrors.ErrInvalidTransition)).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/cancel", nil)

	suite.assertError(w, http.StatusConflict, "InvalidTransition")
}

func (suite *HandlerTestSuite) TestCancelInvoice_Success() {
	suite.invoices.On("CancelInvoice", mock.Anything, "inv-1", staffID).
		Return(sampleInvoice(domain.InvoiceCancelled, "100.00"), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/cancel", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.InvoiceResponse
	suite.decode(w, &resp)
	suite.Equal(domain.InvoiceCancelled, resp.PaymentStatus)
}
