package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestCreateAccount_Success() {
	created := &domain.BankAccount{
		AccountID:    "acc-1",
		Name:         "Operating checking",
		AccountType:  domain.Checking,
		CurrencyCode: "USD",
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(staffID, time.Now()),
	}
	suite.ledger.On("CreateAccount", mock.Anything,
		mock.MatchedBy(func(r dto.CreateBankAccountRequest) bool {
			return r.Name == "Operating checking" && r.AccountType == domain.Checking
		}),
		staffID,
	).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":        "Operating checking",
		"accountType": "checking",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.BankAccountResponse
	suite.decode(w, &resp)
	suite.Equal("acc-1", resp.AccountID)
	suite.Equal(staffID, resp.CreatedBy)
}

func (suite *HandlerTestSuite) TestCreateAccount_InvalidType() {
	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":        "Petty cash",
		"accountType": "brokerage",
	})

	suite.assertError(w, http.StatusBadRequest, "Validation")
	suite.ledger.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestMissingToken_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.assertError(w, http.StatusUnauthorized, "Unauthorized")
}

func (suite *HandlerTestSuite) TestGetAccount_NotFound() {
	suite.ledger.On("GetAccountByID", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: missing", apperrors.ErrAccountNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/missing", nil)

	suite.assertError(w, http.StatusNotFound, "AccountNotFound")
}

func (suite *HandlerTestSuite) TestGetBalance_WithRecomputeReportsDrift() {
	suite.ledger.On("GetBalance", mock.Anything, "acc-1").Return(dec("1200.00"), nil).Once()
	suite.ledger.On("RecomputeBalance", mock.Anything, "acc-1").Return(dec("1150.00"), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1/balance?recompute=true", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.AccountBalanceResponse
	suite.decode(w, &resp)
	suite.True(resp.Balance.Equal(dec("1200")))
	suite.Require().NotNil(resp.Recomputed)
	suite.True(resp.Recomputed.Equal(dec("1150")))
	suite.Require().NotNil(resp.Drift)
	suite.True(resp.Drift.Equal(dec("50")))
}

func (suite *HandlerTestSuite) TestGetBalance_CachedOnly() {
	suite.ledger.On("GetBalance", mock.Anything, "acc-1").Return(dec("75.25"), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1/balance", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.decode(w, &resp)
	suite.True(resp.Balance.Equal(dec("75.25")))
	suite.Nil(resp.Recomputed)
	suite.Nil(resp.Drift)
	suite.ledger.AssertNotCalled(suite.T(), "RecomputeBalance", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestRecordTransaction_Success() {
	txn := &domain.BankTransaction{
		TransactionID:   "txn-1",
		AccountID:       "acc-1",
		Seq:             7,
		TransactionType: domain.Deposit,
		Amount:          dec("250.00"),
		TransactionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Category:        domain.CategoryIncome,
		BalanceAfter:    dec("1250.00"),
		CreatedBy:       staffID,
	}
	suite.ledger.On("RecordTransaction", mock.Anything, "acc-1",
		mock.MatchedBy(func(r dto.RecordTransactionRequest) bool {
			return r.TransactionType == domain.Deposit && r.Amount.Equal(dec("250"))
		}),
		staffID,
	).Return(txn, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/acc-1/transactions", map[string]any{
		"transactionType": "deposit",
		"amount":          "250.00",
		"transactionDate": "2024-03-01",
		"category":        "income",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.BankTransactionResponse
	suite.decode(w, &resp)
	suite.Equal("2024-03-01", resp.TransactionDate)
	suite.True(resp.BalanceAfter.Equal(dec("1250")))
}

func (suite *HandlerTestSuite) TestRecordTransaction_RejectsInvalidAmounts() {
	for _, amount := range []string{"0", "-5.00", "1.005"} {
		w := suite.do(http.MethodPost, "/api/v1/accounts/acc-1/transactions", map[string]any{
			"transactionType": "withdrawal",
			"amount":          amount,
			"transactionDate": "2024-03-01",
		})
		suite.assertError(w, http.StatusBadRequest, "Validation")
	}
	suite.ledger.AssertNotCalled(suite.T(), "RecordTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestRecordTransaction_TransferTypeRejectedAtBinding() {
	w := suite.do(http.MethodPost, "/api/v1/accounts/acc-1/transactions", map[string]any{
		"transactionType": "transfer_out",
		"amount":          "10.00",
		"transactionDate": "2024-03-01",
	})
	suite.assertError(w, http.StatusBadRequest, "Validation")
}

func (suite *HandlerTestSuite) TestTransfer_ReturnsBothLegs() {
	transferID := "tr-1"
	out := &domain.BankTransaction{TransactionID: "t-out", AccountID: "acc-a", TransactionType: domain.TransferOut, Amount: dec("100"), RelatedRefs: domain.RelatedRefs{RelatedTransferID: &transferID}}
	in := &domain.BankTransaction{TransactionID: "t-in", AccountID: "acc-b", TransactionType: domain.TransferIn, Amount: dec("100"), RelatedRefs: domain.RelatedRefs{RelatedTransferID: &transferID}}
	suite.ledger.On("Transfer", mock.Anything,
		mock.MatchedBy(func(r dto.TransferRequest) bool {
			return r.FromAccountID == "acc-a" && r.ToAccountID == "acc-b" && r.Amount.Equal(dec("100"))
		}),
		staffID,
	).Return(out, in, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transfers", map[string]any{
		"fromAccountID":   "acc-a",
		"toAccountID":     "acc-b",
		"amount":          "100.00",
		"transactionDate": "2024-03-05",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.TransferResponse
	suite.decode(w, &resp)
	suite.Equal("tr-1", resp.TransferID)
	suite.Equal(domain.TransferOut, resp.Out.TransactionType)
	suite.Equal(domain.TransferIn, resp.In.TransactionType)
}

func (suite *HandlerTestSuite) TestTransfer_SameAccountIsValidationError() {
	suite.ledger.On("Transfer", mock.Anything, mock.Anything, staffID).
		Return(nil, nil, fmt.Errorf("%w: cannot transfer to the same account", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/transfers", map[string]any{
		"fromAccountID":   "acc-a",
		"toAccountID":     "acc-a",
		"amount":          "10.00",
		"transactionDate": "2024-03-05",
	})

	suite.assertError(w, http.StatusBadRequest, "Validation")
}

func (suite *HandlerTestSuite) TestListTransactions_PassesPagination() {
	next := "next-page"
	suite.ledger.On("ListTransactions", mock.Anything, "acc-1",
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
			return p.Limit == 10 && p.NextToken != nil && *p.NextToken == "abc"
		}),
	).Return(&dto.ListTransactionsResponse{
		Transactions: []dto.BankTransactionResponse{{TransactionID: "t-2"}, {TransactionID: "t-1"}},
		NextToken:    &next,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1/transactions?limit=10&nextToken=abc", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ListTransactionsResponse
	suite.decode(w, &resp)
	suite.Len(resp.Transactions, 2)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("next-page", *resp.NextToken)
}

func (suite *HandlerTestSuite) TestListAccounts_InternalErrorIsGeneric() {
	suite.ledger.On("ListAccounts", mock.Anything, 20, 0).
		Return(nil, apperrors.NewAppError(500, "failed to list bank accounts", fmt.Errorf("connection refused"))).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	var body dto.ErrorResponse
	suite.decode(w, &body)
	suite.Equal("Failed to list accounts", body.Error)
	suite.Equal("Internal", body.Kind)
}
