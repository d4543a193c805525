package handlers_test

import (
	"errors"
	"net/http"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestRunAudit_ReportsFindings() {
	report := &domain.AuditReport{
		BalanceDrifts: []domain.BalanceDrift{{
			AccountID:  "acc-1",
			Cached:     dec("1200.00"),
			Recomputed: dec("1150.00"),
			Difference: dec("50.00"),
		}},
		AllocationOverruns: []domain.AllocationOverrun{{
			Subject: domain.SubjectInvoice,
			ID:      "inv-1",
			Limit:   dec("500.00"),
			Applied: dec("550.00"),
		}},
		GeneratedAt: time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC),
	}
	suite.audit.On("RunAudit", mock.Anything).Return(report, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/audit", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.AuditResponse
	suite.decode(w, &resp)
	suite.False(resp.Clean)
	suite.Equal(2, resp.FindingCount)
	suite.Require().Len(resp.Report.BalanceDrifts, 1)
	suite.True(resp.Report.BalanceDrifts[0].Difference.Equal(dec("50")))
	suite.Equal(domain.SubjectInvoice, resp.Report.AllocationOverruns[0].Subject)
}

func (suite *HandlerTestSuite) TestRunAudit_Clean() {
	suite.audit.On("RunAudit", mock.Anything).Return(&domain.AuditReport{GeneratedAt: time.Now()}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/audit", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AuditResponse
	suite.decode(w, &resp)
	suite.True(resp.Clean)
	suite.Zero(resp.FindingCount)
}

func (suite *HandlerTestSuite) TestRunAudit_FailureIsGeneric() {
	suite.audit.On("RunAudit", mock.Anything).Return(nil, errors.New("snapshot query failed")).Once()

	w := suite.do(http.MethodGet, "/api/v1/audit", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	var body dto.ErrorResponse
	suite.decode(w, &body)
	suite.Equal("Failed to run audit", body.Error)
	suite.Equal("Internal", body.Kind)
}
