package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/SscSPs/contractor_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.AuditSvc
}

// RegisterAuditRoutes registers the reconciliation audit route.
func RegisterAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvc) {
	h := &auditHandler{auditService: auditService}
	rg.GET("/audit", h.runAudit)
}

// runAudit godoc
// @Summary Run the reconciliation audit
// @Description Reports balance drift, possible duplicate expenses, allocation overruns and paid amount drift. Nothing is repaired.
// @Tags audit
// @Produce  json
// @Success 200 {object} dto.AuditResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to run audit"
// @Security BearerAuth
// @Router /audit [get]
func (h *auditHandler) runAudit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.auditService.RunAudit(c.Request.Context())
	if err != nil {
		respondError(c, logger, "run audit", err)
		return
	}

	resp := dto.ToAuditResponse(report)
	logger.Info("Audit completed", slog.Bool("clean", resp.Clean), slog.Int("findings", resp.FindingCount))
	c.JSON(http.StatusOK, resp)
}
