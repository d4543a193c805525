package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/SscSPs/contractor_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// expenseHandler handles HTTP requests related to committed expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
	invoiceService portssvc.InvoiceWriterSvc
	now            func() time.Time
}

// RegisterExpenseRoutes registers expense routes. Reclassification needs the
// invoice service because it creates a supplier invoice.
func RegisterExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, invoiceService portssvc.InvoiceWriterSvc) {
	h := &expenseHandler{
		expenseService: expenseService,
		invoiceService: invoiceService,
		now:            time.Now,
	}

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expenseID", h.getExpense)
		expenses.DELETE("/:expenseID", h.deleteExpense)
		expenses.POST("/:expenseID/payments", h.payExpense)
		expenses.POST("/:expenseID/reclassify", h.reclassifyExpense)
	}
}

// createExpense godoc
// @Summary Commit an expense
// @Description Records a committed expense owed to a vendor. It starts unpaid.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create expense"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create expense", slog.String("vendor", req.Vendor), slog.String("amount", req.Amount.String()))

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, "create expense", err)
		return
	}

	logger.Info("Expense created successfully", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// getExpense godoc
// @Summary Get an expense by ID
// @Tags expenses
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Expense not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve expense"
// @Security BearerAuth
// @Router /expenses/{expenseID} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), c.Param("expenseID"))
	if err != nil {
		respondError(c, logger, "retrieve expense", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses
// @Description Lists expenses newest first, optionally filtered by vendor, status or job
// @Tags expenses
// @Produce  json
// @Param   vendor query string false "Vendor (case-insensitive)"
// @Param   status query string false "Payment status" Enums(unpaid, partial, paid, paid_via_invoice)
// @Param   workID query string false "Job ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list expenses"
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, "list expenses", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpenseResponse(expenses))
}

// payExpense godoc
// @Summary Pay an expense directly
// @Description Withdraws part or all of the remaining amount from a bank account
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Param   payment body dto.PayExpenseRequest true "Payment details"
// @Success 201 {object} dto.PayExpenseResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or inactive account"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Expense or account not found"
// @Failure 422 {object} dto.ErrorResponse "Over payment"
// @Failure 500 {object} dto.ErrorResponse "Failed to pay expense"
// @Security BearerAuth
// @Router /expenses/{expenseID}/payments [post]
func (h *expenseHandler) payExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	var req dto.PayExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("expense_id", expenseID), slog.String("account_id", req.AccountID))
	logger.Info("Received request to pay expense", slog.String("amount", req.Amount.String()))

	expense, txn, err := h.expenseService.PayExpenseDirectly(c.Request.Context(), expenseID, req, userID)
	if err != nil {
		respondError(c, logger, "pay expense", err)
		return
	}

	logger.Info("Expense paid successfully", slog.String("status", string(expense.PaymentStatus)))
	c.JSON(http.StatusCreated, dto.PayExpenseResponse{
		Expense:     dto.ToExpenseResponse(expense),
		Transaction: dto.ToBankTransactionResponse(txn),
	})
}

// deleteExpense godoc
// @Summary Delete an expense
// @Description Deletes an expense that has no payments
// @Tags expenses
// @Param   expenseID path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Expense not found"
// @Failure 409 {object} dto.ErrorResponse "Expense has payments"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete expense"
// @Security BearerAuth
// @Router /expenses/{expenseID} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("expense_id", expenseID))
	if err := h.expenseService.DeleteExpense(c.Request.Context(), expenseID, userID); err != nil {
		respondError(c, logger, "delete expense", err)
		return
	}

	logger.Info("Expense deleted successfully")
	c.Status(http.StatusNoContent)
}

// reclassifyExpense godoc
// @Summary Reclassify an expense as an invoice payment
// @Description Replaces an unpaid expense that was really a payment with a payment-type supplier invoice
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Param   reclassify body dto.ReclassifyExpenseRequest true "Invoice overrides"
// @Success 201 {object} dto.ReclassifyExpenseResult
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Expense not found"
// @Failure 409 {object} dto.ErrorResponse "Expense has payments"
// @Failure 500 {object} dto.ErrorResponse "Failed to reclassify expense"
// @Security BearerAuth
// @Router /expenses/{expenseID}/reclassify [post]
func (h *expenseHandler) reclassifyExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	var req dto.ReclassifyExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("expense_id", expenseID))
	invoice, err := h.invoiceService.ReclassifyExpenseAsInvoicePayment(c.Request.Context(), expenseID, req, userID)
	if err != nil {
		respondError(c, logger, "reclassify expense", err)
		return
	}

	logger.Info("Expense reclassified as invoice payment", slog.String("invoice_id", invoice.InvoiceID))
	c.JSON(http.StatusCreated, dto.ReclassifyExpenseResult{
		DeletedExpenseID: expenseID,
		Invoice:          dto.ToInvoiceResponse(invoice, h.now()),
	})
}
