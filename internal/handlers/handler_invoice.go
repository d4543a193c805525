package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/contractor_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/SscSPs/contractor_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles HTTP requests related to supplier invoices.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
	now            func() time.Time
}

// RegisterInvoiceRoutes registers supplier invoice, payment and link routes.
func RegisterInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := &invoiceHandler{invoiceService: invoiceService, now: time.Now}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:invoiceID", h.getInvoice)
		invoices.POST("/:invoiceID/payments", h.payInvoice)
		invoices.GET("/:invoiceID/payments", h.listPayments)
		invoices.POST("/:invoiceID/links", h.linkExpense)
		invoices.GET("/:invoiceID/links", h.listLinks)
		invoices.POST("/:invoiceID/cancel", h.cancelInvoice)
	}
}

// createInvoice godoc
// @Summary Record a supplier invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Credit account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to create invoice"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create supplier invoice", slog.String("vendor", req.Vendor), slog.String("invoice_number", req.InvoiceNumber))

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, "create invoice", err)
		return
	}

	logger.Info("Supplier invoice created successfully", slog.String("invoice_id", invoice.InvoiceID))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice, h.now()))
}

// getInvoice godoc
// @Summary Get a supplier invoice by ID
// @Description The returned status is overdue when an unpaid invoice is past its due date
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve invoice"
// @Security BearerAuth
// @Router /invoices/{invoiceID} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondError(c, logger, "retrieve invoice", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, h.now()))
}

// listInvoices godoc
// @Summary List supplier invoices
// @Tags invoices
// @Produce  json
// @Param   vendor query string false "Vendor (case-insensitive)"
// @Param   status query string false "Stored status" Enums(pending, partial, paid, cancelled)
// @Param   workID query string false "Job ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list invoices"
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, "list invoices", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvoiceResponse(invoices, h.now()))
}

// payInvoice godoc
// @Summary Pay a supplier invoice
// @Description Withdraws the payment from a bank account and allocates it over the vendor's open expenses, FIFO unless explicit allocations are given. The allocation must cover the payment exactly.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Param   payment body dto.PayInvoiceRequest true "Payment details"
// @Success 201 {object} dto.PayInvoiceResponse
// @Success 200 {object} dto.PayInvoiceResponse "Replayed payment for a known idempotency key"
// @Failure 400 {object} dto.ErrorResponse "Invalid input or inactive account"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice, account or expense not found"
// @Failure 409 {object} dto.ErrorResponse "Cancelled invoice or suspected duplicate"
// @Failure 422 {object} dto.ErrorResponse "Over payment or allocation mismatch"
// @Failure 500 {object} dto.ErrorResponse "Failed to pay invoice"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/payments [post]
func (h *invoiceHandler) payInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	var req dto.PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("invoice_id", invoiceID), slog.String("account_id", req.AccountID))
	logger.Info("Received request to pay invoice", slog.String("amount", req.Amount.String()))

	result, err := h.invoiceService.PayInvoice(c.Request.Context(), invoiceID, req, userID)
	if err != nil {
		respondError(c, logger, "pay invoice", err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	logger.Info("Invoice payment recorded",
		slog.String("payment_id", result.Payment.PaymentID),
		slog.Int("links", len(result.Links)),
		slog.Bool("replayed", result.Replayed))
	c.JSON(status, dto.ToPayInvoiceResponse(result, h.now()))
}

// listPayments godoc
// @Summary List an invoice's payments
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {array} domain.InvoicePayment
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list payments"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/payments [get]
func (h *invoiceHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payments, err := h.invoiceService.ListInvoicePayments(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondError(c, logger, "list payments", err)
		return
	}
	if payments == nil {
		payments = []domain.InvoicePayment{}
	}
	c.JSON(http.StatusOK, payments)
}

// linkExpense godoc
// @Summary Attribute paid invoice money to an expense
// @Description Links already paid, unallocated invoice money to an expense
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Param   link body dto.LinkInvoiceRequest true "Link details"
// @Success 201 {object} dto.LinkInvoiceResult
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice or expense not found"
// @Failure 409 {object} dto.ErrorResponse "Suspected duplicate link"
// @Failure 422 {object} dto.ErrorResponse "Over payment"
// @Failure 500 {object} dto.ErrorResponse "Failed to link expense"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/links [post]
func (h *invoiceHandler) linkExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	var req dto.LinkInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("invoice_id", invoiceID), slog.String("expense_id", req.ExpenseID))
	link, expense, err := h.invoiceService.LinkInvoiceToExpense(c.Request.Context(), invoiceID, req, userID)
	if err != nil {
		respondError(c, logger, "link expense", err)
		return
	}

	logger.Info("Invoice linked to expense", slog.String("link_id", link.LinkID), slog.String("amount", link.AmountApplied.String()))
	c.JSON(http.StatusCreated, dto.LinkInvoiceResult{
		Link:    *link,
		Expense: dto.ToExpenseResponse(expense),
	})
}

// listLinks godoc
// @Summary List an invoice's expense links
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {array} domain.InvoiceExpenseLink
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list links"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/links [get]
func (h *invoiceHandler) listLinks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	links, err := h.invoiceService.ListInvoiceLinks(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondError(c, logger, "list links", err)
		return
	}
	if links == nil {
		links = []domain.InvoiceExpenseLink{}
	}
	c.JSON(http.StatusOK, links)
}

// cancelInvoice godoc
// @Summary Cancel a supplier invoice
// @Description Cancels a pending or partially paid invoice. Recorded payments stay on the ledger.
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invalid status transition"
// @Failure 500 {object} dto.ErrorResponse "Failed to cancel invoice"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/cancel [post]
func (h *invoiceHandler) cancelInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("invoice_id", invoiceID))
	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), invoiceID, userID)
	if err != nil {
		respondError(c, logger, "cancel invoice", err)
		return
	}

	logger.Info("Supplier invoice cancelled")
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, h.now()))
}
