package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/contractor_ledger/internal/core/ports/services"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/SscSPs/contractor_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to bank accounts and their ledger.
type accountHandler struct {
	ledgerService portssvc.AccountLedgerSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(ls portssvc.AccountLedgerSvcFacade) *accountHandler {
	return &accountHandler{
		ledgerService: ls,
	}
}

// RegisterAccountRoutes registers bank account, ledger and transfer routes.
func RegisterAccountRoutes(rg *gin.RouterGroup, ledgerService portssvc.AccountLedgerSvcFacade) {
	h := newAccountHandler(ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/:accountID/balance", h.getBalance)
		accounts.POST("/:accountID/transactions", h.recordTransaction)
		accounts.GET("/:accountID/transactions", h.listTransactions)
	}
	rg.POST("/transfers", h.transfer)
}

// createAccount godoc
// @Summary Open a bank account
// @Description Creates a bank account with a zero balance. Record an opening deposit to fund it.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateBankAccountRequest true "Account details"
// @Success 201 {object} dto.BankAccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create bank account", slog.String("account_name", req.Name), slog.String("account_type", string(req.AccountType)))

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, "create account", err)
		return
	}

	logger.Info("Bank account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToBankAccountResponse(account))
}

// getAccount godoc
// @Summary Get a bank account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.BankAccountResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.ledgerService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, "retrieve account", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBankAccountResponse(account))
}

// listAccounts godoc
// @Summary List bank accounts
// @Description Lists bank accounts ordered by name
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.BankAccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	accounts, err := h.ledgerService.ListAccounts(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, "list accounts", err)
		return
	}

	logger.Info("Bank accounts listed successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ToListBankAccountResponse(accounts))
}

// getBalance godoc
// @Summary Get an account balance
// @Description Returns the cached balance. With recompute=true the balance is also folded from the transaction log and the drift reported; nothing is repaired.
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   recompute query bool false "Recompute from the transaction log"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to get balance"
// @Security BearerAuth
// @Router /accounts/{accountID}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.GetBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, "get balance", err)
		return
	}
	resp := dto.AccountBalanceResponse{AccountID: accountID, Balance: balance}

	if params.Recompute {
		recomputed, err := h.ledgerService.RecomputeBalance(c.Request.Context(), accountID)
		if err != nil {
			respondError(c, logger, "recompute balance", err)
			return
		}
		drift := balance.Sub(recomputed)
		resp.Recomputed = &recomputed
		resp.Drift = &drift
		if !drift.IsZero() {
			logger.Warn("Cached balance drifted from transaction log",
				slog.String("account_id", accountID), slog.String("drift", drift.String()))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// recordTransaction godoc
// @Summary Record a deposit or withdrawal
// @Description Appends a manual entry to the account's transaction log and updates the cached balance
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.BankTransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or inactive account"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to record transaction"
// @Security BearerAuth
// @Router /accounts/{accountID}/transactions [post]
func (h *accountHandler) recordTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("account_id", accountID))
	logger.Info("Received request to record transaction", slog.String("type", string(req.TransactionType)), slog.String("amount", req.Amount.String()))

	txn, err := h.ledgerService.RecordTransaction(c.Request.Context(), accountID, req, userID)
	if err != nil {
		respondError(c, logger, "record transaction", err)
		return
	}

	logger.Info("Transaction recorded successfully", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToBankTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List an account's transactions
// @Description Lists the transaction log newest first, paginated by token
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list transactions"
// @Security BearerAuth
// @Router /accounts/{accountID}/transactions [get]
func (h *accountHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, "query parameters", err)
		return
	}

	resp, err := h.ledgerService.ListTransactions(c.Request.Context(), accountID, params)
	if err != nil {
		respondError(c, logger, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// transfer godoc
// @Summary Transfer funds between accounts
// @Description Atomically appends a transfer_out and a transfer_in entry sharing one transfer ID
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input, same account or currency mismatch"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to transfer funds"
// @Security BearerAuth
// @Router /transfers [post]
func (h *accountHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, "request format", err)
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("from_account_id", req.FromAccountID), slog.String("to_account_id", req.ToAccountID))
	logger.Info("Received request to transfer funds", slog.String("amount", req.Amount.String()))

	out, in, err := h.ledgerService.Transfer(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, "transfer funds", err)
		return
	}

	resp := dto.TransferResponse{
		Out: dto.ToBankTransactionResponse(out),
		In:  dto.ToBankTransactionResponse(in),
	}
	if out.RelatedTransferID != nil {
		resp.TransferID = *out.RelatedTransferID
	}
	logger.Info("Transfer completed successfully", slog.String("transfer_id", resp.TransferID))
	c.JSON(http.StatusCreated, resp)
}
