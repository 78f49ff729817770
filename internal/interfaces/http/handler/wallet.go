package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/application/wallet"
	"github.com/groupbuy/backend/internal/interfaces/http/dto"
	"github.com/groupbuy/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// WalletHandler serves the caller's wallet
type WalletHandler struct {
	BaseHandler
	walletService *wallet.WalletService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService *wallet.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// AmountRequest is the body of a deposit or withdrawal
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string" example:"25.00"`
	// IdempotencyKey is used when the Idempotency-Key header is absent
	IdempotencyKey string `json:"idempotency_key" binding:"max=100"`
}

type transactionsQuery struct {
	dto.PageQuery
	Type string `form:"type" binding:"omitempty,oneof=DEPOSIT PURCHASE REFUND WITHDRAWAL SETTLEMENT"`
}

// GetBalance godoc
// @ID           getWalletBalance
// @Summary      Wallet balance
// @Tags         wallet
// @Produce      json
// @Success      200 {object} APIResponse[wallet.BalanceResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallet [get]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	balance, err := h.walletService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ListTransactions godoc
// @ID           listWalletTransactions
// @Summary      Transaction history
// @Description  Newest first, optionally filtered by type
// @Tags         wallet
// @Produce      json
// @Param        type query string false "Transaction type" Enums(DEPOSIT, PURCHASE, REFUND, WITHDRAWAL, SETTLEMENT)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]wallet.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallet/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var q transactionsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.walletService.ListTransactions(c.Request.Context(), userID, wallet.ListTransactionsInput{
		Type:     q.Type,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Deposit godoc
// @ID           depositToWallet
// @Summary      Deposit
// @Description  Top up the wallet. Replaying an Idempotency-Key returns the original transaction.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body AmountRequest true "Amount"
// @Success      201 {object} APIResponse[wallet.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallet/deposit [post]
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req AmountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	if key == "" {
		key = req.IdempotencyKey
	}
	tx, err := h.walletService.Deposit(c.Request.Context(), userID, wallet.DepositInput{
		Amount:         req.Amount,
		IdempotencyKey: key,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// Withdraw godoc
// @ID           withdrawFromWallet
// @Summary      Withdraw
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request body AmountRequest true "Amount"
// @Success      201 {object} APIResponse[wallet.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallet/withdraw [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req AmountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tx, err := h.walletService.Withdraw(c.Request.Context(), userID, wallet.WithdrawInput{Amount: req.Amount})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}
