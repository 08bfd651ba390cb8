package transaction

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"centavo/internal/api"
	"centavo/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateTransaction godoc
// @Summary      Record transaction
// @Description  Records an income, expense or transfer and adjusts wallet balances atomically.
// @Tags         transactions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateTransactionRequest  true  "Transaction data"
// @Success      201      {object}  Transaction
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /transactions [post]
func (h *Handler) CreateTransaction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// GetTransaction godoc
// @Summary      Get transaction
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        transactionID  path      int  true  "Transaction ID"
// @Success      200            {object}  Transaction
// @Failure      404            {object}  api.ErrorResponse
// @Router       /transactions/{transactionID} [get]
func (h *Handler) GetTransaction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("transactionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	t, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// UpdateTransaction godoc
// @Summary      Update transaction
// @Description  Patches a transaction. Changes to amount, type or wallets re-balance the affected wallets atomically.
// @Tags         transactions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        transactionID  path      int                       true  "Transaction ID"
// @Param        request        body      UpdateTransactionRequest  true  "Fields to update"
// @Success      200            {object}  Transaction
// @Failure      400            {object}  api.ErrorResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /transactions/{transactionID} [put]
func (h *Handler) UpdateTransaction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("transactionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// DeleteTransaction godoc
// @Summary      Delete transaction
// @Description  Deletes a transaction and reverses its balance effect.
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        transactionID  path      int  true  "Transaction ID"
// @Success      200            {object}  api.MessageResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /transactions/{transactionID} [delete]
func (h *Handler) DeleteTransaction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("transactionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// ListTransactions godoc
// @Summary      List transactions
// @Description  Returns the user's transactions, newest first, paginated.
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        wallet_id  query     int     false  "Filter by wallet"
// @Param        type       query     string  false  "Filter by type (income, expense, transfer)"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Page size (default 50)"
// @Success      200        {object}  ListResult
// @Failure      400        {object}  api.ErrorResponse
// @Router       /transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var filter ListFilter

	if walletStr := c.Query("wallet_id"); walletStr != "" {
		walletID, err := strconv.Atoi(walletStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet_id"})
			return
		}
		filter.WalletID = &walletID
	}

	if txType := c.Query("type"); txType != "" {
		if txType != TypeIncome && txType != TypeExpense && txType != TypeTransfer {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
			return
		}
		filter.Type = txType
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
