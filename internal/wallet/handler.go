package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"centavo/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// CreateWallet godoc
// @Summary      Create wallet
// @Description  Creates a new wallet for the current user. The first wallet becomes the default.
// @Tags         wallets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateWalletRequest  true  "Wallet data"
// @Success      201      {object}  Wallet
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /wallets [post]
func (h *Handler) CreateWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.repo.Create(c.Request.Context(), userID, req.Name, req.Currency, req.IsDefault)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wallet"})
		return
	}

	c.JSON(http.StatusCreated, w)
}

// ListWallets godoc
// @Summary      List wallets
// @Description  Returns all wallets of the current user, default first.
// @Tags         wallets
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Wallet
// @Failure      500  {object}  api.ErrorResponse
// @Router       /wallets [get]
func (h *Handler) ListWallets(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	wallets, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wallets"})
		return
	}

	c.JSON(http.StatusOK, wallets)
}

// GetWallet godoc
// @Summary      Get wallet
// @Tags         wallets
// @Security     BearerAuth
// @Produce      json
// @Param        walletID  path      int  true  "Wallet ID"
// @Success      200       {object}  Wallet
// @Failure      404       {object}  api.ErrorResponse
// @Router       /wallets/{walletID} [get]
func (h *Handler) GetWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	walletID, err := strconv.Atoi(c.Param("walletID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet ID"})
		return
	}

	w, err := h.repo.GetByID(c.Request.Context(), userID, walletID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// UpdateWallet godoc
// @Summary      Update wallet
// @Description  Updates wallet name, currency or default flag. The default flag can only be moved, never unset.
// @Tags         wallets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        walletID  path      int                  true  "Wallet ID"
// @Param        request   body      UpdateWalletRequest  true  "Fields to update"
// @Success      200       {object}  Wallet
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Router       /wallets/{walletID} [put]
func (h *Handler) UpdateWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	walletID, err := strconv.Atoi(c.Param("walletID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet ID"})
		return
	}

	var req UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.repo.Update(c.Request.Context(), userID, walletID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		case errors.Is(err, ErrDefaultRequired):
			c.JSON(http.StatusConflict, gin.H{"error": "Set another wallet as default first"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, w)
}

// DeleteWallet godoc
// @Summary      Delete wallet
// @Description  Deletes a wallet. Fails with 409 when transactions reference it unless force=true.
// @Tags         wallets
// @Security     BearerAuth
// @Produce      json
// @Param        walletID  path      int     true   "Wallet ID"
// @Param        force     query     bool    false  "Also delete linked transactions"
// @Success      200       {object}  api.MessageResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Router       /wallets/{walletID} [delete]
func (h *Handler) DeleteWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	walletID, err := strconv.Atoi(c.Param("walletID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet ID"})
		return
	}

	force := c.Query("force") == "true"

	if err := h.repo.Delete(c.Request.Context(), userID, walletID, force); err != nil {
		switch {
		case errors.Is(err, ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		case errors.Is(err, ErrDefaultWalletDelete):
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete the default wallet"})
		case errors.Is(err, ErrWalletHasTransactions):
			c.JSON(http.StatusConflict, gin.H{"error": "Wallet has linked transactions, use force=true"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wallet deleted successfully"})
}
