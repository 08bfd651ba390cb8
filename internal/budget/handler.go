package budget

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

// CreateBudget godoc
// @Summary Create a budget
// @Description Creates a spending budget with a window derived from the period
// @Tags budgets
// @Accept json
// @Produce json
// @Param budget body CreateBudgetRequest true "Budget details"
// @Success 201 {object} Budget
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /budgets [post]
func (h *Handler) CreateBudget(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ListBudgets godoc
// @Summary List budgets
// @Description Lists the caller's budgets with current spending
// @Tags budgets
// @Produce json
// @Success 200 {array} Budget
// @Security BearerAuth
// @Router /budgets [get]
func (h *Handler) ListBudgets(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	budgets, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

// GetBudget godoc
// @Summary Get a budget
// @Tags budgets
// @Produce json
// @Param id path int true "Budget ID"
// @Success 200 {object} Budget
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /budgets/{id} [get]
func (h *Handler) GetBudget(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid budget ID"})
		return
	}

	b, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// UpdateBudget godoc
// @Summary Update a budget
// @Description Updates amount, period or alert threshold; changing the period rederives the window
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path int true "Budget ID"
// @Param budget body UpdateBudgetRequest true "Fields to update"
// @Success 200 {object} Budget
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /budgets/{id} [put]
func (h *Handler) UpdateBudget(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid budget ID"})
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Tags budgets
// @Produce json
// @Param id path int true "Budget ID"
// @Success 200 {object} api.MessageResponse
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /budgets/{id} [delete]
func (h *Handler) DeleteBudget(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid budget ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "budget deleted"})
}
