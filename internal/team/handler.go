package team

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

// CreateTeam godoc
// @Summary Create a team
// @Description Creates a shared expense team with the caller as admin
// @Tags teams
// @Accept json
// @Produce json
// @Param team body CreateTeamRequest true "Team details"
// @Success 201 {object} Team
// @Failure 400 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams [post]
func (h *Handler) CreateTeam(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	t, err := h.service.CreateTeam(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// ListTeams godoc
// @Summary List teams
// @Description Lists teams the caller belongs to
// @Tags teams
// @Produce json
// @Success 200 {array} Team
// @Security BearerAuth
// @Router /teams [get]
func (h *Handler) ListTeams(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teams, err := h.service.ListTeams(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, teams)
}

// GetTeam godoc
// @Summary Get a team
// @Description Returns a team with its members and their balances
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} TeamWithMembers
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id} [get]
func (h *Handler) GetTeam(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid team ID"})
		return
	}

	t, err := h.service.GetTeam(c.Request.Context(), userID, teamID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Description Deletes a team; only the creator may do this
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} api.MessageResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id} [delete]
func (h *Handler) DeleteTeam(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid team ID"})
		return
	}

	if err := h.service.DeleteTeam(c.Request.Context(), userID, teamID); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "team deleted"})
}

// AddMember godoc
// @Summary Add a team member
// @Description Adds a user to the team; admin only
// @Tags teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param member body AddMemberRequest true "Member details"
// @Success 201 {object} Member
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id}/members [post]
func (h *Handler) AddMember(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid team ID"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = RoleMember
	}

	m, err := h.service.AddMember(c.Request.Context(), userID, teamID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// RemoveMember godoc
// @Summary Remove a team member
// @Description Removes a member; members may leave, admins may remove others, the creator is never removable
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Param userId path int true "User ID"
// @Success 200 {object} api.MessageResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid team ID"})
		return
	}

	memberID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user ID"})
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), userID, teamID, memberID); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "member removed"})
}

// RecordExpense godoc
// @Summary Record a shared expense
// @Description Records an expense and updates member balances according to the split
// @Tags teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param expense body RecordExpenseRequest true "Expense details"
// @Success 201 {object} Expense
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id}/expenses [post]
func (h *Handler) RecordExpense(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid team ID"})
		return
	}

	var req RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	e, err := h.service.RecordExpense(c.Request.Context(), userID, teamID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, e)
}

// ListExpenses godoc
// @Summary List team expenses
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {array} Expense
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id}/expenses [get]
func (h *Handler) ListExpenses(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid team ID"})
		return
	}

	expenses, err := h.service.ListExpenses(c.Request.Context(), userID, teamID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// SettleDebt godoc
// @Summary Settle a debt
// @Description Pays down the caller's debt toward another member, clamped to what is actually owed
// @Tags teams
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param settlement body SettleRequest true "Settlement details"
// @Success 201 {object} Settlement
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id}/settlements [post]
func (h *Handler) SettleDebt(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid team ID"})
		return
	}

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	settlement, err := h.service.SettleDebt(c.Request.Context(), userID, teamID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, settlement)
}

// ListSettlements godoc
// @Summary List team settlements
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {array} Settlement
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id}/settlements [get]
func (h *Handler) ListSettlements(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid team ID"})
		return
	}

	settlements, err := h.service.ListSettlements(c.Request.Context(), userID, teamID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settlements)
}
