package notify

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"centavo/internal/api"
	"centavo/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListNotifications godoc
// @Summary List notifications
// @Description Lists the caller's notifications, newest first; pass unread=true for unread only
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Success 200 {array} Notification
// @Security BearerAuth
// @Router /notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.repo.ListByUser(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} api.MessageResponse
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [put]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid notification ID"})
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to mark notification read"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "notification marked read"})
}

// MarkAllNotificationsRead godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Success 200 {object} api.MessageResponse
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	count, err := h.repo.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: strconv.FormatInt(count, 10) + " notifications marked read"})
}
