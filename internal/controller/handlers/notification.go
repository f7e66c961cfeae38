package handlers

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/gin-gonic/gin"
)

// ListNotifications GET /notifications?role=client|provider&unread=true
func (h *Handlers) ListNotifications(c *gin.Context) {
	recipient, ok := h.recipient(c)
	if !ok {
		return
	}

	onlyUnread, _ := strconv.ParseBool(c.Query("unread"))

	notifications, err := h.notificationService.List(c.Request.Context(), recipient, onlyUnread)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if notifications == nil {
		notifications = []*model.Notification{}
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead POST /notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	recipient, ok := h.recipient(c)
	if !ok {
		return
	}

	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id, recipient); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handlers) recipient(c *gin.Context) (model.Recipient, bool) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return model.Recipient{}, false
	}

	recipient, err := h.notificationService.RecipientFor(c.Request.Context(), userID, model.RecipientRole(c.Query("role")))
	if err != nil {
		h.respondError(c, err)
		return model.Recipient{}, false
	}

	return recipient, true
}
