package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IssueTelegramLink POST /providers/me/telegram-link
func (h *Handlers) IssueTelegramLink(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}

	link, err := h.linkService.IssueLink(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}
