package handlers

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/gin-gonic/gin"
)

// StartConversation POST /conversations
func (h *Handlers) StartConversation(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}

	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	conversation, err := h.messagingService.StartConversation(c.Request.Context(), userID, req.ProviderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// ListMessages GET /conversations/:id/messages?limit=50
func (h *Handlers) ListMessages(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}
	conversationID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.messagingService.ListMessages(c.Request.Context(), conversationID, userID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if messages == nil {
		messages = []*model.Message{}
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage POST /conversations/:id/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}
	conversationID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	message, err := h.messagingService.SendMessage(c.Request.Context(), conversationID, userID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// MarkConversationRead POST /conversations/:id/read
func (h *Handlers) MarkConversationRead(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}
	conversationID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	count, err := h.messagingService.MarkConversationRead(c.Request.Context(), conversationID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": count})
}
