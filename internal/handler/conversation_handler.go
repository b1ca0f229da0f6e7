package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/service"
)

type ConversationHandler struct {
	convs  *service.ConversationService
	logger *zap.Logger
}

func NewConversationHandler(convs *service.ConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		convs:  convs,
		logger: logger,
	}
}

func (h *ConversationHandler) Create(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req domain.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid conversation payload: "+err.Error())
		return
	}

	conv, err := h.convs.CreateConversation(c.Request.Context(), ident, req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, conv)
}

func (h *ConversationHandler) List(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	convs, err := h.convs.ListConversations(c.Request.Context(), ident)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, convs)
}

// ListMessages returns the conversation's messages and marks it read for
// the caller.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	msgs, err := h.convs.ListMessages(c.Request.Context(), ident, c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, msgs)
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "message content is required")
		return
	}

	msg, err := h.convs.SendMessage(c.Request.Context(), ident, c.Param("id"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, msg)
}
