package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
	appErrors "github.com/campushub/portal-api/pkg/errors"
	"github.com/campushub/portal-api/pkg/response"
)

// MessagingHandler manages conversation and message endpoints.
type MessagingHandler struct {
	service *service.MessagingService
}

// NewMessagingHandler constructs handler.
func NewMessagingHandler(svc *service.MessagingService) *MessagingHandler {
	return &MessagingHandler{service: svc}
}

// ListConversations returns the caller's conversations.
func (h *MessagingHandler) ListConversations(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	conversations, err := h.service.ListConversations(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conversations, nil)
}

// StartConversation opens a new thread.
func (h *MessagingHandler) StartConversation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	conversation, err := h.service.Start(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, conversation)
}

// ListMessages pages through a conversation's messages.
func (h *MessagingHandler) ListMessages(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.MessageFilter{
		ConversationID: c.Param("id"),
		Page:           queryInt(c, "page", 1),
		PageSize:       queryInt(c, "limit", 50),
	}
	if raw := c.Query("before"); raw != "" {
		if before, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.Before = &before
		}
	}

	messages, err := h.service.ListMessages(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// SendMessage appends a message to a conversation.
func (h *MessagingHandler) SendMessage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	message, err := h.service.Send(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}
