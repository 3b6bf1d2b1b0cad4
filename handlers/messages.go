package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chorus/social-service/models"
	"chorus/social-service/services"
	"chorus/social-service/utils"
)

type MessageHandler struct {
	service *services.MessageService
	logger  *utils.Logger
}

func NewMessageHandler(service *services.MessageService, logger *utils.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger,
	}
}

// Send handles POST /api/messages
func (h *MessageHandler) Send(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), current, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// History handles GET /api/messages/:otherUserId
func (h *MessageHandler) History(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	msgs, err := h.service.History(c.Request.Context(), current, c.Param("otherUserId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Conversations handles GET /api/messages/conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	convs, err := h.service.Conversations(c.Request.Context(), current)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}
