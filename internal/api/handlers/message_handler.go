package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4seer/Twake/internal/api/middleware"
	"github.com/4seer/Twake/internal/models"
	"github.com/4seer/Twake/internal/service"
)

// ============================================
// Message Handler
// ============================================

type MessageHandler struct {
	messageService service.MessageService
}

func (h *MessageHandler) CreateChannel(c *gin.Context) {
	companyID := c.Param("companyId")
	workspaceID := c.Param("id")
	if _, ok := middleware.RequireUserID(c); !ok {
		return
	}

	var req models.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.messageService.CreateChannel(c.Request.Context(), workspaceID, req.Name, executionContext(c, companyID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}

	c.JSON(http.StatusCreated, toChannelResponse(channel))
}

func (h *MessageHandler) ListChannels(c *gin.Context) {
	workspaceID := c.Param("id")

	channels, err := h.messageService.ListChannels(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch channels"})
		return
	}

	response := make([]models.ChannelResponse, len(channels))
	for i, ch := range channels {
		response[i] = toChannelResponse(ch)
	}

	c.JSON(http.StatusOK, response)
}

func (h *MessageHandler) GetChannel(c *gin.Context) {
	channel, err := h.messageService.GetChannel(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch channel"})
		return
	}

	c.JSON(http.StatusOK, toChannelResponse(channel))
}

func (h *MessageHandler) DeleteChannel(c *gin.Context) {
	if err := h.messageService.DeleteChannel(c.Request.Context(), c.Param("channelId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete channel"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *MessageHandler) PostMessage(c *gin.Context) {
	channelID := c.Param("channelId")
	if _, ok := middleware.RequireUserID(c); !ok {
		return
	}

	var req models.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.messageService.PostMessage(c.Request.Context(), channelID, req.ThreadID, req.Body, executionContext(c, c.Query("company_id")))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message body is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post message"})
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(message))
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	channelID := c.Param("channelId")

	messages, nextToken, err := h.messageService.ListMessages(c.Request.Context(), channelID, pageFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	response := models.MessageListResponse{
		Messages:      make([]models.MessageResponse, len(messages)),
		NextPageToken: nextToken,
	}
	for i, m := range messages {
		response.Messages[i] = toMessageResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

func (h *MessageHandler) ListThread(c *gin.Context) {
	threadID := c.Param("threadId")

	messages, err := h.messageService.ListThread(c.Request.Context(), threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch thread"})
		return
	}

	response := make([]models.MessageResponse, len(messages))
	for i, m := range messages {
		response[i] = toMessageResponse(m)
	}

	c.JSON(http.StatusOK, response)
}
