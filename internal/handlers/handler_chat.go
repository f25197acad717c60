package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/middleware"
)

// chatHandler handles HTTP requests for per-deal messaging.
type chatHandler struct {
	chatService portssvc.ChatSvcFacade
}

// newChatHandler creates a new chatHandler.
func newChatHandler(cs portssvc.ChatSvcFacade) *chatHandler {
	return &chatHandler{chatService: cs}
}

// registerChatRoutes registers deal-scoped messaging routes.
func registerChatRoutes(rg *gin.RouterGroup, chatService portssvc.ChatSvcFacade) {
	h := newChatHandler(chatService)

	deals := rg.Group("/deals")
	{
		deals.POST("/:id/messages", h.sendMessage)
		deals.GET("/:id/messages", h.listMessages)
	}
}

// sendMessage godoc
// @Summary Send a message
// @Description Appends a message to a deal's conversation; participants only
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param message body dto.SendMessageRequest true "Message body"
// @Success 201 {object} dto.MessageResponse
// @Failure 403 {object} map[string]string "Not a participant"
// @Security BearerAuth
// @Router /deals/{id}/messages [post]
func (h *chatHandler) sendMessage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), dealID, actor, req)
	if err != nil {
		respondDealError(c, logger, err, "send message")
		return
	}
	c.JSON(http.StatusCreated, dto.ToMessageResponse(message))
}

// listMessages godoc
// @Summary List messages
// @Description Returns the conversation snapshot; pass since to poll for new messages only
// @Tags chat
// @Produce json
// @Param id path string true "Deal ID"
// @Param since query string false "RFC3339 timestamp of the last message already held"
// @Success 200 {object} dto.ListMessagesResponse
// @Failure 404 {object} map[string]string "Deal not found"
// @Security BearerAuth
// @Router /deals/{id}/messages [get]
func (h *chatHandler) listMessages(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListMessagesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.chatService.ListMessages(c.Request.Context(), dealID, actor.UserID, params)
	if err != nil {
		respondDealError(c, logger, err, "list messages")
		return
	}
	c.JSON(http.StatusOK, resp)
}
