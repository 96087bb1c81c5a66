package handler

import (
	"net/http"

	"github.com/CaioZinDaLua/secure-contract-ai-review/middleware"
	"github.com/CaioZinDaLua/secure-contract-ai-review/service"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatSvc}
}

type ChatRequest struct {
	DocumentID string `json:"document_id"`
	Message    string `json:"message" binding:"required"`
}

type ChatResponse struct {
	AIResponse string `json:"ai_response"`
	NewVersion int    `json:"new_version,omitempty"`
}

// Chat handles one assistant exchange, optionally tied to a document
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resp, err := h.chatService.HandleTurn(c.Request.Context(), &service.ChatRequest{
		DocumentID: req.DocumentID,
		UserID:     middleware.GetUserID(c),
		Message:    req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		AIResponse: resp.Message,
		NewVersion: resp.NewVersion,
	})
}
