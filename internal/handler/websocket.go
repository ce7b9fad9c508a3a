package handler

import (
	"net/http"

	"github.com/cleberrangel/clickup-task-analyzer/internal/websocket"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler expõe o hub de progresso
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler cria um novo handler
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleConnection faz o upgrade para websocket (?operation_id= filtra uma análise)
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	h.hub.ServeWS(c)
}

// GetConnectionStats retorna o número de conexões ativas
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_connections": h.hub.GetConnectionCount(),
		},
	})
}
