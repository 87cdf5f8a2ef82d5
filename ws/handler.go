package ws

import (
	"net/http"

	"wagyu_backend/internal/auth"
	"wagyu_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the CORS layer in front
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	Manager *WebSocketManager
}

func NewWebSocketHandler(manager *WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{Manager: manager}
}

// ServeWS upgrades the connection. Browsers cannot set an Authorization
// header on websocket connects, so the JWT arrives as a query parameter.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized. 'token' query parameter is required."})
		return
	}

	claims, err := auth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "error", err.Error())
		return
	}

	client := &Client{
		UserID:        claims.UserID,
		Conn:          conn,
		Send:          make(chan any, sendBufferSize),
		Manager:       h.Manager,
		subscriptions: make(map[string]struct{}),
	}

	h.Manager.register <- client

	go client.readPump()
	go client.writePump()
}
