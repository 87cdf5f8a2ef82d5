package routes

import (
	"net/http"

	"wagyu_backend/internal/handlers"
	"wagyu_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all HTTP and WebSocket routes.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
) {
	ginRouter.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.SubscriptionHandler.RegisterRoutes(api)
		appHandlers.WebhookHandler.RegisterRoutes(api)
		appHandlers.AffiliateHandler.RegisterRoutes(api)
		appHandlers.TradeHandler.RegisterRoutes(api)
	}

	// Token auth happens inside ServeWS: browsers cannot set headers on
	// websocket connects.
	ginRouter.GET("/ws", wsHandler.ServeWS)
}
