package router

import (
	"github.com/labstack/echo/v4"

	"bazaarlink/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// WebSocket endpoint for real-time communication
	// No auth middleware here since the handler authenticates the upgrade itself
	e.GET("/ws", wsHandler.HandleWebSocket)
}
