package router

import (
	"github.com/labstack/echo/v4"

	"bazaarlink/internal/adapter/api/handler"
	"bazaarlink/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	sessionHandler *handler.SessionHandler,
	notificationHandler *handler.NotificationHandler,
	wsHandler *handler.WebSocketHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	SetupSessionRouter(e, sessionHandler, authMiddleware)
	SetupNotificationRouter(e, notificationHandler, authMiddleware)
	SetupWebSocketRouter(e, wsHandler)
}
