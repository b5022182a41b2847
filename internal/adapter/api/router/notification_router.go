package router

import (
	"github.com/labstack/echo/v4"

	"bazaarlink/internal/adapter/api/handler"
	"bazaarlink/internal/adapter/api/middleware"
)

// SetupNotificationRouter sets up in-app notification routes
func SetupNotificationRouter(e *echo.Echo, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	notificationGroup := e.Group("/v1/notifications")
	notificationGroup.Use(authMiddleware.Authenticate)

	notificationGroup.GET("", notificationHandler.ListNotifications) // GET /v1/notifications - Cursor-paginated list
	notificationGroup.GET("/count", notificationHandler.CountUnread) // GET /v1/notifications/count - Unread badge count
	notificationGroup.PUT("/:id/read", notificationHandler.MarkRead) // PUT /v1/notifications/:id/read - Mark one as read
}
