package router

import (
	"github.com/labstack/echo/v4"

	"bazaarlink/internal/adapter/api/handler"
	"bazaarlink/internal/adapter/api/middleware"
)

// SetupSessionRouter sets up all chat session routes (excluding WebSocket)
func SetupSessionRouter(e *echo.Echo, sessionHandler *handler.SessionHandler, authMiddleware *middleware.AuthMiddleware) {
	sessionGroup := e.Group("/v1/sessions")
	sessionGroup.Use(authMiddleware.Authenticate) // All session endpoints require authentication

	// Session management
	sessionGroup.POST("", sessionHandler.CreateSession)          // POST /v1/sessions - Create new session
	sessionGroup.GET("", sessionHandler.ListSessions)            // GET /v1/sessions - Get caller's sessions
	sessionGroup.GET("/:id", sessionHandler.GetSession)          // GET /v1/sessions/:id - Get specific session
	sessionGroup.PUT("/:id/read", sessionHandler.MarkSessionRead) // PUT /v1/sessions/:id/read - Mark session as read

	// Membership management
	sessionGroup.POST("/:id/members", sessionHandler.AddMember)      // POST /v1/sessions/:id/members - Join session
	sessionGroup.DELETE("/:id/members", sessionHandler.RemoveMember) // DELETE /v1/sessions/:id/members - Leave session

	// Message history (pull path)
	sessionGroup.GET("/:id/messages", sessionHandler.GetMessages)                   // GET /v1/sessions/:id/messages - Get session messages
	sessionGroup.PUT("/:id/messages/:messageId/read", sessionHandler.MarkMessageRead) // PUT /v1/sessions/:id/messages/:messageId/read - Read receipt
}
