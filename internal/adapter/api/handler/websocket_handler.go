package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"bazaarlink/internal/domain/repository"
	"bazaarlink/internal/infrastructure/firebase"
	"bazaarlink/internal/infrastructure/realtime"
	"bazaarlink/internal/usecase"
	"bazaarlink/pkg/config"
	apperrors "bazaarlink/pkg/errors"
	"bazaarlink/pkg/logger"
)

type WebSocketHandler struct {
	registry   *realtime.Registry
	dispatch   *usecase.DispatchUseCase
	authClient *firebase.AuthClient
	userRepo   repository.UserRepository
	cfg        *config.Config
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(
	registry *realtime.Registry,
	dispatch *usecase.DispatchUseCase,
	authClient *firebase.AuthClient,
	userRepo repository.UserRepository,
	cfg *config.Config,
) *WebSocketHandler {
	return &WebSocketHandler{
		registry:   registry,
		dispatch:   dispatch,
		authClient: authClient,
		userRepo:   userRepo,
		cfg:        cfg,
	}
}

// HandleWebSocket authenticates the upgrade request and registers the new
// connection. Unauthenticated connections are refused before registration.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	uid, err := h.authClient.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	if _, err := h.userRepo.GetByID(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unknown user identity")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return apperrors.Internal("Failed to upgrade connection", err)
	}

	conn := realtime.NewConnection(uid, ws, h.cfg.SendBufferSize)
	h.registry.Register(conn)

	go conn.WritePump(h.cfg.HeartbeatInterval, h.cfg.WriteTimeout)
	go conn.ReadPump(h.registry, h.cfg.IdleTimeout, h.handleInbound)

	return nil
}

// handleInbound runs one dispatch per inbound frame. Errors go back to the
// sending connection only; success is acknowledged only after the message is
// durable.
func (h *WebSocketHandler) handleInbound(conn *realtime.Connection, payload []byte) {
	message, _, err := h.dispatch.Dispatch(context.Background(), conn.UserID, payload)
	if err != nil {
		if envelope := realtime.MarshalEnvelope(realtime.EnvelopeError, errorBody(err)); envelope != nil {
			conn.Push(envelope)
		}
		return
	}

	if envelope := realtime.MarshalEnvelope(realtime.EnvelopeAck, message); envelope != nil {
		conn.Push(envelope)
	}
}

func errorBody(err error) map[string]string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return map[string]string{"code": appErr.Code, "message": appErr.Message}
	}
	logger.Error("WebSocket dispatch failed with unexpected error: %v", err)
	return map[string]string{"code": "INTERNAL_ERROR", "message": "An unexpected error occurred"}
}

func bearerToken(c echo.Context) string {
	if token := c.QueryParam("token"); token != "" {
		return token
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
