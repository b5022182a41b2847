package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bazaarlink/internal/domain/entity"
	"bazaarlink/internal/usecase"
	"bazaarlink/pkg/response"
	"bazaarlink/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

// The list and count endpoints are collaborator contracts consumed by the
// storefront, so their bodies are served verbatim rather than wrapped in the
// standard response envelope.
type notificationListBody struct {
	Notifications []*entity.InAppNotification `json:"notifications"`
	NextCursor    string                      `json:"nextCursor,omitempty"`
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	uid := c.Get("uid").(string)
	params := utils.GetCursorParams(c)

	notifications, nextCursor, err := h.notificationUseCase.List(
		c.Request().Context(), uid, params.CursorID, params.Limit, params.UnreadOnly)
	if err != nil {
		return response.Error(c, err)
	}

	if notifications == nil {
		notifications = []*entity.InAppNotification{}
	}

	return c.JSON(http.StatusOK, notificationListBody{
		Notifications: notifications,
		NextCursor:    nextCursor,
	})
}

func (h *NotificationHandler) CountUnread(c echo.Context) error {
	uid := c.Get("uid").(string)

	count, err := h.notificationUseCase.CountUnread(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid := c.Get("uid").(string)
	notificationID := c.Param("id")

	if err := h.notificationUseCase.MarkRead(c.Request().Context(), uid, notificationID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"read": true})
}
