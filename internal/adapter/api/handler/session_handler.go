package handler

import (
	"github.com/labstack/echo/v4"

	"bazaarlink/internal/usecase"
	"bazaarlink/pkg/errors"
	"bazaarlink/pkg/response"
	"bazaarlink/pkg/utils"
)

type SessionHandler struct {
	sessionUseCase *usecase.SessionUseCase
}

func NewSessionHandler(sessionUseCase *usecase.SessionUseCase) *SessionHandler {
	return &SessionHandler{
		sessionUseCase: sessionUseCase,
	}
}

func (h *SessionHandler) CreateSession(c echo.Context) error {
	uid := c.Get("uid").(string)

	session, err := h.sessionUseCase.CreateSession(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, session)
}

func (h *SessionHandler) ListSessions(c echo.Context) error {
	uid := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	sessions, total, err := h.sessionUseCase.ListSessions(c.Request().Context(), uid, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, sessions, total, pagination.Page, pagination.PageSize)
}

func (h *SessionHandler) GetSession(c echo.Context) error {
	uid := c.Get("uid").(string)
	sessionID := c.Param("id")

	session, err := h.sessionUseCase.GetSession(c.Request().Context(), uid, sessionID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, session)
}

// AddMember adds the authenticated caller to the session.
func (h *SessionHandler) AddMember(c echo.Context) error {
	uid := c.Get("uid").(string)
	sessionID := c.Param("id")
	if sessionID == "" {
		return response.Error(c, errors.BadRequest("Session id is required", nil))
	}

	if err := h.sessionUseCase.AddMember(c.Request().Context(), sessionID, uid); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"session_id": sessionID,
		"member_id":  uid,
	})
}

// RemoveMember removes the authenticated caller from the session.
func (h *SessionHandler) RemoveMember(c echo.Context) error {
	uid := c.Get("uid").(string)
	sessionID := c.Param("id")
	if sessionID == "" {
		return response.Error(c, errors.BadRequest("Session id is required", nil))
	}

	if err := h.sessionUseCase.RemoveMember(c.Request().Context(), sessionID, uid); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"session_id": sessionID,
		"member_id":  uid,
	})
}

// GetMessages serves membership-gated history - the pull path for members who
// were offline at dispatch time.
func (h *SessionHandler) GetMessages(c echo.Context) error {
	uid := c.Get("uid").(string)
	sessionID := c.Param("id")
	pagination := utils.GetPaginationParams(c)

	messages, total, err := h.sessionUseCase.GetMessages(c.Request().Context(), uid, sessionID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, pagination.Page, pagination.PageSize)
}

func (h *SessionHandler) MarkMessageRead(c echo.Context) error {
	uid := c.Get("uid").(string)
	sessionID := c.Param("id")
	messageID := c.Param("messageId")

	if err := h.sessionUseCase.MarkMessageRead(c.Request().Context(), uid, sessionID, messageID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"read": true})
}

func (h *SessionHandler) MarkSessionRead(c echo.Context) error {
	uid := c.Get("uid").(string)
	sessionID := c.Param("id")

	if err := h.sessionUseCase.MarkSessionRead(c.Request().Context(), uid, sessionID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"read": true})
}
