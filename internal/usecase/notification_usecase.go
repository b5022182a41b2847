package usecase

import (
	"context"

	"bazaarlink/internal/domain/entity"
	"bazaarlink/internal/domain/repository"
	"bazaarlink/internal/infrastructure/realtime"
	"bazaarlink/pkg/errors"
	"bazaarlink/pkg/logger"
)

// NotificationUseCase delivers lightweight non-chat events (order status
// changes, new admin messages) to a user's live connections and maintains the
// durable notification rows behind the pull endpoints.
type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	registry         *realtime.Registry
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository, registry *realtime.Registry) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		registry:         registry,
	}
}

type NotifyInput struct {
	Type      string
	Body      string
	SessionID string
}

// unreadSignal is the outbound notification envelope payload. It carries at
// least the updated unread count; recipients tolerate unknown fields.
type unreadSignal struct {
	UnreadCount  int64                     `json:"unread_count"`
	Notification *entity.InAppNotification `json:"notification,omitempty"`
}

// Notify persists the notification row, then best-effort pushes an updated
// unread count to every open connection of the user. Push failure is non
// fatal: the row is durable and the count is recoverable by pull.
func (uc *NotificationUseCase) Notify(ctx context.Context, userID string, input NotifyInput) (*entity.InAppNotification, error) {
	notification := &entity.InAppNotification{
		UserID:    userID,
		Type:      input.Type,
		Body:      input.Body,
		SessionID: input.SessionID,
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		logger.Error("Notify: failed to persist notification for user %s: %v", userID, err)
		return nil, err
	}

	uc.pushUnreadSignal(ctx, userID, notification)

	return notification, nil
}

func (uc *NotificationUseCase) pushUnreadSignal(ctx context.Context, userID string, notification *entity.InAppNotification) {
	count, err := uc.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		logger.Warn("Notify: failed to derive unread count for user %s: %v", userID, err)
		return
	}

	payload := realtime.MarshalEnvelope(realtime.EnvelopeNotification, unreadSignal{
		UnreadCount:  count,
		Notification: notification,
	})
	if payload == nil {
		return
	}

	for _, conn := range uc.registry.ConnectionsFor(userID) {
		outcome := conn.Push(payload)
		if outcome.Status == realtime.DeliveryFailed {
			logger.LogDeliveryFailure(outcome.ConnectionID, outcome.UserID, outcome.Err)
		}
	}
}

// List returns one page of the user's notifications ordered by
// (createdAt desc, id desc). nextCursor is returned only when a full page came
// back, signalling there may be more.
func (uc *NotificationUseCase) List(ctx context.Context, userID, cursorID string, limit int, unreadOnly bool) ([]*entity.InAppNotification, string, error) {
	notifications, err := uc.notificationRepo.ListByUserID(ctx, userID, cursorID, limit, unreadOnly)
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if limit > 0 && len(notifications) == limit {
		nextCursor = notifications[len(notifications)-1].ID
	}

	return notifications, nextCursor, nil
}

// CountUnread re-derives the count from the store on every call; it is never
// cached outside the persistence layer.
func (uc *NotificationUseCase) CountUnread(ctx context.Context, userID string) (int64, error) {
	return uc.notificationRepo.CountUnread(ctx, userID)
}

// MarkRead marks one notification read. Owner-only: a notification belonging
// to someone else reads as not found.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return errors.NotFound("Notification", nil)
	}
	if notification.IsRead {
		return nil
	}

	return uc.notificationRepo.MarkRead(ctx, notificationID)
}
