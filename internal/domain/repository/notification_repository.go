package repository

import (
	"context"

	"bazaarlink/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.InAppNotification) error
	GetByID(ctx context.Context, id string) (*entity.InAppNotification, error)

	// ListByUserID returns notifications ordered by (createdAt desc, id desc).
	// cursorID is the last-seen notification id, empty for the first page.
	ListByUserID(ctx context.Context, userID, cursorID string, limit int, unreadOnly bool) ([]*entity.InAppNotification, error)

	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
}
