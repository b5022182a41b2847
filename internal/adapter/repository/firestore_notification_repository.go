package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bazaarlink/internal/domain/entity"
	"bazaarlink/internal/domain/repository"
	"bazaarlink/pkg/errors"
	"bazaarlink/pkg/logger"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.InAppNotification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("notifications").Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return errors.Persistence("Failed to create notification", err)
	}

	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*entity.InAppNotification, error) {
	doc, err := r.client.Collection("notifications").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Notification", err)
		}
		return nil, errors.Persistence("Failed to get notification", err)
	}

	var notification entity.InAppNotification
	if err := doc.DataTo(&notification); err != nil {
		return nil, errors.Persistence("Failed to parse notification data", err)
	}

	return &notification, nil
}

func (r *firestoreNotificationRepository) ListByUserID(ctx context.Context, userID, cursorID string, limit int, unreadOnly bool) ([]*entity.InAppNotification, error) {
	query := r.client.Collection("notifications").
		Where("userId", "==", userID)
	if unreadOnly {
		query = query.Where("isRead", "==", false)
	}
	query = query.OrderBy("createdAt", firestore.Desc).OrderBy("id", firestore.Desc)

	if cursorID != "" {
		cursor, err := r.GetByID(ctx, cursorID)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				return nil, errors.BadRequest("Unknown pagination cursor", err)
			}
			return nil, err
		}
		query = query.StartAfter(cursor.CreatedAt, cursor.ID)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var notifications []*entity.InAppNotification

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating notifications for user %s: %v", userID, err)
			return nil, errors.Persistence("Failed to iterate notifications", err)
		}

		var notification entity.InAppNotification
		if err := doc.DataTo(&notification); err != nil {
			return nil, errors.Persistence("Failed to parse notification data", err)
		}

		notifications = append(notifications, &notification)
	}

	return notifications, nil
}

// CountUnread re-derives the unread count from the store on every call. The
// count is never cached outside the persistence layer.
func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	docs, err := r.client.Collection("notifications").
		Where("userId", "==", userID).
		Where("isRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Persistence("Failed to count unread notifications", err)
	}

	return int64(len(docs)), nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.client.Collection("notifications").Doc(id).Update(ctx, []firestore.Update{
		{Path: "isRead", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Notification", err)
		}
		return errors.Persistence("Failed to mark notification read", err)
	}

	return nil
}
