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

type firestoreSessionRepository struct {
	client *firestore.Client
}

func NewFirestoreSessionRepository(client *firestore.Client) repository.SessionRepository {
	return &firestoreSessionRepository{
		client: client,
	}
}

func (r *firestoreSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = "open"
	}
	if session.UnreadCount == nil {
		session.UnreadCount = make(map[string]int)
	}

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.client.Collection("chat_sessions").Doc(session.ID).Set(ctx, session)
	if err != nil {
		return errors.Persistence("Failed to create session", err)
	}

	return nil
}

func (r *firestoreSessionRepository) GetByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	doc, err := r.client.Collection("chat_sessions").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Session", err)
		}
		return nil, errors.Persistence("Failed to get session", err)
	}

	var session entity.ChatSession
	if err := doc.DataTo(&session); err != nil {
		return nil, errors.Persistence("Failed to parse session data", err)
	}

	return &session, nil
}

func (r *firestoreSessionRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatSession, int64, error) {
	query := r.client.Collection("chat_sessions").
		Where("memberIds", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching sessions for user %s: %v", userID, err)
		return nil, 0, errors.Persistence("Failed to fetch sessions", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var sessions []*entity.ChatSession
	for i := start; i < end; i++ {
		var session entity.ChatSession
		if err := allDocs[i].DataTo(&session); err != nil {
			logger.Warn("Skipping malformed session document for user %s: %v", userID, err)
			continue
		}
		sessions = append(sessions, &session)
	}

	return sessions, total, nil
}

func (r *firestoreSessionRepository) Update(ctx context.Context, session *entity.ChatSession) error {
	session.UpdatedAt = time.Now()

	_, err := r.client.Collection("chat_sessions").Doc(session.ID).Set(ctx, session)
	if err != nil {
		return errors.Persistence("Failed to update session", err)
	}

	return nil
}

func (r *firestoreSessionRepository) AddMember(ctx context.Context, sessionID, userID string) error {
	_, err := r.client.Collection("chat_sessions").Doc(sessionID).Update(ctx, []firestore.Update{
		{Path: "memberIds", Value: firestore.ArrayUnion(userID)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Session", err)
		}
		return errors.Persistence("Failed to add member", err)
	}

	return nil
}

func (r *firestoreSessionRepository) RemoveMember(ctx context.Context, sessionID, userID string) error {
	_, err := r.client.Collection("chat_sessions").Doc(sessionID).Update(ctx, []firestore.Update{
		{Path: "memberIds", Value: firestore.ArrayRemove(userID)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Session", err)
		}
		return errors.Persistence("Failed to remove member", err)
	}

	return nil
}

func (r *firestoreSessionRepository) CreateMessage(ctx context.Context, message *entity.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("chat_sessions").Doc(message.SessionID).
		Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Persistence("Failed to create message", err)
	}

	return nil
}

func (r *firestoreSessionRepository) ListMessages(ctx context.Context, sessionID string, limit, offset int) ([]*entity.ChatMessage, int64, error) {
	query := r.client.Collection("chat_sessions").Doc(sessionID).Collection("messages").
		OrderBy("createdAt", firestore.Desc).
		OrderBy("id", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while counting messages for session %s: %v", sessionID, err)
		return nil, 0, errors.Persistence("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.ChatMessage

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for session %s: %v", sessionID, err)
			return nil, 0, errors.Persistence("Failed to iterate messages", err)
		}

		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, 0, errors.Persistence("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreSessionRepository) MarkMessageRead(ctx context.Context, sessionID, messageID string) error {
	_, err := r.client.Collection("chat_sessions").Doc(sessionID).
		Collection("messages").Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "isRead", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Message", err)
		}
		return errors.Persistence("Failed to update message read status", err)
	}

	return nil
}
