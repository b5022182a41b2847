package repository

import (
	"context"

	"bazaarlink/internal/domain/entity"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	GetByID(ctx context.Context, id string) (*entity.ChatSession, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatSession, int64, error)
	Update(ctx context.Context, session *entity.ChatSession) error

	// Membership mutations are idempotent at the store level.
	AddMember(ctx context.Context, sessionID, userID string) error
	RemoveMember(ctx context.Context, sessionID, userID string) error

	// Message methods
	CreateMessage(ctx context.Context, message *entity.ChatMessage) error
	ListMessages(ctx context.Context, sessionID string, limit, offset int) ([]*entity.ChatMessage, int64, error)
	MarkMessageRead(ctx context.Context, sessionID, messageID string) error
}
