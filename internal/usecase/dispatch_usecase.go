package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"bazaarlink/internal/domain/entity"
	"bazaarlink/internal/domain/repository"
	"bazaarlink/internal/infrastructure/ratelimit"
	"bazaarlink/internal/infrastructure/realtime"
	"bazaarlink/pkg/errors"
	"bazaarlink/pkg/logger"
)

// DispatchUseCase is the single path by which a chat message becomes durable
// and delivered. Durability precedes delivery: nothing is pushed for a message
// the store did not accept.
type DispatchUseCase struct {
	sessionRepo repository.SessionRepository
	sessions    *SessionUseCase
	notifier    *NotificationUseCase
	registry    *realtime.Registry
	rateLimiter *ratelimit.RateLimiter

	mu           sync.Mutex
	sessionLocks map[string]*sync.Mutex
}

func NewDispatchUseCase(
	sessionRepo repository.SessionRepository,
	sessions *SessionUseCase,
	notifier *NotificationUseCase,
	registry *realtime.Registry,
	rateLimiter *ratelimit.RateLimiter,
) *DispatchUseCase {
	return &DispatchUseCase{
		sessionRepo:  sessionRepo,
		sessions:     sessions,
		notifier:     notifier,
		registry:     registry,
		rateLimiter:  rateLimiter,
		sessionLocks: make(map[string]*sync.Mutex),
	}
}

// Dispatch validates one inbound frame from senderID, persists it and fans it
// out to every currently-connected member of the session except the sender.
// Delivery failures to individual connections are isolated and never abort
// delivery to the rest of the fan-out.
func (uc *DispatchUseCase) Dispatch(ctx context.Context, senderID string, payload []byte) (*entity.ChatMessage, []realtime.DeliveryOutcome, error) {
	if uc.rateLimiter != nil {
		if allowed, _ := uc.rateLimiter.Allow(senderID, "send_message"); !allowed {
			return nil, nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
		}
	}

	frame, err := realtime.DecodeInboundFrame(payload)
	if err != nil {
		return nil, nil, err
	}

	if frame.SenderID != senderID {
		return nil, nil, errors.Unauthorized("Frame sender does not match authenticated user", nil)
	}

	// One inbound message at a time per session, so delivery order to any one
	// connection matches persistence commit order within that session.
	lock := uc.sessionLock(frame.SessionID)
	lock.Lock()
	defer lock.Unlock()

	// Membership snapshot taken at dispatch start. A removal that commits
	// mid-dispatch does not retract this in-flight fan-out; it is honored from
	// the next dispatch onward.
	members, err := uc.sessions.MembersOf(ctx, frame.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if !containsString(members, senderID) {
		return nil, nil, errors.Forbidden("Sender is not a member of this session", nil)
	}

	message := &entity.ChatMessage{
		ID:         uuid.New().String(),
		SessionID:  frame.SessionID,
		SenderID:   frame.SenderID,
		SenderRole: frame.SenderRole,
		Content:    frame.Content,
		IsRead:     *frame.IsRead,
		CreatedAt:  time.Now(),
	}

	if err := uc.sessionRepo.CreateMessage(ctx, message); err != nil {
		logger.Error("Dispatch: failed to persist message for session %s: %v", frame.SessionID, err)
		return nil, nil, err
	}

	uc.recordActivity(ctx, message, members)

	outcomes := uc.fanOut(members, senderID, message)

	// New admin messages additionally raise durable notifications so offline
	// members see them on their next pull.
	if message.SenderRole == entity.RoleAdmin && uc.notifier != nil {
		uc.notifyAdminMessage(ctx, members, message)
	}

	return message, outcomes, nil
}

// recordActivity bumps the session's last-message info and unread counters.
// The message is already durable, so a failure here is logged, not fatal.
func (uc *DispatchUseCase) recordActivity(ctx context.Context, message *entity.ChatMessage, members []string) {
	session, err := uc.sessionRepo.GetByID(ctx, message.SessionID)
	if err != nil {
		logger.Warn("Dispatch: failed to load session %s for activity update: %v", message.SessionID, err)
		return
	}

	session.LastMessage = message.Content
	session.LastMessageAt = message.CreatedAt
	if session.UnreadCount == nil {
		session.UnreadCount = make(map[string]int)
	}
	for _, member := range members {
		if member != message.SenderID {
			session.UnreadCount[member]++
		}
	}

	if err := uc.sessionRepo.Update(ctx, session); err != nil {
		logger.Warn("Dispatch: failed to update session %s activity: %v", message.SessionID, err)
	}
}

// fanOut pushes the serialized message to every open connection of every
// member except the sender. Each member receives at most one copy per
// connection per dispatch; members with zero open connections receive nothing
// and recover the message from persisted history.
func (uc *DispatchUseCase) fanOut(members []string, senderID string, message *entity.ChatMessage) []realtime.DeliveryOutcome {
	payload := realtime.MarshalEnvelope(realtime.EnvelopeMessage, message)
	if payload == nil {
		return nil
	}

	var outcomes []realtime.DeliveryOutcome
	for _, member := range members {
		if member == senderID {
			continue
		}
		for _, conn := range uc.registry.ConnectionsFor(member) {
			outcome := conn.Push(payload)
			if outcome.Status == realtime.DeliveryFailed {
				logger.LogDeliveryFailure(outcome.ConnectionID, outcome.UserID, outcome.Err)
			}
			outcomes = append(outcomes, outcome)
		}
	}

	return outcomes
}

func (uc *DispatchUseCase) notifyAdminMessage(ctx context.Context, members []string, message *entity.ChatMessage) {
	for _, member := range members {
		if member == message.SenderID {
			continue
		}
		_, err := uc.notifier.Notify(ctx, member, NotifyInput{
			Type:      "admin_message",
			Body:      message.Content,
			SessionID: message.SessionID,
		})
		if err != nil {
			logger.Warn("Dispatch: failed to notify member %s about admin message: %v", member, err)
		}
	}
}

func (uc *DispatchUseCase) sessionLock(sessionID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	lock, ok := uc.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		uc.sessionLocks[sessionID] = lock
	}
	return lock
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
