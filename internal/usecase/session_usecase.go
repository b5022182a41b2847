package usecase

import (
	"context"
	"sync"
	"time"

	"bazaarlink/internal/domain/entity"
	"bazaarlink/internal/domain/repository"
	"bazaarlink/internal/infrastructure/ratelimit"
	"bazaarlink/pkg/errors"
	"bazaarlink/pkg/logger"
)

// SessionUseCase is the authoritative source for "who is allowed to see
// messages in session S". Membership lives in the store; a small cache serves
// dispatch-time lookups and is invalidated synchronously on every mutation, so
// a membership change is visible to the very next dispatched message.
type SessionUseCase struct {
	sessionRepo repository.SessionRepository
	rateLimiter *ratelimit.RateLimiter

	mu      sync.RWMutex
	members map[string][]string // sessionID -> committed member snapshot
	gens    map[string]uint64   // sessionID -> mutation generation
}

func NewSessionUseCase(sessionRepo repository.SessionRepository, rateLimiter *ratelimit.RateLimiter) *SessionUseCase {
	return &SessionUseCase{
		sessionRepo: sessionRepo,
		rateLimiter: rateLimiter,
		members:     make(map[string][]string),
		gens:        make(map[string]uint64),
	}
}

func (uc *SessionUseCase) CreateSession(ctx context.Context, creatorID string) (*entity.ChatSession, error) {
	if uc.rateLimiter != nil {
		if allowed, _ := uc.rateLimiter.Allow(creatorID, "create_session"); !allowed {
			return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another session")
		}
	}

	session := &entity.ChatSession{
		Status:        "open",
		MemberIDs:     []string{creatorID},
		UnreadCount:   make(map[string]int),
		LastMessageAt: time.Now(),
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		logger.Error("CreateSession: failed to create session for user %s: %v", creatorID, err)
		return nil, err
	}

	return session, nil
}

func (uc *SessionUseCase) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatSession, int64, error) {
	return uc.sessionRepo.ListByUserID(ctx, userID, limit, offset)
}

func (uc *SessionUseCase) GetSession(ctx context.Context, userID, sessionID string) (*entity.ChatSession, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasMember(userID) {
		return nil, errors.Forbidden("User is not a member of this session", nil)
	}
	return session, nil
}

// AddMember adds userID to the session. Idempotent: re-adding an existing
// member leaves the store unchanged.
func (uc *SessionUseCase) AddMember(ctx context.Context, sessionID, userID string) error {
	if err := uc.sessionRepo.AddMember(ctx, sessionID, userID); err != nil {
		return err
	}
	uc.invalidate(sessionID)
	return nil
}

// RemoveMember removes userID from the session. Idempotent.
func (uc *SessionUseCase) RemoveMember(ctx context.Context, sessionID, userID string) error {
	if err := uc.sessionRepo.RemoveMember(ctx, sessionID, userID); err != nil {
		return err
	}
	uc.invalidate(sessionID)
	return nil
}

// MembersOf returns the committed member set for a session. The dispatcher is
// its only realtime consumer; the returned slice is a copy and safe to hold
// across the fan-out.
func (uc *SessionUseCase) MembersOf(ctx context.Context, sessionID string) ([]string, error) {
	uc.mu.RLock()
	cached, ok := uc.members[sessionID]
	gen := uc.gens[sessionID]
	uc.mu.RUnlock()
	if ok {
		return append([]string(nil), cached...), nil
	}

	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snapshot := append([]string(nil), session.MemberIDs...)

	// The fetch ran without the lock held. Only cache the snapshot if no
	// mutation committed in the meantime; a snapshot read before a concurrent
	// invalidation must never outlive it.
	uc.mu.Lock()
	if uc.gens[sessionID] == gen {
		uc.members[sessionID] = snapshot
	}
	uc.mu.Unlock()

	return append([]string(nil), snapshot...), nil
}

func (uc *SessionUseCase) invalidate(sessionID string) {
	uc.mu.Lock()
	delete(uc.members, sessionID)
	uc.gens[sessionID]++
	uc.mu.Unlock()
}

// GetMessages returns persisted history, membership-gated. This is the pull
// path through which offline members recover messages they were never pushed.
func (uc *SessionUseCase) GetMessages(ctx context.Context, userID, sessionID string, limit, offset int) ([]*entity.ChatMessage, int64, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if !session.HasMember(userID) {
		return nil, 0, errors.Forbidden("User is not a member of this session", nil)
	}

	return uc.sessionRepo.ListMessages(ctx, sessionID, limit, offset)
}

// MarkMessageRead flips one message's read receipt. Membership-gated like
// every other read of session content.
func (uc *SessionUseCase) MarkMessageRead(ctx context.Context, userID, sessionID, messageID string) error {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.HasMember(userID) {
		return errors.Forbidden("User is not a member of this session", nil)
	}

	return uc.sessionRepo.MarkMessageRead(ctx, sessionID, messageID)
}

// MarkSessionRead zeroes the caller's unread counter for the session.
func (uc *SessionUseCase) MarkSessionRead(ctx context.Context, userID, sessionID string) error {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.HasMember(userID) {
		return errors.Forbidden("User is not a member of this session", nil)
	}

	if session.UnreadCount == nil {
		session.UnreadCount = make(map[string]int)
	}
	session.UnreadCount[userID] = 0

	return uc.sessionRepo.Update(ctx, session)
}
