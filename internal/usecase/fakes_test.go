package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bazaarlink/internal/domain/entity"
	"bazaarlink/internal/domain/repository"
	"bazaarlink/pkg/errors"
)

// fakeSessionRepo is an in-memory SessionRepository for exercising the
// usecases without Firestore.
type fakeSessionRepo struct {
	mu                sync.Mutex
	sessions          map[string]*entity.ChatSession
	messages          map[string][]*entity.ChatMessage
	failCreateMessage bool
	getCalls          int
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[string]*entity.ChatSession),
		messages: make(map[string][]*entity.ChatMessage),
	}
}

func (r *fakeSessionRepo) seed(id string, members ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &entity.ChatSession{
		ID:          id,
		Status:      "open",
		MemberIDs:   append([]string(nil), members...),
		UnreadCount: make(map[string]int),
		CreatedAt:   time.Now(),
	}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	copied := copySession(session)
	r.sessions[session.ID] = copied
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	session, ok := r.sessions[id]
	if !ok {
		return nil, errors.NotFound("Session", nil)
	}
	return copySession(session), nil
}

func (r *fakeSessionRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.ChatSession
	for _, session := range r.sessions {
		if session.HasMember(userID) {
			result = append(result, copySession(session))
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return errors.NotFound("Session", nil)
	}
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) AddMember(ctx context.Context, sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return errors.NotFound("Session", nil)
	}
	if !session.HasMember(userID) {
		session.MemberIDs = append(session.MemberIDs, userID)
	}
	return nil
}

func (r *fakeSessionRepo) RemoveMember(ctx context.Context, sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return errors.NotFound("Session", nil)
	}
	kept := session.MemberIDs[:0]
	for _, id := range session.MemberIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	session.MemberIDs = kept
	return nil
}

func (r *fakeSessionRepo) CreateMessage(ctx context.Context, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateMessage {
		return errors.Persistence("Failed to create message", nil)
	}
	copied := *message
	r.messages[message.SessionID] = append(r.messages[message.SessionID], &copied)
	return nil
}

func (r *fakeSessionRepo) ListMessages(ctx context.Context, sessionID string, limit, offset int) ([]*entity.ChatMessage, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.messages[sessionID]
	result := make([]*entity.ChatMessage, len(stored))
	for i, message := range stored {
		copied := *message
		result[i] = &copied
	}
	return result, int64(len(stored)), nil
}

func (r *fakeSessionRepo) MarkMessageRead(ctx context.Context, sessionID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages[sessionID] {
		if message.ID == messageID {
			message.IsRead = true
			return nil
		}
	}
	return errors.NotFound("Message", nil)
}

func (r *fakeSessionRepo) messageCount(sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages[sessionID])
}

func (r *fakeSessionRepo) storedSession(id string) *entity.ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copySession(r.sessions[id])
}

func copySession(session *entity.ChatSession) *entity.ChatSession {
	if session == nil {
		return nil
	}
	copied := *session
	copied.MemberIDs = append([]string(nil), session.MemberIDs...)
	copied.UnreadCount = make(map[string]int, len(session.UnreadCount))
	for userID, count := range session.UnreadCount {
		copied.UnreadCount[userID] = count
	}
	return &copied
}

// fakeNotificationRepo is an in-memory NotificationRepository with the same
// (createdAt desc, id desc) ordering and cursor semantics as the real store.
type fakeNotificationRepo struct {
	mu         sync.Mutex
	seq        int
	rows       []*entity.InAppNotification
	failCreate bool
}

var _ repository.NotificationRepository = (*fakeNotificationRepo)(nil)

var fakeNotificationEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.InAppNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.Persistence("Failed to create notification", nil)
	}
	r.seq++
	if notification.ID == "" {
		notification.ID = fmt.Sprintf("n%03d", r.seq)
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = fakeNotificationEpoch.Add(time.Duration(r.seq) * time.Second)
	}
	copied := *notification
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*entity.InAppNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Notification", nil)
}

func (r *fakeNotificationRepo) ListByUserID(ctx context.Context, userID, cursorID string, limit int, unreadOnly bool) ([]*entity.InAppNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cursor *entity.InAppNotification
	if cursorID != "" {
		for _, row := range r.rows {
			if row.ID == cursorID {
				cursor = row
				break
			}
		}
		if cursor == nil {
			return nil, errors.BadRequest("Invalid pagination cursor", nil)
		}
	}

	var filtered []*entity.InAppNotification
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		if unreadOnly && row.IsRead {
			continue
		}
		if cursor != nil && !strictlyAfter(row, cursor) {
			continue
		}
		copied := *row
		filtered = append(filtered, &copied)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		}
		return filtered[i].ID > filtered[j].ID
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// strictlyAfter reports whether row comes after cursor in the
// (createdAt desc, id desc) ordering.
func strictlyAfter(row, cursor *entity.InAppNotification) bool {
	if !row.CreatedAt.Equal(cursor.CreatedAt) {
		return row.CreatedAt.Before(cursor.CreatedAt)
	}
	return row.ID < cursor.ID
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.UserID == userID && !row.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			row.IsRead = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}
