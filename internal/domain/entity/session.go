package entity

import "time"

// Sender roles carried on every chat message. They drive business meaning and
// client-side presentation, never delivery.
const (
	RoleAdmin     = "ADMIN"
	RoleFree      = "FREE"
	RoleSuperuser = "SUPERUSER"
)

func IsValidSenderRole(role string) bool {
	return role == RoleAdmin || role == RoleFree || role == RoleSuperuser
}

// ChatSession is a persisted conversation thread with a defined member set.
// Sessions are soft-lifecycle: a closed session keeps its messages.
type ChatSession struct {
	ID            string         `json:"id" firestore:"id"`
	Status        string         `json:"status" firestore:"status"` // "open", "closed"
	MemberIDs     []string       `json:"member_ids" firestore:"memberIds"`
	LastMessage   string         `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	UnreadCount   map[string]int `json:"unread_count" firestore:"unreadCount"` // userID -> unread messages
	CreatedAt     time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time      `json:"updated_at" firestore:"updatedAt"`
}

func (s *ChatSession) HasMember(userID string) bool {
	for _, id := range s.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ChatMessage is immutable once created except for the read receipt flag.
// Within a session messages are totally ordered by (createdAt, id) descending.
type ChatMessage struct {
	ID         string    `json:"id" firestore:"id"`
	SessionID  string    `json:"sessionId" firestore:"sessionId"`
	SenderID   string    `json:"senderId" firestore:"senderId"`
	SenderRole string    `json:"senderRole" firestore:"senderRole"`
	Content    string    `json:"content" firestore:"content"`
	IsRead     bool      `json:"isRead" firestore:"isRead"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}
