package entity

import "time"

// InAppNotification is a lightweight, durable event owned by a single user:
// order status changes, new admin messages. The unread count is always derived
// from the persisted rows, never cached elsewhere.
type InAppNotification struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Type      string    `json:"type" firestore:"type"` // "order_status", "admin_message"
	Body      string    `json:"body" firestore:"body"`
	SessionID string    `json:"session_id,omitempty" firestore:"sessionId,omitempty"`
	IsRead    bool      `json:"is_read" firestore:"isRead"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
