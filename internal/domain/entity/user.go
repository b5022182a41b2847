package entity

import "time"

type User struct {
	ID        string    `json:"id" firestore:"id"`
	Email     string    `json:"email" firestore:"email"`
	Username  string    `json:"username" firestore:"username"`
	Role      string    `json:"role" firestore:"role"` // "ADMIN", "FREE", "SUPERUSER"
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
