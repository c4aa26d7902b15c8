package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNotification(userID, message, link string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now(),
	}
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}
