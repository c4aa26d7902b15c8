package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, message, link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Message, n.Link, n.IsRead, n.CreatedAt,
	)
	return mapError("create notification", err)
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, message, link, is_read, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, mapError("list notifications", err)
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, mapError("scan notification", err)
		}
		out = append(out, &n)
	}
	return out, mapError("list notifications", rows.Err())
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	return mapError("mark notifications read", err)
}
