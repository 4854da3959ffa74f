package postgres

import (
	"context"
	"time"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// InsertNotification inserts a notification row.
func (s *Store) InsertNotification(ctx context.Context, n *store.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, severity, category, message, read, related_id, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Severity,
		n.Category,
		n.Message,
		n.Read,
		n.RelatedID,
		n.Link,
		n.CreatedAt,
	)
	return err
}

func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]store.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, severity, category, message, read, related_id, link, created_at
		FROM notifications
		WHERE user_id = $1
	`
	if unreadOnly {
		query += " AND NOT read"
	}
	query += " ORDER BY created_at DESC LIMIT $2"

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []store.Notification
	for rows.Next() {
		var n store.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Severity, &n.Category, &n.Message,
			&n.Read, &n.RelatedID, &n.Link, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks one notification read, scoped to its owner.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteNotificationsBefore removes notifications created before the cutoff.
func (s *Store) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
