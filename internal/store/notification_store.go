package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"pinpoint.dev/pinpoint/internal/domain"
)

// InsertNotifications batch-inserts inbox notification rows. One queued
// statement per row in a single round trip; skipped entirely when empty.
func (q *Queries) InsertNotifications(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(`
			INSERT INTO notifications (id, user_id, type, resource_id, resource_type, read, created_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
			n.ID, n.UserID, n.Type, n.ResourceID, n.ResourceType, n.CreatedAt)
	}

	results := q.db.SendBatch(ctx, batch)
	defer results.Close()

	for range notifications {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	return nil
}

// ListNotifications returns a page of a user's inbox, newest first.
func (q *Queries) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, user_id, type, resource_id, resource_type, read, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT read)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.ResourceID,
			&n.ResourceType, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountNotifications returns the total matching a user's inbox filter.
func (q *Queries) CountNotifications(ctx context.Context, userID string, unreadOnly bool) (int, error) {
	var count int
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT read)`,
		userID, unreadOnly).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead marks one of the user's notifications read.
// Returns rows affected: 0 means not found or not owned by the user.
func (q *Queries) MarkNotificationRead(ctx context.Context, notificationID, userID string) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE notifications SET read = TRUE, read_at = now()
		WHERE id = $1 AND user_id = $2 AND NOT read`,
		notificationID, userID)
	if err != nil {
		return 0, fmt.Errorf("mark notification read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// NotificationExists reports whether a notification belongs to the user.
func (q *Queries) NotificationExists(ctx context.Context, notificationID, userID string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2)`,
		notificationID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("notification exists: %w", err)
	}
	return exists, nil
}

// MarkAllNotificationsRead marks all of the user's unread notifications read.
func (q *Queries) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE notifications SET read = TRUE, read_at = now()
		WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteNotificationsBefore removes notifications created before the cutoff.
// Used by the retention cleanup job.
func (q *Queries) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete notifications before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}
