package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/Classbell/internal/domain/notification"
)

var _ notification.Store = (*NotificationRepoImpl)(nil)

type NotificationRepoImpl struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepoImpl { return &NotificationRepoImpl{db: db} }

const (
	qNotifInsert = `
INSERT INTO notifications (user_id, content)
VALUES ($1, $2)
RETURNING id, user_id, content, created_at;
`
	qNotifByUser = `
SELECT id, user_id, content, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC, id DESC;
`
	qNotifDelete = `
DELETE FROM notifications
WHERE id = $1 AND user_id = $2;
`
)

func (r *NotificationRepoImpl) Create(ctx context.Context, userID int64, content string) (*notification.Notification, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n notification.Notification
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qNotifInsert, userID, content).
		Scan(&n.ID, &n.UserID, &n.Content, &n.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepoImpl) ListByUser(ctx context.Context, userID int64) ([]*notification.Notification, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qNotifByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*notification.Notification, 0)
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *NotificationRepoImpl) DeleteByID(ctx context.Context, userID, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qNotifDelete, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}
