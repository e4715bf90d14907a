package notification

import "context"

type Store interface {
	// Create persists a new record with a fresh id and the current time.
	Create(ctx context.Context, userID int64, content string) (*Notification, error)
	// ListByUser returns a snapshot of the user's notifications, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*Notification, error)
	// DeleteByID removes the record only when it is owned by userID.
	DeleteByID(ctx context.Context, userID, id int64) error
}
