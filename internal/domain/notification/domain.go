package notification

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a notification does not exist or belongs to
// another user; callers cannot tell the two apart.
var ErrNotFound = errors.New("notification not found")

// Notification is immutable after creation; deletion by its owner is the only
// transition.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
