// Package registry maps user ids to the connection handles currently
// subscribed to that user's notification channel.
package registry

import (
	"context"
	"errors"
	"time"
)

var (
	ErrClosed     = errors.New("handle closed")
	ErrBufferFull = errors.New("handle buffer full")
)

// Message is the payload fanned out to every handle of a user. It is also the
// outbound frame written to clients.
type Message struct {
	ID        int64     `json:"id,omitempty"`
	Text      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Handle is one open connection. Send must not block.
type Handle interface {
	ID() string
	Send(msg Message) error
}

type Registry interface {
	// Join is idempotent per handle id.
	Join(userID int64, h Handle)
	// Leave is a no-op when the handle is not joined.
	Leave(userID int64, h Handle)
	// Publish is best-effort and never reports delivery failures.
	Publish(ctx context.Context, userID int64, msg Message)
	Subscribers(userID int64) int

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
