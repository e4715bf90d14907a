package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/notification"
)

var _ notification.Store = (*NotificationRepo)(nil)

// NotificationRepo is a process-local notification.Store.
type NotificationRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]notification.Notification
	now    func() time.Time
}

func NewNotificationRepo(now func() time.Time) *NotificationRepo {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &NotificationRepo{byID: make(map[int64]notification.Notification), now: now}
}

func (r *NotificationRepo) Create(ctx context.Context, userID int64, content string) (*notification.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	n := notification.Notification{ID: r.nextID, UserID: userID, Content: content, CreatedAt: r.now()}
	r.byID[n.ID] = n
	return &n, nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID int64) ([]*notification.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	out := make([]*notification.Notification, 0)
	for _, n := range r.byID {
		if n.UserID == userID {
			nc := n
			out = append(out, &nc)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *NotificationRepo) DeleteByID(ctx context.Context, userID, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok || n.UserID != userID {
		return notification.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
