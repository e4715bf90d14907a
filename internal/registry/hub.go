package registry

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var _ Registry = (*Hub)(nil)

// Hub is the single-process Registry.
type Hub struct {
	log *zap.Logger

	mu    sync.RWMutex
	users map[int64]map[string]Handle
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:   log.With(zap.String("component", "registry.hub")),
		users: make(map[int64]map[string]Handle),
	}
}

func (h *Hub) Join(userID int64, hd Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.users[userID]
	if !ok {
		set = make(map[string]Handle)
		h.users[userID] = set
	}
	if _, dup := set[hd.ID()]; dup {
		return
	}
	set[hd.ID()] = hd
	mSubscriptions.Inc()
}

func (h *Hub) Leave(userID int64, hd Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.users[userID]
	if !ok {
		return
	}
	if _, ok := set[hd.ID()]; !ok {
		return
	}
	delete(set, hd.ID())
	mSubscriptions.Dec()
	if len(set) == 0 {
		delete(h.users, userID)
	}
}

func (h *Hub) Publish(_ context.Context, userID int64, msg Message) {
	h.mu.RLock()
	set := h.users[userID]
	targets := make([]Handle, 0, len(set))
	for _, hd := range set {
		targets = append(targets, hd)
	}
	h.mu.RUnlock()

	for _, hd := range targets {
		err := hd.Send(msg)
		switch {
		case err == nil:
			mDeliveries.WithLabelValues(resultOK).Inc()
		case errors.Is(err, ErrClosed):
			mDeliveries.WithLabelValues(resultClosed).Inc()
		default:
			mDeliveries.WithLabelValues(resultDropped).Inc()
			h.log.Warn("delivery dropped",
				zap.Int64("user_id", userID), zap.String("handle", hd.ID()), zap.Error(err))
		}
	}
}

func (h *Hub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *Hub) Start(context.Context) error { return nil }

// Stop forgets every subscription; sessions still running will find their
// Leave to be a no-op.
func (h *Hub) Stop(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for uid, set := range h.users {
		mSubscriptions.Sub(float64(len(set)))
		delete(h.users, uid)
	}
	return nil
}
