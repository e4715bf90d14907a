package worker

import (
	"context"
	"fmt"

	"github.com/NordCoder/Classbell/internal/domain/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, userID int64, content string) error
	PublishBatch(ctx context.Context, userIDs []int64, content string) error
}

var (
	mConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_worker_events_consumed_total",
		Help: "Domain events taken from the work queue, by type.",
	}, []string{"type"})
	mDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_worker_events_dropped_total",
		Help: "Events dropped because they could not be turned into notifications.",
	})
	mFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_worker_events_failed_total",
		Help: "Events whose publication failed.",
	})
)

// Handler turns domain events into notifications.
type Handler struct {
	Pub Publisher
	Log *zap.Logger
}

func NewHandler(pub Publisher, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Pub: pub, Log: log.With(zap.String("component", "notify-worker.handler"))}
}

// HandleEvent returns nil for events that can never succeed so the consumer
// moves past them.
func (h *Handler) HandleEvent(ctx context.Context, env event.Envelope) error {
	mConsumed.WithLabelValues(string(env.Type)).Inc()

	n, err := env.Notice()
	if err != nil {
		mDropped.Inc()
		h.Log.Warn("dropping event", zap.String("event_id", env.ID), zap.String("type", string(env.Type)), zap.Error(err))
		return nil
	}

	if len(n.Targets) == 1 {
		err = h.Pub.Publish(ctx, n.Targets[0], n.Content)
	} else {
		err = h.Pub.PublishBatch(ctx, n.Targets, n.Content)
	}
	if err != nil {
		mFailed.Inc()
		return fmt.Errorf("event %s: %w", env.ID, err)
	}

	h.Log.Debug("event handled", zap.String("event_id", env.ID), zap.Int("targets", len(n.Targets)))
	return nil
}
