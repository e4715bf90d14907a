package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/Classbell/internal/domain/notification"
	"github.com/NordCoder/Classbell/internal/domain/user"
	"github.com/NordCoder/Classbell/internal/obs"
	"github.com/NordCoder/Classbell/internal/obs/retry"
	"github.com/NordCoder/Classbell/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Broadcaster is the part of registry.Registry the publisher needs.
type Broadcaster interface {
	Publish(ctx context.Context, userID int64, msg registry.Message)
}

var (
	mPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_published_total", Help: "Notifications persisted and pushed.",
	})
	mSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_skipped_total", Help: "Publishes skipped because the target user is missing.",
	})
	mPersistErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_persist_errors_total", Help: "Publishes aborted by a storage failure.",
	})
)

// Publisher persists a notification, then pushes it to connected sessions.
// Persistence is mandatory; the push is best-effort.
type Publisher struct {
	store   notification.Store
	users   user.Directory
	bus     Broadcaster
	persist retry.Policy
	log     *zap.Logger
}

func NewPublisher(store notification.Store, users user.Directory, bus Broadcaster, persist retry.Policy, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		store:   store,
		users:   users,
		bus:     bus,
		persist: persist,
		log:     log.With(zap.String("component", "notify.publisher")),
	}
}

// Publish returns an error only when the notification could not be stored.
// A missing target user is logged and skipped.
func (p *Publisher) Publish(ctx context.Context, userID int64, content string) error {
	ctx, span := otel.Tracer("notify.publisher").Start(ctx, "notify.publish",
		trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()
	log := obs.WithTrace(ctx, p.log).With(zap.Int64("user_id", userID))

	if p.users != nil {
		u, err := p.users.GetByID(ctx, userID)
		if errors.Is(err, user.ErrNotFound) || (err == nil && !u.IsActive) {
			mSkipped.Inc()
			log.Warn("target user not found, skipping")
			return nil
		}
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("lookup user %d: %w", userID, err)
		}
	}

	var n *notification.Notification
	err := retry.Do(ctx, func() error {
		var cerr error
		n, cerr = p.store.Create(ctx, userID, content)
		return cerr
	}, p.persist)
	if err != nil {
		mPersistErrors.Inc()
		span.RecordError(err)
		return fmt.Errorf("persist notification: %w", err)
	}

	p.bus.Publish(ctx, userID, registry.Message{ID: n.ID, Text: n.Content, CreatedAt: n.CreatedAt})
	mPublished.Inc()
	log.Debug("notification published", zap.Int64("notification_id", n.ID))
	return nil
}

// PublishBatch publishes the same content to every user, one notification
// each. A failure for one user does not stop the others.
func (p *Publisher) PublishBatch(ctx context.Context, userIDs []int64, content string) error {
	var errs []error
	for _, id := range userIDs {
		if err := p.Publish(ctx, id, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
