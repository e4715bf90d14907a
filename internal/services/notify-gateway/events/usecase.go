package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/event"
	"github.com/NordCoder/Classbell/internal/domain/outbox"
	"go.uber.org/zap"
)

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Usecase accepts domain events from other services and stores them in the
// outbox; the outbox relay moves them to the work queue.
type Usecase struct {
	tx     Transactor
	outbox outbox.Repository
	clk    func() time.Time
	log    *zap.Logger
}

func New(tx Transactor, repo outbox.Repository, clk func() time.Time, log *zap.Logger) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{tx: tx, outbox: repo, clk: clk, log: log.With(zap.String("component", "events.usecase"))}
}

// Submit validates the event and enqueues it. Validation failures wrap
// event.ErrUnknownType or event.ErrInvalidPayload.
func (u *Usecase) Submit(ctx context.Context, typ event.Type, payload json.RawMessage) (event.Envelope, error) {
	env, err := event.New(typ, payload, u.clk())
	if err != nil {
		return event.Envelope{}, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return event.Envelope{}, fmt.Errorf("marshal envelope: %w", err)
	}

	err = u.tx.WithTx(ctx, func(ctx context.Context) error {
		return u.outbox.Enqueue(ctx, env.ID, outbox.KindDomainEvent, data)
	})
	if err != nil {
		return event.Envelope{}, fmt.Errorf("enqueue event: %w", err)
	}

	u.log.Debug("event accepted", zap.String("event_id", env.ID), zap.String("type", string(env.Type)))
	return env, nil
}
