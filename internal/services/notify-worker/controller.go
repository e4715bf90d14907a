package worker

import (
	"context"
	"errors"

	"github.com/NordCoder/Classbell/internal/domain/event"
	kafkax "github.com/NordCoder/Classbell/internal/repository/kafka"
	"go.uber.org/zap"
)

type Controller struct {
	Log *zap.Logger
	Sub *kafkax.Consumer
	UC  *Handler
}

// Run consumes the events topic until ctx ends.
func (c *Controller) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(func(ctx context.Context, _ []byte, env *event.Envelope) error {
		return c.UC.HandleEvent(ctx, *env)
	})

	if err := c.Sub.Consume(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		c.Log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return nil
}
