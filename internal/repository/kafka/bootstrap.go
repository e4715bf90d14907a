package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BootstrapConsumer makes sure the consumed topic exists before building the
// reader. A failed ensure is logged and the reader still starts; it keeps
// fetching until the topic appears.
func BootstrapConsumer(ctx context.Context, cfg *ConsumerConfig, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	err := EnsureTopic(ctx, cfg.Brokers, TopicSpec{
		Name:    cfg.Topic,
		MaxWait: 5 * time.Second,
	}, logger)
	if err != nil {
		logger.Warn("ensure consumer topic", zap.String("topic", cfg.Topic), zap.Error(err))
	}
	return NewConsumer(cfg)
}
