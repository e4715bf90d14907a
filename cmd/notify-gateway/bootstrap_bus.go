package main

import (
	"context"

	config "github.com/NordCoder/Classbell/internal/config/notify-gateway"
	"github.com/NordCoder/Classbell/internal/registry"
	"go.uber.org/zap"
)

// initBus returns the registry sessions join and a health probe for it.
func initBus(ctx context.Context, cfg *config.Config, logger *zap.Logger) (registry.Registry, func(context.Context) error, error) {
	if cfg.Bus.Driver != config.BusRedis {
		logger.Info("bus: in-process hub")
		return registry.NewHub(logger), func(context.Context) error { return nil }, nil
	}

	client, err := registry.NewRedisClient(ctx, cfg.Bus.Redis)
	if err != nil {
		return nil, nil, err
	}
	bus := registry.NewRedisBus(client, cfg.Bus.Redis.ChannelPrefix, logger)
	if err := bus.Start(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Info("bus: redis", zap.String("addr", cfg.Bus.Redis.Addr))
	return bus, func(ctx context.Context) error { return client.Ping(ctx).Err() }, nil
}
