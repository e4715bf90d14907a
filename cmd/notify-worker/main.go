package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/Classbell/internal/config/notify-worker"
	"github.com/NordCoder/Classbell/internal/notify"
	"github.com/NordCoder/Classbell/internal/obs"
	"github.com/NordCoder/Classbell/internal/obs/retry"
	"github.com/NordCoder/Classbell/internal/registry"
	"github.com/NordCoder/Classbell/internal/repository/kafka"
	pg "github.com/NordCoder/Classbell/internal/repository/postgres"
	worker "github.com/NordCoder/Classbell/internal/services/notify-worker"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func wiring(db *pg.DB, cfg *config.Config, cons *kafka.Consumer, rdb *redis.Client, l *zap.Logger) *worker.Controller {
	users := pg.NewUserRepo(db)
	store := pg.NewNotificationRepo(db)
	bus := registry.NewRedisBus(rdb, cfg.Redis.ChannelPrefix, l)

	pub := notify.NewPublisher(store, users, bus, retry.FromConfig("persist", cfg.Retry, l, nil), l)
	return &worker.Controller{Log: l, Sub: cons, UC: worker.NewHandler(pub, l)}
}

func configPath() string {
	if p := os.Getenv("CLASSBELL_CONFIG"); p != "" {
		return p
	}
	return "config/notify-worker.yaml"
}

func main() {
	// init
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(obs.LogConfig{Level: cfg.LogLevel, App: "classbell/notify-worker"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	l.Info("starting notify-worker",
		zap.Any("kafka_in", cfg.In),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// otel
	otelCloser, err := obs.SetupOTel(rootCtx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db
	db, err := pg.NewDB(rootCtx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	l.Info("db connected")

	// redis
	rdb, err := registry.NewRedisClient(rootCtx, cfg.Redis)
	if err != nil {
		l.Fatal("redis connect", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(hctx); err != nil {
			return err
		}
		return rdb.Ping(hctx).Err()
	}, l)

	// kafka
	cons := kafka.BootstrapConsumer(rootCtx, &kafka.ConsumerConfig{
		Brokers:       cfg.In.Brokers,
		GroupID:       cfg.In.GroupID,
		Topic:         cfg.In.Topic,
		FromBeginning: cfg.In.FromBeginning,
		Logger:        l,
	}, l).WithLogger(l)
	defer func() { _ = cons.Close() }()
	l.Info("kafka consumer initialized",
		zap.Strings("brokers", cfg.In.Brokers),
		zap.String("group_id", cfg.In.GroupID),
		zap.String("topic", cfg.In.Topic),
	)

	// start
	ctrl := wiring(db, cfg, cons, rdb, l)
	errCh := make(chan error, 1)
	go func() {
		l.Info("controller starting")
		errCh <- ctrl.Run(rootCtx)
	}()

	var runErr error
	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
		runErr = <-errCh
	case runErr = <-errCh:
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		l.Error("controller error", zap.Error(runErr))
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
