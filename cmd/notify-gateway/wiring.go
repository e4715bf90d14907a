package main

import (
	"context"

	"github.com/NordCoder/Classbell/internal/auth"
	config "github.com/NordCoder/Classbell/internal/config/notify-gateway"
	"github.com/NordCoder/Classbell/internal/notify"
	"github.com/NordCoder/Classbell/internal/obs"
	"github.com/NordCoder/Classbell/internal/obs/retry"
	"github.com/NordCoder/Classbell/internal/outbox"
	"github.com/NordCoder/Classbell/internal/registry"
	kafkax "github.com/NordCoder/Classbell/internal/repository/kafka"
	pg "github.com/NordCoder/Classbell/internal/repository/postgres"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/events"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/notifications"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/rest"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/ws"
	worker "github.com/NordCoder/Classbell/internal/services/notify-worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type app struct {
	router   *gin.Engine
	relay    *outbox.Runner
	producer *kafkax.Producer
	consumer *worker.Controller
}

func wiring(ctx context.Context, cfg *config.Config, db *pg.DB, bus registry.Registry, health obs.HealthFunc, l *zap.Logger) *app {
	users := pg.NewUserRepo(db)
	store := pg.NewNotificationRepo(db)
	outboxRepo := pg.NewOutboxRepo(db)
	tx := pg.NewTransactor(db, l)

	authn := auth.NewAuthenticator(users, auth.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		Leeway: cfg.Auth.Leeway,
	}, l)

	producer := kafkax.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
	relay := outbox.NewOutboxRunner(l, outboxRepo,
		outbox.MakeGlobalOutboxHandler(kafkax.NewEventsKafka(producer), retry.DefaultKafkaPolicy(l)),
		cfg.Outbox,
	)

	a := &app{relay: relay, producer: producer}

	if cfg.Worker.Inline {
		pub := notify.NewPublisher(store, users, bus, retry.FromConfig("persist", cfg.Retry, l, nil), l)
		cons := kafkax.BootstrapConsumer(ctx, &kafkax.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Worker.GroupID,
			Topic:   cfg.Kafka.Topic,
			Logger:  l,
		}, l).WithLogger(l)
		a.consumer = &worker.Controller{Log: l, Sub: cons, UC: worker.NewHandler(pub, l)}
	}

	a.router = rest.NewRouter(rest.Deps{
		Auth:          authn,
		Notifications: notifications.New(store),
		Events:        events.New(tx, outboxRepo, nil, l),
		IngestKey:     cfg.Ingest.APIKey,
		Socket:        ws.NewHandler(ctx, authn, bus, cfg.WS, l),
		Health:        health,
		Log:           l,
	})
	return a
}
