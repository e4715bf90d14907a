package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/Classbell/internal/config/notify-gateway"
	"github.com/NordCoder/Classbell/internal/obs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func configPath() string {
	if p := os.Getenv("CLASSBELL_CONFIG"); p != "" {
		return p
	}
	return "config/notify-gateway.yaml"
}

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting notify-gateway",
		zap.String("env", cfg.App.Env),
		zap.String("ver", cfg.App.Version),
		zap.String("bus", cfg.Bus.Driver),
		zap.Bool("inline_worker", cfg.Worker.Inline),
	)

	otelShutdown, err := initOTel(rootCtx, cfg)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := initDB(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	bus, busHealth, err := initBus(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("bus init", zap.Error(err))
	}

	health := func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return err
		}
		return busHealth(ctx)
	}

	g, gctx := errgroup.WithContext(rootCtx)
	a := wiring(gctx, cfg, db, bus, health, logger)
	httpSrv := buildHTTPServer(cfg, a.router)

	g.Go(func() error {
		if err := serveHTTP(httpSrv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()
		return httpSrv.Shutdown(shCtx)
	})
	g.Go(func() error { return a.relay.Run(gctx) })
	if a.consumer != nil {
		g.Go(func() error { return a.consumer.Run(gctx) })
	}
	if cfg.Server.MetricsAddr != "" {
		ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, health, logger)
		defer func() { _ = ms.Shutdown(context.Background()) }()
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("gateway stopped", zap.Error(err))
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := bus.Stop(shCtx); err != nil {
		logger.Warn("bus stop", zap.Error(err))
	}
	if a.consumer != nil {
		_ = a.consumer.Sub.Close()
	}
	_ = a.producer.Close()
	logger.Info("bye")
}
