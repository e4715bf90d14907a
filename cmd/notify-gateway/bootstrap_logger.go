package main

import (
	config "github.com/NordCoder/Classbell/internal/config/notify-gateway"
	"github.com/NordCoder/Classbell/internal/obs"
	"go.uber.org/zap"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.Log.AsLoggerConfig(cfg.App))
}
