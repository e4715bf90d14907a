package main

import (
	"net/http"
	"time"

	config "github.com/NordCoder/Classbell/internal/config/notify-gateway"
	"github.com/NordCoder/Classbell/internal/obs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func buildHTTPServer(cfg *config.Config, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           obs.HTTPHandler(router, "notify-gateway"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func serveHTTP(srv *http.Server, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}
