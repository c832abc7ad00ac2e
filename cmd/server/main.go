package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradechart/internal/app"
	"tradechart/internal/config"
	"tradechart/internal/infrastructure/broker"
	infrahttp "tradechart/internal/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init report service: %v", err)
	}
	defer application.Close()

	if cfg.RabbitMQ.URL != "" {
		consumer, err := broker.NewConsumer(cfg.RabbitMQ, application.Reports, logger)
		if err != nil {
			logger.Fatalf("failed to init consumer: %v", err)
		}
		if err := consumer.Start(ctx); err != nil {
			logger.Fatalf("failed to start consumer: %v", err)
		}
		defer func() {
			if err := consumer.Close(); err != nil {
				logger.Errorf("close consumer: %v", err)
			}
		}()
	}

	handler := infrahttp.NewHandler(application.Reports, application.Redis, cfg.Cache.TTL(), logger)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
