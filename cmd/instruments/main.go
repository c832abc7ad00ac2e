package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tradechart/internal/app"
	appinstruments "tradechart/internal/application/service/instruments"
	"tradechart/internal/config"
	infrainstruments "tradechart/internal/infrastructure/instruments"
	"tradechart/internal/infrastructure/invest"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Syncs the vendor share list into Postgres, then resolves any tickers given
// as arguments.
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
		logger.Fatalf("config error: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)
	if cfg.Postgres.DSN == "" {
		logger.Fatalf("config error: %v", &config.Error{Key: "DATABASE_DSN", Err: config.ErrMissing})
	}
	if cfg.Invest.Token == "" {
		logger.Fatalf("config error: %v", &config.Error{Key: "INVEST_TOKEN", Err: config.ErrMissing})
	}

	repo, err := infrainstruments.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("init instruments repo: %v", err)
	}
	defer repo.Close()
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatalf("migrate instruments: %v", err)
	}

	client, err := app.NewInvestClient(ctx, cfg.Invest, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() {
		if stopErr := client.Stop(); stopErr != nil {
			logger.Errorf("stop invest api client: %v", stopErr)
		}
	}()

	service := appinstruments.NewService(repo, invest.NewInstruments(client, logger), logger)

	count, err := service.SyncShares(ctx)
	if err != nil {
		logger.Fatalf("sync shares: %v", err)
	}
	logger.WithField("shares", count).Info("shares synced")

	for _, ticker := range os.Args[1:] {
		instrument, err := service.Resolve(ctx, ticker)
		if err != nil {
			logger.WithError(err).WithField("ticker", ticker).Error("resolve failed")
			continue
		}
		logger.WithFields(logrus.Fields{
			"ticker": instrument.Ticker,
			"uid":    instrument.UID,
			"figi":   instrument.Figi,
			"type":   instrument.Type,
			"lot":    instrument.Lot,
		}).Info("instrument resolved")
	}
	logger.Info("instrument sync finished")
}
