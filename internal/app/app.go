// Package app wires configuration into a ready report service.
package app

import (
	"context"
	"fmt"

	appinstruments "tradechart/internal/application/service/instruments"
	appmarketdata "tradechart/internal/application/service/marketdata"
	"tradechart/internal/config"
	"tradechart/internal/domain/interfaces"
	"tradechart/internal/infrastructure/broker"
	"tradechart/internal/infrastructure/cache"
	"tradechart/internal/infrastructure/chart"
	"tradechart/internal/infrastructure/export"
	infrainstruments "tradechart/internal/infrastructure/instruments"
	"tradechart/internal/infrastructure/invest"
	inframarketdata "tradechart/internal/infrastructure/marketdata"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	investgo "github.com/russianinvestments/invest-api-go-sdk/investgo"
	"github.com/sirupsen/logrus"
)

// App owns every connection opened for the report service.
type App struct {
	Reports     *appmarketdata.Service
	Instruments *appinstruments.Service
	Redis       *redis.Client

	closers []func()
}

// New connects the configured collaborators. Optional ones (Postgres, Redis,
// RabbitMQ) are skipped when their settings are empty. Extra options are
// applied after the configured ones.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, extra ...appmarketdata.Option) (*App, error) {
	a := &App{}
	ready := false
	defer func() {
		if !ready {
			a.Close()
		}
	}()

	options := []appmarketdata.Option{
		appmarketdata.WithLocation(cfg.Report.Location),
		appmarketdata.WithOutputDir(cfg.Report.OutputDir),
	}

	var (
		pgRepo    *inframarketdata.Repository
		instrRepo interfaces.InstrumentsRepository
	)
	if cfg.Postgres.DSN != "" {
		var err error
		pgRepo, err = inframarketdata.NewRepository(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("init marketdata repo: %w", err)
		}
		a.closers = append(a.closers, pgRepo.Close)
		if err := pgRepo.Migrate(ctx); err != nil {
			return nil, err
		}
		options = append(options, appmarketdata.WithStore(pgRepo))

		repo, err := infrainstruments.NewRepository(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("init instruments repo: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate instruments: %w", err)
		}
		instrRepo = repo
	}

	var source interfaces.TradeSource
	switch cfg.Report.Source {
	case config.SourcePostgres:
		source = pgRepo
	default:
		client, err := NewInvestClient(ctx, cfg.Invest, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if stopErr := client.Stop(); stopErr != nil {
				logger.Errorf("stop invest api client: %v", stopErr)
			}
		})
		a.Instruments = appinstruments.NewService(instrRepo, invest.NewInstruments(client, logger), logger)
		source = invest.NewSource(client, a.Instruments, logger)
	}

	if cfg.Redis.Addr != "" {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, func() { _ = a.Redis.Close() })
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		options = append(options, appmarketdata.WithCache(cache.NewTradeCache(a.Redis, cfg.Cache.TTL()), cache.Key))
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		publisher, err := broker.NewPublisher(conn, cfg.RabbitMQ.ReportsExchange, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, publisher.Close)
		options = append(options, appmarketdata.WithPublisher(publisher))
	}

	options = append(options, extra...)
	a.Reports = appmarketdata.NewService(
		source,
		export.NewCSVExporter(cfg.Report.NotePolicy),
		chart.NewRenderer(),
		logger,
		options...,
	)

	logger.WithFields(logrus.Fields{
		"source":   source.Name(),
		"timezone": cfg.Report.Location.String(),
		"postgres": cfg.Postgres.DSN != "",
		"redis":    a.Redis != nil,
		"rabbitmq": cfg.RabbitMQ.URL != "",
	}).Info("report service ready")
	ready = true
	return a, nil
}

// NewInvestClient opens the vendor API client.
func NewInvestClient(ctx context.Context, cfg config.InvestConfig, logger *logrus.Logger) (*investgo.Client, error) {
	client, err := investgo.NewClient(ctx, investgo.Config{
		EndPoint:           cfg.Endpoint,
		Token:              cfg.Token,
		AppName:            cfg.AppName,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create invest api client: %w", err)
	}
	return client, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
