package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"tradechart/internal/application/pipeline"
	appinstruments "tradechart/internal/application/service/instruments"
	appmarketdata "tradechart/internal/application/service/marketdata"
	"tradechart/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ReportRunner builds one report.
type ReportRunner interface {
	Run(ctx context.Context, req appmarketdata.Request) (*appmarketdata.Report, error)
}

// Consumer reads report requests from a durable queue and runs them.
type Consumer struct {
	cfg    config.RabbitMQConfig
	runner ReportRunner
	logger *logrus.Logger

	conn    *amqp.Connection
	channel *amqp.Channel
	wg      sync.WaitGroup
}

// NewConsumer prepares a consumer for the given configuration.
func NewConsumer(cfg config.RabbitMQConfig, runner ReportRunner, logger *logrus.Logger) (*Consumer, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if cfg.RequestsQueue == "" {
		return nil, errors.New("requests queue is required")
	}
	return &Consumer{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}, nil
}

// Start establishes the AMQP connection and begins consuming requests.
func (c *Consumer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	c.conn = conn

	ch, err := conn.Channel()
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	c.channel = ch

	queue, err := ch.QueueDeclare(c.cfg.RequestsQueue, true, false, false, false, nil)
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("declare queue %s: %w", c.cfg.RequestsQueue, err)
	}
	prefetch := c.cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = c.Close()
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("start consume on %s: %w", queue.Name, err)
	}

	c.wg.Add(1)
	go c.consumeLoop(ctx, deliveries)

	c.logger.Infof("rabbitmq consumer started: queue=%s", queue.Name)
	return nil
}

// Close stops consumption and waits for the in-flight request.
func (c *Consumer) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
		c.conn = nil
	}
	c.wg.Wait()
	return errors.Join(errs...)
}

func (c *Consumer) consumeLoop(ctx context.Context, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.WithField("component", "report_consumer")
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			if err := c.handleDelivery(ctx, &delivery); err != nil {
				retry := shouldRequeue(&delivery, err)
				log.WithError(err).WithField("requeue", retry).Warn("failed to process report request")
				_ = delivery.Nack(false, retry)
				continue
			}
			if err := delivery.Ack(false); err != nil {
				log.WithError(err).Warn("failed to ack delivery")
			}
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, delivery *amqp.Delivery) error {
	var req ReportRequest
	if err := json.Unmarshal(delivery.Body, &req); err != nil {
		return fmt.Errorf("%w: decode payload: %v", ErrMalformedRequest, err)
	}
	loc, err := req.Validate()
	if err != nil {
		return err
	}

	report, err := c.runner.Run(ctx, appmarketdata.Request{
		Symbol:   req.Symbol,
		From:     req.From,
		To:       req.To,
		Location: loc,
	})
	if err != nil {
		return fmt.Errorf("run report for %s: %w", req.Symbol, err)
	}

	c.logger.WithFields(logrus.Fields{
		"component": "report_consumer",
		"run_id":    report.RunID,
		"symbol":    report.Summary.Symbol,
		"trades":    report.Summary.Trades,
	}).Info("report request processed")
	return nil
}

// shouldRequeue gives a failed delivery one more attempt at most.
func shouldRequeue(delivery *amqp.Delivery, err error) bool {
	return !delivery.Redelivered && requeue(err)
}

// requeue reports whether a failed request may succeed on redelivery.
func requeue(err error) bool {
	switch {
	case errors.Is(err, ErrMalformedRequest),
		errors.Is(err, appinstruments.ErrInstrumentNotFound),
		errors.Is(err, appmarketdata.ErrEmptySymbol),
		errors.Is(err, appmarketdata.ErrInvalidRange),
		errors.Is(err, pipeline.ErrUndefinedAggregate),
		errors.Is(err, pipeline.ErrInvalidTrade):
		return false
	default:
		return true
	}
}
