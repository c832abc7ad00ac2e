package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"
	"tradechart/internal/domain/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher announces finished reports on a fanout exchange.
type Publisher struct {
	channel  *amqp.Channel
	exchange string
	logger   *logrus.Logger
	mu       sync.Mutex
}

var _ interfaces.ReportPublisher = (*Publisher)(nil)

func NewPublisher(conn *amqp.Connection, exchange string, logger *logrus.Logger) (*Publisher, error) {
	if exchange == "" {
		return nil, errors.New("exchange name cannot be empty")
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.channel.Close(); err != nil {
		p.logger.Errorf("close rabbitmq channel: %v", err)
	}
}

func (p *Publisher) PublishSummary(ctx context.Context, summary domain.Summary) error {
	now := time.Now().UTC()
	body, err := json.Marshal(SummaryMessage{Summary: summary, PublishedAt: now})
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	return nil
}
