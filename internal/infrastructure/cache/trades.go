package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"
	"tradechart/internal/domain/interfaces"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tradechart:trades"

// TradeCache stores fetched trade batches in Redis as JSON.
type TradeCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ interfaces.TradeCache = (*TradeCache)(nil)

func NewTradeCache(client *redis.Client, ttl time.Duration) *TradeCache {
	return &TradeCache{client: client, ttl: ttl}
}

// Key identifies one fetch by source, symbol and exact range.
func Key(source, symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", keyPrefix, source, strings.ToUpper(symbol), from.UnixNano(), to.UnixNano())
}

func (c *TradeCache) GetTrades(ctx context.Context, key string) ([]domain.Trade, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached trades: %w", err)
	}
	var trades []domain.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, false, fmt.Errorf("decode cached trades: %w", err)
	}
	return trades, true, nil
}

func (c *TradeCache) SetTrades(ctx context.Context, key string, trades []domain.Trade) error {
	if trades == nil {
		trades = []domain.Trade{}
	}
	data, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("encode trades: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached trades: %w", err)
	}
	return nil
}
