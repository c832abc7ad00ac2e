package cache

import (
	"context"
	"testing"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*TradeCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTradeCache(client, ttl), srv
}

func TestTradeCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	at := time.Date(2024, 12, 23, 14, 30, 0, 123456789, time.UTC)
	trades := []domain.Trade{{
		ID:        uuid.New(),
		Symbol:    "PLTR",
		Side:      domain.TradeSideBuy,
		Price:     decimal.RequireFromString("80.1234"),
		Size:      42,
		EventTime: at,
	}}
	key := Key("invest", "pltr", at, at.Add(time.Hour))

	require.NoError(t, cache.SetTrades(ctx, key, trades))
	got, ok, err := cache.GetTrades(ctx, key)

	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, trades[0].ID, got[0].ID)
	assert.True(t, trades[0].Price.Equal(got[0].Price))
	assert.True(t, trades[0].EventTime.Equal(got[0].EventTime))
	assert.Equal(t, int64(42), got[0].Size)
}

func TestTradeCache_MissAndExpiry(t *testing.T) {
	cache, srv := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.GetTrades(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetTrades(ctx, "k", nil))
	got, ok, err := cache.GetTrades(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)

	srv.FastForward(2 * time.Minute)
	_, ok, err = cache.GetTrades(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTradeCache_CorruptEntry(t *testing.T) {
	cache, srv := newTestCache(t, time.Minute)
	require.NoError(t, srv.Set("bad", "not json"))

	_, _, err := cache.GetTrades(context.Background(), "bad")

	assert.ErrorContains(t, err, "decode cached trades")
}

func TestKey(t *testing.T) {
	from := time.Unix(100, 0)

	assert.Equal(t, Key("invest", "sber", from, from), Key("invest", "SBER", from, from))
	assert.NotEqual(t, Key("invest", "SBER", from, from), Key("postgres", "SBER", from, from))
}
