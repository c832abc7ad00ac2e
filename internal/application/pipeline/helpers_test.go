package pipeline

import (
	"testing"
	"time"
	_ "time/tzdata"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	dayStart = time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC)
	dayEnd   = time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func createTrade(at time.Time, price string, size int64) marketdata.Trade {
	return marketdata.Trade{
		ID:        uuid.New(),
		Symbol:    "PLTR",
		Price:     decimal.RequireFromString(price),
		Size:      size,
		EventTime: at,
	}
}

// utcAt builds an instant on the test day.
func utcAt(hour, minute, second int) time.Time {
	return time.Date(2024, 12, 23, hour, minute, second, 0, time.UTC)
}

func normalized(t *testing.T, trades ...marketdata.Trade) []marketdata.NormalizedTrade {
	t.Helper()
	out, err := Normalize(trades, newYork(t), dayStart, dayEnd)
	require.NoError(t, err)
	return out
}
