package interfaces

import (
	"context"
	"io"
	"time"

	marketdata "tradechart/internal/domain/entity/marketdata"
)

// TradeSource fetches the closed batch of trades for a symbol.
type TradeSource interface {
	Name() string
	FetchTrades(ctx context.Context, symbol string, from, to time.Time) ([]marketdata.Trade, error)
}

// TradeCache keeps previously fetched batches keyed by source, symbol and range.
type TradeCache interface {
	GetTrades(ctx context.Context, key string) ([]marketdata.Trade, bool, error)
	SetTrades(ctx context.Context, key string, trades []marketdata.Trade) error
}

// EnrichedStore persists enriched rows and minute volumes.
type EnrichedStore interface {
	SaveEnriched(ctx context.Context, runID string, trades []marketdata.EnrichedTrade) error
	SaveMinuteVolumes(ctx context.Context, runID, symbol string, volumes []marketdata.MinuteVolume) error
}

// Exporter writes the tabular record set.
type Exporter interface {
	Export(w io.Writer, trades []marketdata.EnrichedTrade) error
}

// ChartInput is everything a renderer needs. Marker slices are subsets of Trades.
type ChartInput struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timezone  string
	Trades    []marketdata.EnrichedTrade
	HourHighs []marketdata.EnrichedTrade
	HourLows  []marketdata.EnrichedTrade
	DayHighs  []marketdata.EnrichedTrade
	DayLows   []marketdata.EnrichedTrade
	Volumes   []marketdata.MinuteVolume
}

// Renderer draws the price and volume chart.
type Renderer interface {
	Render(w io.Writer, input ChartInput) error
}

// ReportPublisher announces a finished report.
type ReportPublisher interface {
	PublishSummary(ctx context.Context, summary marketdata.Summary) error
}
