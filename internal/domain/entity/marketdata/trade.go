package marketdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSide represents BUY/SELL direction reported by the upstream source.
type TradeSide string

const (
	TradeSideBuy     TradeSide = "BUY"
	TradeSideSell    TradeSide = "SELL"
	TradeSideUnknown TradeSide = ""
)

// Trade models a single executed trade as delivered by a trade source.
// Trades are never mutated after ingestion.
type Trade struct {
	ID            uuid.UUID       `json:"id"`
	Symbol        string          `json:"symbol"`
	InstrumentUID uuid.UUID       `json:"instrument_uid"`
	Side          TradeSide       `json:"side,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Size          int64           `json:"size"`
	EventTime     time.Time       `json:"event_time"`
}

// NormalizedTrade is a Trade placed in the reporting timezone together with
// its hour and minute bucket keys.
type NormalizedTrade struct {
	Trade

	LocalTime    time.Time `json:"local_time"`
	HourBucket   string    `json:"hour_bucket"`
	MinuteBucket string    `json:"minute_bucket"`
	// HourStart and MinuteStart are the instants the buckets begin at.
	HourStart   time.Time `json:"-"`
	MinuteStart time.Time `json:"-"`
}
