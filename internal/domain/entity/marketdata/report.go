package marketdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EnrichedTrade is one output row: a normalized trade with its running VWAP
// and extremum labels.
type EnrichedTrade struct {
	ID        uuid.UUID       `json:"id"`
	Symbol    string          `json:"symbol"`
	LocalTime time.Time       `json:"local_time"`
	Price     decimal.Decimal `json:"price"`
	VWAP      decimal.Decimal `json:"vwap"`
	Size      int64           `json:"size"`
	Labels    LabelSet        `json:"labels"`
}

// MinuteVolume is the summed trade size of one reporting-timezone minute.
type MinuteVolume struct {
	Bucket string    `json:"bucket"`
	Start  time.Time `json:"start"`
	Size   int64     `json:"size"`
}

// HourStats summarizes one hour partition.
type HourStats struct {
	Bucket string          `json:"bucket"`
	Start  time.Time       `json:"start"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Volume int64           `json:"volume"`
	Trades int             `json:"trades"`
}

// Summary is derived from an enrichment result without touching the source.
type Summary struct {
	Symbol     string          `json:"symbol"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Timezone   string          `json:"timezone"`
	Trades     int             `json:"trades"`
	FirstTrade *time.Time      `json:"first_trade,omitempty"`
	LastTrade  *time.Time      `json:"last_trade,omitempty"`
	DayHigh    decimal.Decimal `json:"day_high"`
	DayLow     decimal.Decimal `json:"day_low"`
	DayRange   decimal.Decimal `json:"day_range"`
	FinalVWAP  decimal.Decimal `json:"final_vwap"`
	Volume     VolumeSummary   `json:"volume"`
	Hours      []HourStats     `json:"hours"`
}

type VolumeSummary struct {
	Total   int64 `json:"total"`
	MinSize int64 `json:"min_size"`
	MaxSize int64 `json:"max_size"`
}
