package pipeline

import (
	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Labels maps a trade id to its extremum tags. Trades without tags are
// absent.
type Labels map[uuid.UUID]marketdata.LabelSet

type extremum struct {
	high decimal.Decimal
	low  decimal.Decimal
}

func (e *extremum) observe(price decimal.Decimal) {
	if price.GreaterThan(e.high) {
		e.high = price
	}
	if price.LessThan(e.low) {
		e.low = price
	}
}

// Classify tags every trade whose price equals its hour's or the batch's
// high or low. Comparison is exact and every tied trade is tagged.
func Classify(trades []marketdata.NormalizedTrade) Labels {
	labels := make(Labels)
	if len(trades) == 0 {
		return labels
	}

	hours := hourExtrema(trades)
	day := extremum{high: trades[0].Price, low: trades[0].Price}
	for i := range trades {
		day.observe(trades[i].Price)
	}

	for i := range trades {
		hour := hours[trades[i].HourBucket]
		price := trades[i].Price

		var set marketdata.LabelSet
		if price.Equal(hour.high) {
			set = set.With(marketdata.LabelHourHigh)
		}
		if price.Equal(hour.low) {
			set = set.With(marketdata.LabelHourLow)
		}
		if price.Equal(day.high) {
			set = set.With(marketdata.LabelDayHigh)
		}
		if price.Equal(day.low) {
			set = set.With(marketdata.LabelDayLow)
		}
		if !set.Empty() {
			labels[trades[i].ID] = set
		}
	}
	return labels
}

func hourExtrema(trades []marketdata.NormalizedTrade) map[string]*extremum {
	hours := make(map[string]*extremum)
	for i := range trades {
		price := trades[i].Price
		hour, ok := hours[trades[i].HourBucket]
		if !ok {
			hours[trades[i].HourBucket] = &extremum{high: price, low: price}
			continue
		}
		hour.observe(price)
	}
	return hours
}
