package pipeline

import (
	"slices"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// Summarize derives the day, volume and per-hour report from a result.
func Summarize(result *Result) marketdata.Summary {
	summary := marketdata.Summary{
		Symbol: result.Window.Symbol,
		From:   result.Window.From,
		To:     result.Window.To,
		Trades: len(result.Trades),
		Hours:  make([]marketdata.HourStats, 0),
	}
	if result.Window.Location != nil {
		summary.Timezone = result.Window.Location.String()
	}
	if result.Empty() {
		return summary
	}

	trades := result.Trades
	first, last := trades[0].LocalTime, trades[len(trades)-1].LocalTime
	summary.FirstTrade = &first
	summary.LastTrade = &last

	high, low := trades[0].Price, trades[0].Price
	minSize, maxSize := trades[0].Size, trades[0].Size
	var total int64
	hours := make(map[string]*marketdata.HourStats)
	for i := range trades {
		t := trades[i]
		high = decimal.Max(high, t.Price)
		low = decimal.Min(low, t.Price)
		minSize = min(minSize, t.Size)
		maxSize = max(maxSize, t.Size)
		total += t.Size

		hour, ok := hours[t.HourBucket]
		if !ok {
			hour = &marketdata.HourStats{Bucket: t.HourBucket, Start: t.HourStart, High: t.Price, Low: t.Price}
			hours[t.HourBucket] = hour
		}
		hour.High = decimal.Max(hour.High, t.Price)
		hour.Low = decimal.Min(hour.Low, t.Price)
		hour.Volume += t.Size
		hour.Trades++
	}

	summary.DayHigh = high
	summary.DayLow = low
	summary.DayRange = high.Sub(low)
	summary.Volume = marketdata.VolumeSummary{Total: total, MinSize: minSize, MaxSize: maxSize}
	if n := len(result.VWAP); n > 0 {
		summary.FinalVWAP = result.VWAP[n-1].VWAP
	}

	for _, hour := range hours {
		summary.Hours = append(summary.Hours, *hour)
	}
	slices.SortFunc(summary.Hours, func(a, b marketdata.HourStats) int {
		return a.Start.Compare(b.Start)
	})
	return summary
}
