package pipeline

import (
	"fmt"
	"slices"
	"time"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/google/uuid"
)

const (
	HourBucketLayout   = "2006-01-02 15:00"
	MinuteBucketLayout = "2006-01-02 15:04"
)

// Normalize validates trades, drops the ones outside [from, to], places the
// rest in loc and returns them stably sorted by event time.
// Trades without an id get a stable one derived from their content.
func Normalize(trades []marketdata.Trade, loc *time.Location, from, to time.Time) ([]marketdata.NormalizedTrade, error) {
	if loc == nil {
		return nil, ErrNilLocation
	}
	from, to = from.UTC(), to.UTC()

	seen := make(map[uuid.UUID]int, len(trades))
	out := make([]marketdata.NormalizedTrade, 0, len(trades))
	for i, trade := range trades {
		if trade.EventTime.IsZero() {
			return nil, &InvalidTradeError{Index: i, ID: trade.ID, Reason: "event time is zero"}
		}
		if trade.Size < 0 {
			return nil, &InvalidTradeError{Index: i, ID: trade.ID, Reason: fmt.Sprintf("negative size %d", trade.Size)}
		}
		if trade.ID == uuid.Nil {
			trade.ID = stableTradeID(trade, i)
		}
		if prev, ok := seen[trade.ID]; ok {
			return nil, &InvalidTradeError{Index: i, ID: trade.ID, Reason: fmt.Sprintf("duplicate of index %d", prev)}
		}
		seen[trade.ID] = i

		at := trade.EventTime.UTC()
		if at.Before(from) || at.After(to) {
			continue
		}
		out = append(out, normalizeTrade(trade, loc))
	}

	slices.SortStableFunc(out, func(a, b marketdata.NormalizedTrade) int {
		return a.EventTime.Compare(b.EventTime)
	})
	return out, nil
}

func normalizeTrade(trade marketdata.Trade, loc *time.Location) marketdata.NormalizedTrade {
	local := trade.EventTime.In(loc)
	hourStart := HourStart(local)
	minuteStart := MinuteStart(local)
	return marketdata.NormalizedTrade{
		Trade:        trade,
		LocalTime:    local,
		HourBucket:   hourStart.Format(HourBucketLayout),
		MinuteBucket: minuteStart.Format(MinuteBucketLayout),
		HourStart:    hourStart,
		MinuteStart:  minuteStart,
	}
}

// HourStart returns the start of t's wall-clock hour in t's location.
// Truncate works on absolute time and breaks for zones with non-hour offsets.
func HourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// MinuteStart returns the start of t's wall-clock minute in t's location.
func MinuteStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func stableTradeID(trade marketdata.Trade, index int) uuid.UUID {
	key := fmt.Sprintf("trade:%s:%d:%s:%d:%d", trade.Symbol, trade.EventTime.UnixNano(), trade.Price.String(), trade.Size, index)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}
