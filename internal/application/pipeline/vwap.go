package pipeline

import (
	"strings"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/shopspring/decimal"
)

// MinVWAPPlaces is the fewest decimal places a VWAP is rounded to.
const MinVWAPPlaces int32 = 3

// VWAPState is the running aggregate carried across an ordered sequence.
// Notional is exact; Places is the widest price scale consumed so far.
type VWAPState struct {
	Volume   int64
	Notional decimal.Decimal
	Places   int32
}

// Add returns the state after consuming one trade.
func (s VWAPState) Add(price decimal.Decimal, size int64) VWAPState {
	return VWAPState{
		Volume:   s.Volume + size,
		Notional: s.Notional.Add(price.Mul(decimal.NewFromInt(size))),
		Places:   max(s.Places, decimalPlaces(price)),
	}
}

// Value reports the VWAP of the consumed prefix rounded half away from zero
// to the price scale, never below MinVWAPPlaces. ok is false while the
// cumulative volume is zero.
func (s VWAPState) Value() (vwap decimal.Decimal, ok bool) {
	if s.Volume == 0 {
		return decimal.Decimal{}, false
	}
	return s.Notional.DivRound(decimal.NewFromInt(s.Volume), max(s.Places, MinVWAPPlaces)), true
}

// decimalPlaces counts significant fraction digits, so 280.500000000 has one.
func decimalPlaces(d decimal.Decimal) int32 {
	text := d.String()
	if i := strings.IndexByte(text, '.'); i >= 0 {
		return int32(len(text) - i - 1)
	}
	return 0
}

// VWAPPoint is the accumulator state emitted for one trade.
type VWAPPoint struct {
	VWAP     decimal.Decimal
	Volume   int64
	Notional decimal.Decimal
}

// ComputeVWAP runs a single pass over time-ordered trades and returns one
// point per trade. It fails with *UndefinedAggregateError when the volume
// is still zero at some position.
func ComputeVWAP(trades []marketdata.NormalizedTrade) ([]VWAPPoint, error) {
	points := make([]VWAPPoint, len(trades))
	state := VWAPState{Notional: decimal.Zero}
	for i := range trades {
		state = state.Add(trades[i].Price, trades[i].Size)
		vwap, ok := state.Value()
		if !ok {
			return nil, &UndefinedAggregateError{Symbol: trades[i].Symbol, Index: i}
		}
		points[i] = VWAPPoint{VWAP: vwap, Volume: state.Volume, Notional: state.Notional}
	}
	return points, nil
}
