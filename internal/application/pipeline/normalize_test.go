package pipeline

import (
	"errors"
	"testing"
	"time"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SortsStablyByEventTime(t *testing.T) {
	a := createTrade(utcAt(15, 0, 2), "10", 1)
	b := createTrade(utcAt(15, 0, 1), "11", 1)
	c := createTrade(utcAt(15, 0, 1), "12", 1)
	d := createTrade(utcAt(15, 0, 1), "13", 1)

	out := normalized(t, a, b, c, d)

	require.Len(t, out, 4)
	assert.Equal(t, []uuid.UUID{b.ID, c.ID, d.ID, a.ID}, ids(out))
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].EventTime.Before(out[i-1].EventTime))
	}
}

func TestNormalize_DerivesBucketsInReportingZone(t *testing.T) {
	trade := createTrade(time.Date(2024, 12, 23, 14, 30, 15, 123456789, time.UTC), "10", 5)

	out := normalized(t, trade)

	require.Len(t, out, 1)
	got := out[0]
	assert.Equal(t, "2024-12-23 09:00", got.HourBucket)
	assert.Equal(t, "2024-12-23 09:30", got.MinuteBucket)
	assert.Equal(t, "America/New_York", got.LocalTime.Location().String())
	assert.True(t, got.LocalTime.Equal(trade.EventTime))
	assert.Equal(t, 123456789, got.LocalTime.Nanosecond())
	assert.True(t, got.HourStart.Equal(time.Date(2024, 12, 23, 14, 0, 0, 0, time.UTC)))
	assert.True(t, got.MinuteStart.Equal(time.Date(2024, 12, 23, 14, 30, 0, 0, time.UTC)))
}

func TestNormalize_BucketsFollowWallClockForOddOffsets(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	first := createTrade(utcAt(10, 29, 0), "10", 1)
	second := createTrade(utcAt(10, 31, 0), "10", 1)

	out, err := Normalize([]marketdata.Trade{first, second}, kolkata, dayStart, dayEnd)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "2024-12-23 15:00", out[0].HourBucket)
	assert.Equal(t, "2024-12-23 16:00", out[1].HourBucket)
}

func TestNormalize_FiltersInclusiveRange(t *testing.T) {
	before := createTrade(dayStart.Add(-time.Nanosecond), "10", 1)
	atStart := createTrade(dayStart, "10", 1)
	atEnd := createTrade(dayEnd, "10", 1)
	after := createTrade(dayEnd.Add(time.Nanosecond), "10", 1)

	out := normalized(t, before, atStart, atEnd, after)

	assert.Equal(t, []uuid.UUID{atStart.ID, atEnd.ID}, ids(out))
}

func TestNormalize_EmptyRangeIsNotAnError(t *testing.T) {
	trade := createTrade(utcAt(15, 0, 0), "10", 1)

	out, err := Normalize([]marketdata.Trade{trade}, newYork(t), dayEnd, dayEnd.Add(time.Hour))

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestNormalize_RejectsInvalidTrades(t *testing.T) {
	dup := createTrade(utcAt(15, 0, 0), "10", 1)

	tests := []struct {
		name   string
		trades []marketdata.Trade
		index  int
	}{
		{
			name:   "negative size",
			trades: []marketdata.Trade{createTrade(utcAt(15, 0, 0), "10", -1)},
			index:  0,
		},
		{
			name:   "zero event time",
			trades: []marketdata.Trade{createTrade(utcAt(15, 0, 0), "10", 1), createTrade(time.Time{}, "10", 1)},
			index:  1,
		},
		{
			name:   "duplicate id",
			trades: []marketdata.Trade{dup, dup},
			index:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.trades, newYork(t), dayStart, dayEnd)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTrade))
			var invalid *InvalidTradeError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.index, invalid.Index)
		})
	}
}

func TestNormalize_AssignsStableIDs(t *testing.T) {
	trade := createTrade(utcAt(15, 0, 0), "10", 1)
	trade.ID = uuid.Nil

	first := normalized(t, trade)
	second := normalized(t, trade)

	require.Len(t, first, 1)
	assert.NotEqual(t, uuid.Nil, first[0].ID)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestNormalize_NilLocation(t *testing.T) {
	_, err := Normalize(nil, nil, dayStart, dayEnd)

	assert.ErrorIs(t, err, ErrNilLocation)
}

func ids(trades []marketdata.NormalizedTrade) []uuid.UUID {
	out := make([]uuid.UUID, len(trades))
	for i := range trades {
		out[i] = trades[i].ID
	}
	return out
}
