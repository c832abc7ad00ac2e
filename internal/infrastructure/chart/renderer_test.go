package chart

import (
	"bytes"
	"testing"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"
	"tradechart/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enriched(at time.Time, price string, labels domain.LabelSet) domain.EnrichedTrade {
	p := decimal.RequireFromString(price)
	return domain.EnrichedTrade{
		ID:        uuid.New(),
		Symbol:    "PLTR",
		LocalTime: at,
		Price:     p,
		VWAP:      p,
		Size:      100,
		Labels:    labels,
	}
}

func TestRenderer_Render(t *testing.T) {
	start := time.Date(2024, 12, 23, 9, 30, 0, 0, time.UTC)
	high := enriched(start, "80.50", domain.NewLabelSet(domain.LabelHourHigh, domain.LabelDayHigh))
	low := enriched(start.Add(time.Minute), "79.90", domain.NewLabelSet(domain.LabelHourLow, domain.LabelDayLow))

	input := interfaces.ChartInput{
		Symbol:    "PLTR",
		From:      start,
		To:        start.Add(time.Hour),
		Timezone:  "America/New_York",
		Trades:    []domain.EnrichedTrade{high, low},
		HourHighs: []domain.EnrichedTrade{high},
		HourLows:  []domain.EnrichedTrade{low},
		DayHighs:  []domain.EnrichedTrade{high},
		DayLows:   []domain.EnrichedTrade{low},
		Volumes: []domain.MinuteVolume{
			{Bucket: "2024-12-23 09:30", Start: start, Size: 100},
			{Bucket: "2024-12-23 09:31", Start: start.Add(time.Minute), Size: 100},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer().Render(&buf, input))

	html := buf.String()
	for _, name := range []string{SeriesPrice, SeriesVWAP, SeriesHourHigh, SeriesHourLow, SeriesDayHigh, SeriesDayLow, SeriesVolume} {
		assert.Contains(t, html, name)
	}
	assert.Contains(t, html, "PLTR Trade Price Chart")
	assert.Contains(t, html, "Time (America/New_York)")
	assert.Contains(t, html, "#B6E880")
}

func TestRenderer_RenderEmpty(t *testing.T) {
	start := time.Date(2024, 12, 23, 9, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	err := NewRenderer(WithTheme("white"), WithSize("800px", "400px")).Render(&buf, interfaces.ChartInput{
		Symbol: "PLTR",
		From:   start,
		To:     start,
	})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), SeriesPrice)
}

func TestTitle(t *testing.T) {
	from := time.Date(2024, 12, 23, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "PLTR Trade Price Chart (2024-12-23 14:30:00 to 2024-12-23 14:30:00)", Title("PLTR", from, from))
}
