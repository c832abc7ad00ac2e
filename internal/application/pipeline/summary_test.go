package pipeline

import (
	"context"
	"testing"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	raw := []marketdata.Trade{
		createTrade(utcAt(14, 35, 0), "10.50", 100),
		createTrade(utcAt(14, 50, 0), "10.10", 20),
		createTrade(utcAt(15, 5, 0), "11.25", 5),
		createTrade(utcAt(15, 55, 0), "10.90", 300),
	}
	result, err := Enrich(context.Background(), testWindow(t), raw)
	require.NoError(t, err)

	summary := Summarize(result)

	assert.Equal(t, "PLTR", summary.Symbol)
	assert.Equal(t, "America/New_York", summary.Timezone)
	assert.Equal(t, 4, summary.Trades)
	assert.Equal(t, "11.25", summary.DayHigh.String())
	assert.Equal(t, "10.1", summary.DayLow.String())
	assert.Equal(t, "1.15", summary.DayRange.String())
	assert.Equal(t, marketdata.VolumeSummary{Total: 425, MinSize: 5, MaxSize: 300}, summary.Volume)
	assert.True(t, summary.FinalVWAP.Equal(result.Enriched[3].VWAP))
	require.NotNil(t, summary.FirstTrade)
	assert.True(t, summary.FirstTrade.Equal(utcAt(14, 35, 0)))

	require.Len(t, summary.Hours, 2)
	assert.Equal(t, "2024-12-23 09:00", summary.Hours[0].Bucket)
	assert.Equal(t, "10.5", summary.Hours[0].High.String())
	assert.Equal(t, "10.1", summary.Hours[0].Low.String())
	assert.Equal(t, int64(120), summary.Hours[0].Volume)
	assert.Equal(t, 2, summary.Hours[0].Trades)
	assert.Equal(t, "2024-12-23 10:00", summary.Hours[1].Bucket)
	assert.Equal(t, "11.25", summary.Hours[1].High.String())
	assert.Equal(t, "10.9", summary.Hours[1].Low.String())
}

func TestSummarize_Empty(t *testing.T) {
	result, err := Enrich(context.Background(), testWindow(t), nil)
	require.NoError(t, err)

	summary := Summarize(result)

	assert.Equal(t, 0, summary.Trades)
	assert.Nil(t, summary.FirstTrade)
	assert.NotNil(t, summary.Hours)
	assert.Empty(t, summary.Hours)
}
