package pipeline

import (
	"testing"
	"time"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateVolume_SumsPerMinuteWithoutGaps(t *testing.T) {
	trades := normalized(t,
		createTrade(utcAt(15, 3, 10), "10", 7),
		createTrade(utcAt(15, 0, 59), "10", 5),
		createTrade(utcAt(15, 0, 0), "10", 3),
	)

	volumes := AggregateVolume(trades)

	require.Len(t, volumes, 2)
	assert.Equal(t, "2024-12-23 10:00", volumes[0].Bucket)
	assert.Equal(t, int64(8), volumes[0].Size)
	assert.Equal(t, "2024-12-23 10:03", volumes[1].Bucket)
	assert.Equal(t, int64(7), volumes[1].Size)
	assert.True(t, volumes[0].Start.Before(volumes[1].Start))
}

func TestAggregateVolume_TotalMatchesTrades(t *testing.T) {
	var sizes int64
	raw := []marketdata.Trade{createTrade(utcAt(14, 30, 0), "10", 0)}
	for i := 1; i <= 120; i++ {
		at := utcAt(14, 30, 0).Add(time.Duration(i*17) * time.Second)
		raw = append(raw, createTrade(at, "10", int64(i)))
		sizes += int64(i)
	}

	var total int64
	for _, v := range AggregateVolume(normalized(t, raw...)) {
		total += v.Size
	}

	assert.Equal(t, sizes, total)
}

func TestAggregateVolume_Empty(t *testing.T) {
	volumes := AggregateVolume(nil)

	assert.NotNil(t, volumes)
	assert.Empty(t, volumes)
}
