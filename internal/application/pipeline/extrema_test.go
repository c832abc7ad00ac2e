package pipeline

import (
	"testing"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_SingleTradeCarriesAllLabels(t *testing.T) {
	trade := createTrade(utcAt(15, 0, 0), "10", 1)

	labels := Classify(normalized(t, trade))

	want := marketdata.NewLabelSet(
		marketdata.LabelHourHigh, marketdata.LabelHourLow,
		marketdata.LabelDayHigh, marketdata.LabelDayLow,
	)
	assert.Equal(t, want, labels[trade.ID])
}

func TestClassify_TiesAreAllTagged(t *testing.T) {
	first := createTrade(utcAt(15, 0, 0), "12", 1)
	middle := createTrade(utcAt(15, 10, 0), "11", 1)
	second := createTrade(utcAt(15, 20, 0), "12.00", 1)

	labels := Classify(normalized(t, first, middle, second))

	assert.True(t, labels[first.ID].Has(marketdata.LabelHourHigh))
	assert.True(t, labels[second.ID].Has(marketdata.LabelHourHigh))
	assert.True(t, labels[first.ID].Has(marketdata.LabelDayHigh))
	assert.True(t, labels[second.ID].Has(marketdata.LabelDayHigh))
	assert.Equal(t, marketdata.NewLabelSet(marketdata.LabelHourLow, marketdata.LabelDayLow), labels[middle.ID])
}

func TestClassify_HourAndDayAreIndependent(t *testing.T) {
	// 09:xx ET: 10, 11; 10:xx ET: 13, 12
	h9low := createTrade(utcAt(14, 5, 0), "10", 1)
	h9high := createTrade(utcAt(14, 45, 0), "11", 1)
	h10high := createTrade(utcAt(15, 5, 0), "13", 1)
	h10low := createTrade(utcAt(15, 45, 0), "12", 1)

	labels := Classify(normalized(t, h9low, h9high, h10high, h10low))

	tests := []struct {
		name  string
		trade marketdata.Trade
		want  marketdata.LabelSet
	}{
		{"first hour low is day low", h9low, marketdata.NewLabelSet(marketdata.LabelHourLow, marketdata.LabelDayLow)},
		{"first hour high only", h9high, marketdata.NewLabelSet(marketdata.LabelHourHigh)},
		{"second hour high is day high", h10high, marketdata.NewLabelSet(marketdata.LabelHourHigh, marketdata.LabelDayHigh)},
		{"second hour low only", h10low, marketdata.NewLabelSet(marketdata.LabelHourLow)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labels[tt.trade.ID])
		})
	}
}

func TestClassify_ExactEquality(t *testing.T) {
	high := createTrade(utcAt(15, 0, 0), "10.0000001", 1)
	near := createTrade(utcAt(15, 1, 0), "10.0000000", 1)
	low := createTrade(utcAt(15, 2, 0), "9", 1)

	labels := Classify(normalized(t, high, near, low))

	assert.True(t, labels[high.ID].Has(marketdata.LabelHourHigh))
	_, tagged := labels[near.ID]
	assert.False(t, tagged)
}

func TestClassify_Empty(t *testing.T) {
	labels := Classify(nil)

	require.NotNil(t, labels)
	assert.Empty(t, labels)
}
