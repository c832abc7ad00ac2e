package pipeline

import (
	"slices"

	marketdata "tradechart/internal/domain/entity/marketdata"
)

// AggregateVolume sums trade size per minute bucket. Minutes without trades
// are not emitted.
func AggregateVolume(trades []marketdata.NormalizedTrade) []marketdata.MinuteVolume {
	volumes := make([]marketdata.MinuteVolume, 0)
	index := make(map[string]int)
	for i := range trades {
		pos, ok := index[trades[i].MinuteBucket]
		if !ok {
			index[trades[i].MinuteBucket] = len(volumes)
			volumes = append(volumes, marketdata.MinuteVolume{
				Bucket: trades[i].MinuteBucket,
				Start:  trades[i].MinuteStart,
				Size:   trades[i].Size,
			})
			continue
		}
		volumes[pos].Size += trades[i].Size
	}

	slices.SortStableFunc(volumes, func(a, b marketdata.MinuteVolume) int {
		return a.Start.Compare(b.Start)
	})
	return volumes
}
