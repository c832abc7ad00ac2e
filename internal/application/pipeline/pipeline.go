package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"golang.org/x/sync/errgroup"
)

// Window identifies one enrichment run.
type Window struct {
	Symbol   string
	From     time.Time
	To       time.Time
	Location *time.Location
}

// Result holds every stage output of one run. Enriched and Volumes are
// never nil.
type Result struct {
	Window   Window
	Trades   []marketdata.NormalizedTrade
	VWAP     []VWAPPoint
	Labels   Labels
	Enriched []marketdata.EnrichedTrade
	Volumes  []marketdata.MinuteVolume
}

// Empty reports whether no trade survived range filtering.
func (r *Result) Empty() bool {
	return len(r.Trades) == 0
}

// Enrich normalizes raw trades and runs the VWAP, extremum and volume stages
// concurrently over the normalized sequence, then merges their outputs.
func Enrich(ctx context.Context, window Window, raw []marketdata.Trade) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trades, err := Normalize(raw, window.Location, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("normalize trades: %w", err)
	}

	var (
		points  []VWAPPoint
		labels  Labels
		volumes []marketdata.MinuteVolume
	)
	var group errgroup.Group
	group.Go(func() error {
		var err error
		points, err = ComputeVWAP(trades)
		return err
	})
	group.Go(func() error {
		labels = Classify(trades)
		return nil
	})
	group.Go(func() error {
		volumes = AggregateVolume(trades)
		return nil
	})
	if err := group.Wait(); err != nil {
		var undefined *UndefinedAggregateError
		if errors.As(err, &undefined) {
			undefined.Symbol = window.Symbol
			undefined.From = window.From
			undefined.To = window.To
		}
		return nil, err
	}

	enriched, err := merge(trades, points, labels)
	if err != nil {
		return nil, err
	}

	return &Result{
		Window:   window,
		Trades:   trades,
		VWAP:     points,
		Labels:   labels,
		Enriched: enriched,
		Volumes:  volumes,
	}, nil
}

func merge(trades []marketdata.NormalizedTrade, points []VWAPPoint, labels Labels) ([]marketdata.EnrichedTrade, error) {
	if len(points) != len(trades) {
		return nil, fmt.Errorf("merge stages: %d vwap points for %d trades", len(points), len(trades))
	}
	enriched := make([]marketdata.EnrichedTrade, len(trades))
	for i := range trades {
		enriched[i] = marketdata.EnrichedTrade{
			ID:        trades[i].ID,
			Symbol:    trades[i].Symbol,
			LocalTime: trades[i].LocalTime,
			Price:     trades[i].Price,
			VWAP:      points[i].VWAP,
			Size:      trades[i].Size,
			Labels:    labels[trades[i].ID],
		}
	}
	return enriched, nil
}
