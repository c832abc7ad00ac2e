package invest

import (
	"context"
	"fmt"
	"time"

	domaininstruments "tradechart/internal/domain/entity/instruments"
	marketdata "tradechart/internal/domain/entity/marketdata"
	"tradechart/internal/domain/interfaces"

	investgo "github.com/russianinvestments/invest-api-go-sdk/investgo"
	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/sirupsen/logrus"
)

const (
	SourceName = "invest"

	// maxTradesWindow is the widest range the last-trades endpoint accepts.
	maxTradesWindow = time.Hour
)

// InstrumentResolver maps a ticker to the vendor instrument.
type InstrumentResolver interface {
	Resolve(ctx context.Context, symbol string) (*domaininstruments.Instrument, error)
}

type tradesFetcher func(instrumentID string, from, to time.Time) ([]*pb.Trade, error)

// Source fetches anonymous trades from the vendor market data service.
type Source struct {
	fetch    tradesFetcher
	resolver InstrumentResolver
	window   time.Duration
	logger   *logrus.Entry
}

var _ interfaces.TradeSource = (*Source)(nil)

func NewSource(client *investgo.Client, resolver InstrumentResolver, logger *logrus.Logger) *Source {
	md := client.NewMarketDataServiceClient()
	fetch := func(instrumentID string, from, to time.Time) ([]*pb.Trade, error) {
		resp, err := md.GetLastTrades(instrumentID, from, to)
		if err != nil {
			return nil, err
		}
		return resp.GetTrades(), nil
	}
	return newSource(fetch, resolver, logger)
}

func newSource(fetch tradesFetcher, resolver InstrumentResolver, logger *logrus.Logger) *Source {
	return &Source{
		fetch:    fetch,
		resolver: resolver,
		window:   maxTradesWindow,
		logger:   logger.WithField("component", "invest_source"),
	}
}

func (s *Source) Name() string {
	return SourceName
}

// FetchTrades walks [from, to] in windows the endpoint accepts and returns
// the concatenated trades. Every window but the last is read as [from, to),
// so a trade on a shared edge is kept once. Failures come back as
// *marketdata.FetchError.
func (s *Source) FetchTrades(ctx context.Context, symbol string, from, to time.Time) ([]marketdata.Trade, error) {
	fail := func(err error) error {
		return &marketdata.FetchError{Source: SourceName, Symbol: symbol, From: from, To: to, Err: err}
	}

	instrument, err := s.resolver.Resolve(ctx, symbol)
	if err != nil {
		return nil, fail(fmt.Errorf("resolve instrument: %w", err))
	}

	var trades []marketdata.Trade
	seq := 0
	windows := splitRange(from.UTC(), to.UTC(), s.window)
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, fail(err)
		}
		batch, err := s.fetch(instrument.UID.String(), w.from, w.to)
		if err != nil {
			return nil, fail(err)
		}
		last := i == len(windows)-1
		for _, msg := range batch {
			trade, err := convertTrade(instrument, symbol, seq, msg)
			if err != nil {
				s.logger.WithError(err).Warn("skip malformed trade")
				continue
			}
			if !last && !trade.EventTime.Before(w.to) {
				continue
			}
			seq++
			trades = append(trades, trade)
		}
		s.logger.WithFields(logrus.Fields{
			"symbol": symbol,
			"from":   w.from,
			"to":     w.to,
			"trades": len(batch),
		}).Debug("trades window fetched")
	}
	return trades, nil
}

type timeRange struct {
	from time.Time
	to   time.Time
}

// splitRange cuts [from, to] into consecutive windows of at most step.
func splitRange(from, to time.Time, step time.Duration) []timeRange {
	if to.Before(from) || step <= 0 {
		return nil
	}
	var out []timeRange
	for start := from; ; {
		end := start.Add(step)
		if !end.Before(to) {
			out = append(out, timeRange{from: start, to: to})
			return out
		}
		out = append(out, timeRange{from: start, to: end})
		start = end
	}
}
