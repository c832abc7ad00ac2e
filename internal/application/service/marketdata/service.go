package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradechart/internal/application/pipeline"
	marketdata "tradechart/internal/domain/entity/marketdata"
	interfaces "tradechart/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptySymbol  = errors.New("symbol is required")
	ErrInvalidRange = errors.New("range start is after range end")
)

// Request describes one report run. A nil Location falls back to the
// service default.
type Request struct {
	Symbol   string
	From     time.Time
	To       time.Time
	Location *time.Location
}

// Report is what a finished run produced.
type Report struct {
	RunID     string
	Summary   marketdata.Summary
	Result    *pipeline.Result
	CSVPath   string
	ChartPath string
}

// CacheKeyFunc builds the cache key for one fetch.
type CacheKeyFunc func(source, symbol string, from, to time.Time) string

// Service drives a report run: fetch, enrich, export, render, and the optional
// persistence and publishing side effects.
type Service struct {
	source    interfaces.TradeSource
	exporter  interfaces.Exporter
	renderer  interfaces.Renderer
	cache     interfaces.TradeCache
	cacheKey  CacheKeyFunc
	store     interfaces.EnrichedStore
	publisher interfaces.ReportPublisher
	location  *time.Location
	outputDir string
	skipChart bool
	logger    *logrus.Entry
}

type Option func(*Service)

func WithCache(cache interfaces.TradeCache, key CacheKeyFunc) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheKey = key
	}
}

func WithStore(store interfaces.EnrichedStore) Option {
	return func(s *Service) { s.store = store }
}

func WithPublisher(publisher interfaces.ReportPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func WithOutputDir(dir string) Option {
	return func(s *Service) { s.outputDir = dir }
}

// WithoutChart disables the HTML chart file in Run.
func WithoutChart() Option {
	return func(s *Service) { s.skipChart = true }
}

func NewService(source interfaces.TradeSource, exporter interfaces.Exporter, renderer interfaces.Renderer, logger *logrus.Logger, options ...Option) *Service {
	s := &Service{
		source:    source,
		exporter:  exporter,
		renderer:  renderer,
		location:  time.UTC,
		outputDir: ".",
		logger:    logger.WithField("component", "report_service"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Enrich fetches the batch and runs the enrichment pipeline over it. Source
// failures are returned as the source reported them.
func (s *Service) Enrich(ctx context.Context, req Request) (*pipeline.Result, error) {
	req, err := s.normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	raw, err := s.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Enrich(ctx, pipeline.Window{
		Symbol:   req.Symbol,
		From:     req.From,
		To:       req.To,
		Location: req.Location,
	}, raw)
	if err != nil {
		return nil, err
	}

	if result.Empty() {
		s.logger.WithFields(logrus.Fields{
			"symbol": req.Symbol,
			"from":   req.From,
			"to":     req.To,
			"raw":    len(raw),
		}).Warn("no trades in range")
	}
	return result, nil
}

// Run produces the CSV and chart files for a request and returns the summary.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	result, err := s.Enrich(ctx, req)
	if err != nil {
		return nil, err
	}
	window := result.Window

	report := &Report{
		RunID:   uuid.NewString(),
		Summary: pipeline.Summarize(result),
		Result:  result,
	}
	log := s.logger.WithFields(logrus.Fields{
		"run_id": report.RunID,
		"symbol": window.Symbol,
	})

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report.CSVPath = filepath.Join(s.outputDir, csvFileName(window.Symbol, window.From))
	if err := writeFile(report.CSVPath, func(w io.Writer) error {
		return s.WriteCSV(w, result)
	}); err != nil {
		return nil, err
	}

	if !s.skipChart {
		report.ChartPath = filepath.Join(s.outputDir, chartFileName(window.Symbol, window.From))
		if err := writeFile(report.ChartPath, func(w io.Writer) error {
			return s.WriteChart(w, result)
		}); err != nil {
			return nil, err
		}
	}

	if s.store != nil {
		if err := s.store.SaveEnriched(ctx, report.RunID, result.Enriched); err != nil {
			return nil, fmt.Errorf("save enriched trades: %w", err)
		}
		if err := s.store.SaveMinuteVolumes(ctx, report.RunID, window.Symbol, result.Volumes); err != nil {
			return nil, fmt.Errorf("save minute volumes: %w", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSummary(ctx, report.Summary); err != nil {
			log.WithError(err).Warn("failed to publish summary")
		}
	}

	log.WithFields(logrus.Fields{
		"trades": report.Summary.Trades,
		"csv":    report.CSVPath,
		"chart":  report.ChartPath,
	}).Info("report written")
	return report, nil
}

// WriteCSV exports the enriched rows of a result.
func (s *Service) WriteCSV(w io.Writer, result *pipeline.Result) error {
	if err := s.exporter.Export(w, result.Enriched); err != nil {
		return fmt.Errorf("export trades: %w", err)
	}
	return nil
}

// WriteChart renders the chart of a result.
func (s *Service) WriteChart(w io.Writer, result *pipeline.Result) error {
	if err := s.renderer.Render(w, ChartInput(result)); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// ChartInput splits a result into the series a renderer draws. Every marker
// slice holds trades in normalized order.
func ChartInput(result *pipeline.Result) interfaces.ChartInput {
	window := result.Window
	input := interfaces.ChartInput{
		Symbol:    window.Symbol,
		From:      window.From,
		To:        window.To,
		Trades:    result.Enriched,
		HourHighs: []marketdata.EnrichedTrade{},
		HourLows:  []marketdata.EnrichedTrade{},
		DayHighs:  []marketdata.EnrichedTrade{},
		DayLows:   []marketdata.EnrichedTrade{},
		Volumes:   result.Volumes,
	}
	if window.Location != nil {
		input.Timezone = window.Location.String()
		input.From = window.From.In(window.Location)
		input.To = window.To.In(window.Location)
	}
	for _, trade := range result.Enriched {
		if trade.Labels.Has(marketdata.LabelHourHigh) {
			input.HourHighs = append(input.HourHighs, trade)
		}
		if trade.Labels.Has(marketdata.LabelHourLow) {
			input.HourLows = append(input.HourLows, trade)
		}
		if trade.Labels.Has(marketdata.LabelDayHigh) {
			input.DayHighs = append(input.DayHighs, trade)
		}
		if trade.Labels.Has(marketdata.LabelDayLow) {
			input.DayLows = append(input.DayLows, trade)
		}
	}
	return input
}

func (s *Service) normalizeRequest(req Request) (Request, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		return req, ErrEmptySymbol
	}
	if req.From.After(req.To) {
		return req, ErrInvalidRange
	}
	if req.Location == nil {
		req.Location = s.location
	}
	return req, nil
}

func (s *Service) fetch(ctx context.Context, req Request) ([]marketdata.Trade, error) {
	var key string
	if s.cache != nil && s.cacheKey != nil {
		key = s.cacheKey(s.source.Name(), req.Symbol, req.From, req.To)
		trades, ok, err := s.cache.GetTrades(ctx, key)
		switch {
		case err != nil:
			s.logger.WithError(err).Warn("trade cache read failed")
		case ok:
			s.logger.WithField("key", key).Debug("trade cache hit")
			return trades, nil
		}
	}

	trades, err := s.source.FetchTrades(ctx, req.Symbol, req.From, req.To)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.SetTrades(ctx, key, trades); err != nil {
			s.logger.WithError(err).Warn("trade cache write failed")
		}
	}
	return trades, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func csvFileName(symbol string, from time.Time) string {
	return fmt.Sprintf("%s_trades_%s.csv", symbol, from.UTC().Format(time.DateOnly))
}

func chartFileName(symbol string, from time.Time) string {
	return fmt.Sprintf("%s_chart_%s.html", symbol, from.UTC().Format(time.DateOnly))
}

// ParseBound reads a range bound given as RFC3339 or as a YYYY-MM-DD date,
// which means midnight UTC.
func ParseBound(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: expected RFC3339 or YYYY-MM-DD", value)
	}
	return t, nil
}
