package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradechart/internal/app"
	appmarketdata "tradechart/internal/application/service/marketdata"
	"tradechart/internal/config"
	domain "tradechart/internal/domain/entity/marketdata"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("load .env: %v", err)
	}

	if err := newCLI(logger).RunContext(ctx, os.Args); err != nil {
		logger.Fatalf("tradechart: %v", err)
	}
}

func newCLI(logger *logrus.Logger) *cli.App {
	return &cli.App{
		Name:  "tradechart",
		Usage: "enrich a day of trades with VWAP and extremum labels, then export CSV and an HTML chart",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "symbol", Aliases: []string{"s"}, Usage: "ticker to report", Required: true},
			&cli.StringFlag{Name: "start", Usage: "range start, YYYY-MM-DD (UTC midnight) or RFC3339", Required: true},
			&cli.StringFlag{Name: "end", Usage: "range end, YYYY-MM-DD (UTC midnight) or RFC3339", Required: true},
			&cli.StringFlag{Name: "tz", Usage: "reporting timezone, overrides REPORT_TIMEZONE"},
			&cli.StringFlag{Name: "out", Usage: "output directory, overrides OUTPUT_DIR"},
			&cli.BoolFlag{Name: "no-chart", Usage: "skip the HTML chart"},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}
}

func run(c *cli.Context, logger *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	if tz := c.String("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("load timezone %q: %w", tz, err)
		}
		cfg.Report.Location = loc
	}
	if out := c.String("out"); out != "" {
		cfg.Report.OutputDir = out
	}

	from, err := appmarketdata.ParseBound(c.String("start"))
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	to, err := appmarketdata.ParseBound(c.String("end"))
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}

	var extra []appmarketdata.Option
	if c.Bool("no-chart") {
		extra = append(extra, appmarketdata.WithoutChart())
	}

	a, err := app.New(c.Context, cfg, logger, extra...)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Reports.Run(c.Context, appmarketdata.Request{
		Symbol: c.String("symbol"),
		From:   from,
		To:     to,
	})
	if err != nil {
		return err
	}

	printSummary(c.App.Writer, report)
	return nil
}

func printSummary(w io.Writer, report *appmarketdata.Report) {
	s := report.Summary
	fmt.Fprintf(w, "%s trades %s to %s (%s)\n", s.Symbol,
		s.From.Format(time.DateTime), s.To.Format(time.DateTime), s.Timezone)
	fmt.Fprintf(w, "Total trades: %d\n", s.Trades)
	if s.Trades == 0 {
		fmt.Fprintln(w, "No trades in range.")
		printOutputs(w, report)
		return
	}
	fmt.Fprintf(w, "First trade: %s\n", s.FirstTrade.Format(time.DateTime))
	fmt.Fprintf(w, "Last trade:  %s\n", s.LastTrade.Format(time.DateTime))
	fmt.Fprintf(w, "Day high: $%s  Day low: $%s  Range: $%s\n", s.DayHigh, s.DayLow, s.DayRange)
	fmt.Fprintf(w, "Final VWAP: $%s\n", s.FinalVWAP.StringFixed(4))
	fmt.Fprintf(w, "Volume: total %d, min size %d, max size %d\n", s.Volume.Total, s.Volume.MinSize, s.Volume.MaxSize)
	fmt.Fprintln(w, "Hourly:")
	for _, h := range s.Hours {
		fmt.Fprintf(w, "  %s  high $%s  low $%s  volume %d  trades %d\n", h.Bucket, h.High, h.Low, h.Volume, h.Trades)
	}
	fmt.Fprintf(w, "Day high trades: %d, day low trades: %d\n",
		countLabel(report, domain.LabelDayHigh), countLabel(report, domain.LabelDayLow))
	printOutputs(w, report)
}

func printOutputs(w io.Writer, report *appmarketdata.Report) {
	fmt.Fprintf(w, "CSV: %s\n", report.CSVPath)
	if report.ChartPath != "" {
		fmt.Fprintf(w, "Chart: %s\n", report.ChartPath)
	}
}

func countLabel(report *appmarketdata.Report, label domain.Label) int {
	n := 0
	for _, trade := range report.Result.Enriched {
		if trade.Labels.Has(label) {
			n++
		}
	}
	return n
}
