package chart

import (
	"fmt"
	"io"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"
	"tradechart/internal/domain/interfaces"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	SeriesPrice    = "Trade Price"
	SeriesVWAP     = "VWAP"
	SeriesHourHigh = "Hour High"
	SeriesHourLow  = "Hour Low"
	SeriesDayHigh  = "Day High"
	SeriesDayLow   = "Day Low"
	SeriesVolume   = "Volume"

	pointLayout = "2006-01-02 15:04:05.000"
)

type marker struct {
	name   string
	color  string
	symbol string
	size   int
}

var (
	hourHighMarker = marker{name: SeriesHourHigh, color: "lightgreen", symbol: "circle", size: 8}
	hourLowMarker  = marker{name: SeriesHourLow, color: "pink", symbol: "circle", size: 8}
	dayHighMarker  = marker{name: SeriesDayHigh, color: "green", symbol: "pin", size: 12}
	dayLowMarker   = marker{name: SeriesDayLow, color: "red", symbol: "pin", size: 12}
)

// Renderer draws an HTML page with the price chart and the minute volume bars.
type Renderer struct {
	theme  string
	width  string
	height string
}

var _ interfaces.Renderer = (*Renderer)(nil)

type Option func(*Renderer)

func WithTheme(theme string) Option {
	return func(r *Renderer) { r.theme = theme }
}

func WithSize(width, height string) Option {
	return func(r *Renderer) {
		r.width = width
		r.height = height
	}
}

func NewRenderer(options ...Option) *Renderer {
	r := &Renderer{
		theme:  types.ThemeChalk,
		width:  "1400px",
		height: "600px",
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *Renderer) Render(w io.Writer, input interfaces.ChartInput) error {
	title := Title(input.Symbol, input.From, input.To)

	price := r.priceChart(title, input)
	volume := r.volumeChart(input)

	page := components.NewPage()
	page.SetPageTitle(title)
	page.SetLayout(components.PageCenterLayout)
	page.AddCharts(price, volume)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func (r *Renderer) priceChart(title string, input interfaces.ChartInput) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     r.width,
			Height:    r.height,
			Theme:     r.theme,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time", Name: axisName(input.Timezone)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price ($)", Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", Start: 0, End: 100},
			opts.DataZoom{Type: "slider", Start: 0, End: 100},
		),
	)

	prices := make([]opts.LineData, 0, len(input.Trades))
	vwaps := make([]opts.LineData, 0, len(input.Trades))
	for _, trade := range input.Trades {
		at := trade.LocalTime.Format(pointLayout)
		prices = append(prices, opts.LineData{Value: []interface{}{at, trade.Price.InexactFloat64()}})
		vwaps = append(vwaps, opts.LineData{Value: []interface{}{at, trade.VWAP.InexactFloat64()}})
	}

	line.AddSeries(SeriesPrice, prices,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#17BECF", Width: 1}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#17BECF"}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	line.AddSeries(SeriesVWAP, vwaps,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#B6E880", Width: 2, Type: "dashed"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#B6E880"}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)

	line.Overlap(
		scatter(hourHighMarker, input.HourHighs),
		scatter(hourLowMarker, input.HourLows),
		scatter(dayHighMarker, input.DayHighs),
		scatter(dayLowMarker, input.DayLows),
	)
	return line
}

func scatter(m marker, trades []domain.EnrichedTrade) *charts.Scatter {
	points := make([]opts.ScatterData, 0, len(trades))
	for _, trade := range trades {
		points = append(points, opts.ScatterData{
			Value:      []interface{}{trade.LocalTime.Format(pointLayout), trade.Price.InexactFloat64()},
			Symbol:     m.symbol,
			SymbolSize: m.size,
		})
	}

	s := charts.NewScatter()
	s.AddSeries(m.name, points, charts.WithItemStyleOpts(opts.ItemStyle{Color: m.color}))
	return s
}

func (r *Renderer) volumeChart(input interfaces.ChartInput) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  r.width,
			Height: "250px",
			Theme:  r.theme,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time", Name: axisName(input.Timezone)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Volume"}),
	)

	bars := make([]opts.BarData, 0, len(input.Volumes))
	for _, v := range input.Volumes {
		bars = append(bars, opts.BarData{Value: []interface{}{v.Start.Format(pointLayout), v.Size}})
	}
	bar.AddSeries(SeriesVolume, bars,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "rgba(127,127,127,0.5)"}),
	)
	return bar
}

func axisName(tz string) string {
	if tz == "" {
		return "Time"
	}
	return fmt.Sprintf("Time (%s)", tz)
}

// Title is the chart heading for a symbol and range.
func Title(symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s Trade Price Chart (%s to %s)",
		symbol, from.Format(time.DateTime), to.Format(time.DateTime))
}
