package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tradechart/internal/application/pipeline"
	appmarketdata "tradechart/internal/application/service/marketdata"
	domain "tradechart/internal/domain/entity/marketdata"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const reportsBasePath = "/api/v1/reports"

var (
	errMissingSymbol = errors.New("symbol query param required")
	errMissingRange  = errors.New("from/to query params required")
)

// ReportService is the part of the report driver the API needs.
type ReportService interface {
	Enrich(ctx context.Context, req appmarketdata.Request) (*pipeline.Result, error)
	WriteCSV(w io.Writer, result *pipeline.Result) error
	WriteChart(w io.Writer, result *pipeline.Result) error
}

type Handler struct {
	router   *gin.Engine
	reports  ReportService
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *logrus.Entry
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(reports ReportService, cache *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:   router,
		reports:  reports,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.WithField("component", "http"),
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	reports := h.router.Group(reportsBasePath)
	if h.cache != nil {
		reports.Use(h.cacheMiddleware())
	}
	{
		reports.GET("", h.getReport)
		reports.GET("/csv", h.getReportCSV)
		reports.GET("/chart", h.getReportChart)
	}
}

type reportResponse struct {
	Summary domain.Summary         `json:"summary"`
	Trades  []domain.EnrichedTrade `json:"trades"`
	Volumes []domain.MinuteVolume  `json:"volumes"`
}

// getReport returns the summary, enriched trades and minute volumes.
func (h *Handler) getReport(c *gin.Context) {
	result, ok := h.enrich(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reportResponse{
		Summary: pipeline.Summarize(result),
		Trades:  result.Enriched,
		Volumes: result.Volumes,
	})
}

func (h *Handler) getReportCSV(c *gin.Context) {
	result, ok := h.enrich(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.reports.WriteCSV(&buf, result); err != nil {
		h.writeError(c, http.StatusInternalServerError, err)
		return
	}
	name := fmt.Sprintf("%s_trades_%s.csv", result.Window.Symbol, result.Window.From.UTC().Format(time.DateOnly))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) getReportChart(c *gin.Context) {
	result, ok := h.enrich(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.reports.WriteChart(&buf, result); err != nil {
		h.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) enrich(c *gin.Context) (*pipeline.Result, bool) {
	req, err := parseReportRequest(c)
	if err != nil {
		h.writeError(c, http.StatusBadRequest, err)
		return nil, false
	}
	result, err := h.reports.Enrich(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, statusFor(err), err)
		return nil, false
	}
	return result, true
}

func statusFor(err error) int {
	var fetchErr *domain.FetchError
	switch {
	case errors.Is(err, appmarketdata.ErrEmptySymbol),
		errors.Is(err, appmarketdata.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrUndefinedAggregate),
		errors.Is(err, pipeline.ErrInvalidTrade):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// cacheMiddleware caches successful GET responses in Redis together with
// their content type.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := h.cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.HGetAll(ctx, key).Result(); err == nil && cached["body"] != "" {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, cached["type"], []byte(cached["body"]))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			_, err := h.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, "type", recorder.Header().Get("Content-Type"), "body", recorder.body.Bytes())
				pipe.Expire(ctx, key, h.cacheTTL)
				return nil
			})
			if err != nil {
				h.logger.WithError(err).Warn("failed to cache response")
			}
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
}

func parseReportRequest(c *gin.Context) (appmarketdata.Request, error) {
	symbol := c.Query("symbol")
	if symbol == "" {
		return appmarketdata.Request{}, errMissingSymbol
	}
	from, to, err := parseTimeRange(c)
	if err != nil {
		return appmarketdata.Request{}, err
	}
	req := appmarketdata.Request{Symbol: symbol, From: from, To: to}
	if tz := c.Query("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return appmarketdata.Request{}, fmt.Errorf("tz: %w", err)
		}
		req.Location = loc
	}
	return req, nil
}

func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errMissingRange
	}
	from, err := appmarketdata.ParseBound(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := appmarketdata.ParseBound(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
