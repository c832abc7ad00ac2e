package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/sirupsen/logrus"
)

const (
	defaultEnv             = "development"
	defaultHTTPHost        = "0.0.0.0"
	defaultHTTPPort        = 8080
	defaultRedisDB         = 0
	defaultCacheTTLSeconds = 300
	defaultInvestEndpoint  = "invest-public-api.tinkoff.ru:443"
	defaultInvestAppName   = "tradechart"
	defaultTimezone        = "America/New_York"
	defaultOutputDir       = "."
	defaultReportsExchange = "tradechart.reports"
	defaultRequestsQueue   = "tradechart.requests"
	defaultPrefetch        = 1

	SourceInvest   = "invest"
	SourcePostgres = "postgres"
)

// ErrMissing marks a required setting that was not provided.
var ErrMissing = errors.New("required setting is missing")

// Error describes an invalid or missing configuration key.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrMissing) {
		return fmt.Sprintf("%s is required", e.Key)
	}
	return fmt.Sprintf("parse %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config keeps the runtime configuration for the service.
type Config struct {
	Env      string
	LogLevel logrus.Level
	HTTP     HTTPConfig
	Invest   InvestConfig
	Report   ReportConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cache    CacheConfig
	RabbitMQ RabbitMQConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// InvestConfig holds the upstream market data credentials.
type InvestConfig struct {
	Token         string
	Endpoint      string
	AppName       string
	SkipTLSVerify bool
}

// ReportConfig controls where and how reports are produced.
type ReportConfig struct {
	Source     string
	Location   *time.Location
	OutputDir  string
	NotePolicy marketdata.NotePolicy
}

// PostgresConfig stores database connection parameters.
type PostgresConfig struct {
	DSN string
}

// RedisConfig stores Redis connection parameters. Empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds int
}

// TTL converts TTLSeconds to a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RabbitMQConfig stores broker settings. Empty URL disables messaging.
type RabbitMQConfig struct {
	URL             string
	ReportsExchange string
	RequestsQueue   string
	Prefetch        int
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	host := getString("HTTP_HOST", defaultHTTPHost)
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, &Error{Key: "HTTP_PORT", Err: err}
	}

	level, err := logrus.ParseLevel(getString("LOG_LEVEL", logrus.InfoLevel.String()))
	if err != nil {
		return nil, &Error{Key: "LOG_LEVEL", Err: err}
	}

	source := strings.ToLower(getString("TRADES_SOURCE", SourceInvest))
	dsn := getString("DATABASE_DSN", "")
	token := getString("INVEST_TOKEN", "")
	switch source {
	case SourceInvest:
		if token == "" {
			return nil, &Error{Key: "INVEST_TOKEN", Err: ErrMissing}
		}
	case SourcePostgres:
		if dsn == "" {
			return nil, &Error{Key: "DATABASE_DSN", Err: ErrMissing}
		}
	default:
		return nil, &Error{Key: "TRADES_SOURCE", Err: fmt.Errorf("unsupported source %q", source)}
	}

	tzName := getString("REPORT_TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, &Error{Key: "REPORT_TIMEZONE", Err: err}
	}

	policy, err := marketdata.ParseNotePolicy(getString("NOTE_POLICY", string(marketdata.NotePolicyJoin)))
	if err != nil {
		return nil, &Error{Key: "NOTE_POLICY", Err: err}
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, &Error{Key: "REDIS_DB", Err: err}
	}

	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, &Error{Key: "CACHE_TTL_SECONDS", Err: err}
	}

	prefetch, err := getInt("RABBITMQ_PREFETCH", defaultPrefetch)
	if err != nil {
		return nil, &Error{Key: "RABBITMQ_PREFETCH", Err: err}
	}

	return &Config{
		Env:      getString("APP_ENV", defaultEnv),
		LogLevel: level,
		HTTP:     HTTPConfig{Host: host, Port: port},
		Invest: InvestConfig{
			Token:         token,
			Endpoint:      getString("INVEST_ENDPOINT", defaultInvestEndpoint),
			AppName:       getString("INVEST_APP_NAME", defaultInvestAppName),
			SkipTLSVerify: getBool("INVEST_INSECURE_SKIP_VERIFY", false),
		},
		Report: ReportConfig{
			Source:     source,
			Location:   loc,
			OutputDir:  getString("OUTPUT_DIR", defaultOutputDir),
			NotePolicy: policy,
		},
		Postgres: PostgresConfig{
			DSN: dsn,
		},
		Redis: RedisConfig{
			Addr:     getString("REDIS_ADDR", ""),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getString("RABBITMQ_URL", ""),
			ReportsExchange: getString("RABBITMQ_REPORTS_EXCHANGE", defaultReportsExchange),
			RequestsQueue:   getString("RABBITMQ_REQUESTS_QUEUE", defaultRequestsQueue),
			Prefetch:        prefetch,
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "t", "true", "yes", "y":
		return true
	case "0", "f", "false", "no", "n":
		return false
	default:
		return fallback
	}
}
