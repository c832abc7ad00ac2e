package marketdata

import (
	"context"
	"fmt"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"
	"tradechart/internal/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const SourceName = "postgres"

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// Repository reads raw trades from and writes enriched reports to Postgres.
type Repository struct {
	pool pool
}

var (
	_ interfaces.TradeSource   = (*Repository)(nil)
	_ interfaces.EnrichedStore = (*Repository)(nil)
)

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Repository{pool: p}, nil
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS enriched_trades (
		run_id     text             NOT NULL,
		trade_id   uuid             NOT NULL,
		symbol     text             NOT NULL,
		local_time timestamptz      NOT NULL,
		price      double precision NOT NULL,
		vwap       double precision NOT NULL,
		size       bigint           NOT NULL,
		labels     smallint         NOT NULL,
		note       text             NOT NULL,
		PRIMARY KEY (run_id, trade_id)
	);
	CREATE TABLE IF NOT EXISTS minute_volumes (
		run_id       text        NOT NULL,
		symbol       text        NOT NULL,
		bucket       text        NOT NULL,
		bucket_start timestamptz NOT NULL,
		size         bigint      NOT NULL,
		PRIMARY KEY (run_id, bucket)
	)`

// Migrate creates the report tables. The trades and instruments tables are
// owned by the ingestion side.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate report tables: %w", err)
	}
	return nil
}

// Trades

func (r *Repository) Name() string {
	return SourceName
}

func (r *Repository) FetchTrades(ctx context.Context, symbol string, from, to time.Time) ([]domain.Trade, error) {
	const query = `
		SELECT t.trade_id, t.instrument_uid, t.side, t.price, t.quantity_lots, i.lot, t.traded_at
		FROM trades t
		JOIN instruments i ON i.uid = t.instrument_uid
		WHERE i.ticker = $1 AND t.traded_at >= $2 AND t.traded_at <= $3
		ORDER BY t.traded_at ASC`
	fail := func(err error) error {
		return &domain.FetchError{Source: SourceName, Symbol: symbol, From: from, To: to, Err: err}
	}

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fail(err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fail(err)
		}
		trade.Symbol = symbol
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(err)
	}
	return trades, nil
}

func scanTrade(row pgx.Row) (domain.Trade, error) {
	var (
		trade    domain.Trade
		side     string
		price    float64
		quantity int64
		lot      int32
	)
	err := row.Scan(
		&trade.ID,
		&trade.InstrumentUID,
		&side,
		&price,
		&quantity,
		&lot,
		&trade.EventTime,
	)
	if err != nil {
		return domain.Trade{}, err
	}
	trade.Side = domain.TradeSide(side)
	trade.Price = decimal.NewFromFloat(price)
	trade.Size = quantity
	if lot > 1 {
		trade.Size *= int64(lot)
	}
	return trade, nil
}

// Reports

func (r *Repository) SaveEnriched(ctx context.Context, runID string, trades []domain.EnrichedTrade) error {
	if len(trades) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(trades))
	for i := range trades {
		rows = append(rows, []any{
			runID,
			trades[i].ID,
			trades[i].Symbol,
			trades[i].LocalTime,
			trades[i].Price.InexactFloat64(),
			trades[i].VWAP.InexactFloat64(),
			trades[i].Size,
			int16(trades[i].Labels),
			trades[i].Labels.String(),
		})
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"enriched_trades"},
		[]string{"run_id", "trade_id", "symbol", "local_time", "price", "vwap", "size", "labels", "note"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy enriched trades: %w", err)
	}
	return nil
}

func (r *Repository) SaveMinuteVolumes(ctx context.Context, runID, symbol string, volumes []domain.MinuteVolume) error {
	if len(volumes) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(volumes))
	for _, v := range volumes {
		rows = append(rows, []any{runID, symbol, v.Bucket, v.Start, v.Size})
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"minute_volumes"},
		[]string{"run_id", "symbol", "bucket", "bucket_start", "size"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy minute volumes: %w", err)
	}
	return nil
}
