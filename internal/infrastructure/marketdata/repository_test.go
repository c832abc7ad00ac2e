package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return &Repository{pool: mock}, mock
}

var (
	from = time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
)

func TestRepository_FetchTrades(t *testing.T) {
	repo, mock := newMockRepository(t)
	tradeID, instrumentUID := uuid.New(), uuid.New()
	at := time.Date(2024, 12, 23, 14, 30, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"trade_id", "instrument_uid", "side", "price", "quantity_lots", "lot", "traded_at"}).
		AddRow(tradeID, instrumentUID, "SELL", 280.15, int64(3), int32(10), at)
	mock.ExpectQuery("SELECT (.+) FROM trades t JOIN instruments i").
		WithArgs("SBER", from, to).
		WillReturnRows(rows)

	trades, err := repo.FetchTrades(context.Background(), "SBER", from, to)

	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, tradeID, trades[0].ID)
	assert.Equal(t, "SBER", trades[0].Symbol)
	assert.Equal(t, domain.TradeSideSell, trades[0].Side)
	assert.Equal(t, "280.15", trades[0].Price.String())
	assert.Equal(t, int64(30), trades[0].Size)
	assert.Equal(t, at, trades[0].EventTime)
}

func TestRepository_FetchTradesWrapsQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	cause := errors.New("connection refused")
	mock.ExpectQuery("SELECT (.+) FROM trades").WillReturnError(cause)

	_, err := repo.FetchTrades(context.Background(), "SBER", from, to)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, SourceName, fetchErr.Source)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestRepository_SaveEnriched(t *testing.T) {
	repo, mock := newMockRepository(t)
	trades := []domain.EnrichedTrade{{
		ID:        uuid.New(),
		Symbol:    "SBER",
		LocalTime: time.Now(),
		Price:     decimal.RequireFromString("10.5"),
		VWAP:      decimal.RequireFromString("10.25"),
		Size:      7,
		Labels:    domain.NewLabelSet(domain.LabelDayHigh),
	}}
	mock.ExpectCopyFrom(pgx.Identifier{"enriched_trades"},
		[]string{"run_id", "trade_id", "symbol", "local_time", "price", "vwap", "size", "labels", "note"}).
		WillReturnResult(1)

	require.NoError(t, repo.SaveEnriched(context.Background(), "run-1", trades))
	require.NoError(t, repo.SaveEnriched(context.Background(), "run-1", nil))
}

func TestRepository_SaveMinuteVolumes(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectCopyFrom(pgx.Identifier{"minute_volumes"},
		[]string{"run_id", "symbol", "bucket", "bucket_start", "size"}).
		WillReturnError(errors.New("relation does not exist"))

	err := repo.SaveMinuteVolumes(context.Background(), "run-1", "SBER", []domain.MinuteVolume{
		{Bucket: "2024-12-23 09:30", Start: from, Size: 100},
	})

	assert.ErrorContains(t, err, "copy minute volumes")
}

func TestRepository_Migrate(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS enriched_trades").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, repo.Migrate(context.Background()))
}
