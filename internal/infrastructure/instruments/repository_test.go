package instruments

import (
	"context"
	"testing"

	domain "tradechart/internal/domain/entity/instruments"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := NewRepositoryWithDB(db)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(repo.Close)
	return repo
}

func TestRepository_UpsertAndGetByTicker(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	share := domain.Instrument{UID: uuid.New(), Figi: "BBG004730N88", Ticker: "sber", ClassCode: "TQBR", Type: domain.ShareType, Lot: 10}

	require.NoError(t, repo.Upsert(ctx, share))

	got, err := repo.GetByTicker(ctx, " SBER ")
	require.NoError(t, err)
	assert.Equal(t, share.UID, got.UID)
	assert.Equal(t, "SBER", got.Ticker)
	assert.Equal(t, int32(10), got.Lot)

	share.Name = "Sberbank"
	share.Lot = 1
	require.NoError(t, repo.Upsert(ctx, share))

	got, err = repo.GetByTicker(ctx, "sber")
	require.NoError(t, err)
	assert.Equal(t, "Sberbank", got.Name)
	assert.Equal(t, int32(1), got.Lot)
}

func TestRepository_GetByTickerPrefersShares(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	future := domain.Instrument{UID: uuid.New(), Ticker: "GAZP", ClassCode: "A", Type: domain.FutureType}
	share := domain.Instrument{UID: uuid.New(), Ticker: "GAZP", ClassCode: "TQBR", Type: domain.ShareType}

	require.NoError(t, repo.Upsert(ctx, future, share))

	got, err := repo.GetByTicker(ctx, "GAZP")
	require.NoError(t, err)
	assert.Equal(t, share.UID, got.UID)
}

func TestRepository_GetByTickerNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByTicker(context.Background(), "NOPE")

	assert.ErrorIs(t, err, ErrInstrumentNotFound)
}
