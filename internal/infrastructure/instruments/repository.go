package instruments

import (
	"context"
	"errors"
	"fmt"

	domain "tradechart/internal/domain/entity/instruments"
	"tradechart/internal/domain/interfaces"
	"tradechart/internal/infrastructure/instruments/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrInstrumentNotFound = errors.New("instrument not found")

const upsertBatchSize = 500

type Repository struct {
	db *gorm.DB
}

var _ interfaces.InstrumentsRepository = (*Repository)(nil)

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewRepositoryWithDB(db), nil
}

// NewRepositoryWithDB wraps an already opened connection.
func NewRepositoryWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.InstrumentModel{})
}

func (r *Repository) Close() {
	if r == nil || r.db == nil {
		return
	}
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// GetByTicker returns the instrument for ticker, preferring shares when a
// ticker is listed under several instrument types.
func (r *Repository) GetByTicker(ctx context.Context, ticker string) (*domain.Instrument, error) {
	var rows []models.InstrumentModel
	err := r.db.WithContext(ctx).
		Where("ticker = ?", domain.NormalizeTicker(ticker)).
		Order("class_code").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrInstrumentNotFound
	}
	best := rows[0]
	for _, row := range rows {
		if domain.InstrumentType(row.Type) == domain.ShareType {
			best = row
			break
		}
	}
	instrument := best.ToDomain()
	return &instrument, nil
}

func (r *Repository) Upsert(ctx context.Context, instruments ...domain.Instrument) error {
	if len(instruments) == 0 {
		return nil
	}
	rows := make([]models.InstrumentModel, 0, len(instruments))
	for _, instrument := range instruments {
		rows = append(rows, models.FromDomain(instrument))
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"figi", "ticker", "class_code", "name", "instrument_type", "lot", "updated_at"}),
		}).
		CreateInBatches(rows, upsertBatchSize).Error
}
