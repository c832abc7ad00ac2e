package interfaces

import (
	"context"

	domain "tradechart/internal/domain/entity/instruments"
)

// InstrumentsRepository stores resolved instruments locally.
type InstrumentsRepository interface {
	GetByTicker(ctx context.Context, ticker string) (*domain.Instrument, error)
	Upsert(ctx context.Context, instruments ...domain.Instrument) error
}

// InstrumentFinder looks instruments up at the upstream vendor.
type InstrumentFinder interface {
	FindInstrument(ctx context.Context, query string) ([]domain.Instrument, error)
	Shares(ctx context.Context) ([]domain.Instrument, error)
}
