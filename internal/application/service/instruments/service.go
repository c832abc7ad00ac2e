package instruments

import (
	"context"
	"errors"
	"fmt"

	domain "tradechart/internal/domain/entity/instruments"
	interfaces "tradechart/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptySymbol        = errors.New("symbol is empty")
	ErrInstrumentNotFound = errors.New("instrument not found")
)

// Service resolves tickers to vendor instruments, using the local store as
// a read-through cache in front of the vendor lookup.
type Service struct {
	repo   interfaces.InstrumentsRepository
	finder interfaces.InstrumentFinder
	logger *logrus.Entry
}

// NewService builds a resolver. repo may be nil when no database is configured.
func NewService(repo interfaces.InstrumentsRepository, finder interfaces.InstrumentFinder, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		finder: finder,
		logger: logger.WithField("component", "instruments"),
	}
}

func (s *Service) Resolve(ctx context.Context, symbol string) (*domain.Instrument, error) {
	ticker := domain.NormalizeTicker(symbol)
	if ticker == "" {
		return nil, ErrEmptySymbol
	}

	if s.repo != nil {
		instrument, err := s.repo.GetByTicker(ctx, ticker)
		if err == nil {
			return instrument, nil
		}
		s.logger.WithError(err).WithField("ticker", ticker).Debug("instrument not in local store")
	}

	if s.finder == nil {
		return nil, fmt.Errorf("%w: %s", ErrInstrumentNotFound, ticker)
	}
	found, err := s.finder.FindInstrument(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("find instrument %s: %w", ticker, err)
	}
	instrument, ok := pickInstrument(ticker, found)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstrumentNotFound, ticker)
	}

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, instrument); err != nil {
			s.logger.WithError(err).WithField("ticker", ticker).Warn("failed to store resolved instrument")
		}
	}
	return &instrument, nil
}

// SyncShares copies the vendor share list into the local store.
func (s *Service) SyncShares(ctx context.Context) (int, error) {
	if s.repo == nil || s.finder == nil {
		return 0, errors.New("sync requires both store and finder")
	}
	shares, err := s.finder.Shares(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch shares: %w", err)
	}
	if err := s.repo.Upsert(ctx, shares...); err != nil {
		return 0, fmt.Errorf("save shares: %w", err)
	}
	return len(shares), nil
}

// pickInstrument keeps exact ticker matches and prefers shares.
func pickInstrument(ticker string, candidates []domain.Instrument) (domain.Instrument, bool) {
	var (
		best  domain.Instrument
		found bool
	)
	for _, c := range candidates {
		if domain.NormalizeTicker(c.Ticker) != ticker {
			continue
		}
		if c.Type == domain.ShareType {
			return c, true
		}
		if !found {
			best, found = c, true
		}
	}
	return best, found
}
