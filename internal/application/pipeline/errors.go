package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUndefinedAggregate = errors.New("undefined aggregate: cumulative volume is zero")
	ErrInvalidTrade       = errors.New("invalid trade")
	ErrNilLocation        = errors.New("reporting location is nil")
)

// UndefinedAggregateError reports the position at which VWAP could not be
// computed, with the symbol and range of the batch.
type UndefinedAggregateError struct {
	Symbol string
	From   time.Time
	To     time.Time
	Index  int
}

func (e *UndefinedAggregateError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s at index %d", ErrUndefinedAggregate, e.Index)
	}
	return fmt.Sprintf("%s at index %d (symbol=%s from=%s to=%s)",
		ErrUndefinedAggregate, e.Index, e.Symbol,
		e.From.UTC().Format(time.RFC3339), e.To.UTC().Format(time.RFC3339))
}

func (e *UndefinedAggregateError) Unwrap() error {
	return ErrUndefinedAggregate
}

// InvalidTradeError is returned by Normalize for trades that cannot enter
// the pipeline.
type InvalidTradeError struct {
	Index  int
	ID     uuid.UUID
	Reason string
}

func (e *InvalidTradeError) Error() string {
	return fmt.Sprintf("%s at index %d (id=%s): %s", ErrInvalidTrade, e.Index, e.ID, e.Reason)
}

func (e *InvalidTradeError) Unwrap() error {
	return ErrInvalidTrade
}
