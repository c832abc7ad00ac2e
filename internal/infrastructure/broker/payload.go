package broker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"
)

var ErrMalformedRequest = errors.New("malformed report request")

// ReportRequest asks the worker to build a report.
type ReportRequest struct {
	Symbol   string    `json:"symbol"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Timezone string    `json:"timezone,omitempty"`
}

// Validate checks the request and resolves its timezone. An empty timezone
// yields a nil location.
func (r ReportRequest) Validate() (*time.Location, error) {
	if strings.TrimSpace(r.Symbol) == "" {
		return nil, fmt.Errorf("%w: symbol is empty", ErrMalformedRequest)
	}
	if r.From.IsZero() || r.To.IsZero() {
		return nil, fmt.Errorf("%w: range bounds are required", ErrMalformedRequest)
	}
	if r.From.After(r.To) {
		return nil, fmt.Errorf("%w: from is after to", ErrMalformedRequest)
	}
	if r.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return loc, nil
}

// SummaryMessage is published after a report run.
type SummaryMessage struct {
	Summary     domain.Summary `json:"summary"`
	PublishedAt time.Time      `json:"published_at"`
}
