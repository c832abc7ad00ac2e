package marketdata

import (
	"fmt"
	"time"
)

// FetchError wraps a trade source failure with the request it served.
// Unwrap returns the source error untouched.
type FetchError struct {
	Source string
	Symbol string
	From   time.Time
	To     time.Time
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s trades from %s [%s, %s]: %v",
		e.Symbol, e.Source, e.From.UTC().Format(time.RFC3339), e.To.UTC().Format(time.RFC3339), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
