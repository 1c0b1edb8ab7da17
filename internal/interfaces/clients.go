// Package interfaces defines service contracts for Verdict
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/verdict/internal/models"
)

// ErrSymbolNotFound is returned by a provider when the symbol does not exist
// on that provider. The fusion orchestrator treats it as unrecoverable once
// every tier agrees.
var ErrSymbolNotFound = errors.New("symbol not found")

// TransientError wraps a provider failure worth retrying on a later run:
// timeouts, rate limits, 5xx. The orchestrator skips the tier and moves on.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient provider error: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a provider failure the pipeline should
// tolerate by skipping the tier.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// SourceClient is a market data provider participating in the tier cascade.
type SourceClient interface {
	// Source identifies the provider.
	Source() models.Source

	// FetchRaw retrieves everything the provider knows about a symbol:
	// statements, profile, and forecast data in the provider's own field
	// naming. Returns ErrSymbolNotFound when the provider has no listing,
	// or a *TransientError for retryable failures.
	FetchRaw(ctx context.Context, symbol string) (*models.RawPayload, error)
}

// FXClient supplies currency conversion rates.
type FXClient interface {
	// Rate returns the base→quote conversion rate for a date. A zero date
	// means the latest available fix.
	Rate(ctx context.Context, base, quote string, date time.Time) (float64, error)
}
