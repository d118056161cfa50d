// Package datasource implements the data-source contract: a single
// Fetch method returning rows within [start, end] for the requested
// symbols, plus a validating wrapper enforcing the OHLCV schema on every
// return path (even when wrapping a live provider).
package datasource

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-core/internal/schema"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// DataSource is the contract every OHLCV provider (live or historical)
// satisfies: fetch(start, end, symbols) -> Table. Returned rows
// must have datetime in [start, end] and symbol in symbols (or all symbols
// if symbols is empty).
type DataSource interface {
	Fetch(ctx context.Context, start, end time.Time, symbols []string) (*tables.OHLCVTable, error)
}

// OHLCVValidatingSource wraps a DataSource and always revalidates its
// result against the OHLCV schema before returning it, regardless of
// whether the wrapped source is known to be well-behaved.
type OHLCVValidatingSource struct {
	inner DataSource
}

// NewOHLCVValidatingSource wraps inner with schema validation.
func NewOHLCVValidatingSource(inner DataSource) *OHLCVValidatingSource {
	return &OHLCVValidatingSource{inner: inner}
}

// Fetch delegates to the wrapped source and validates the result.
func (s *OHLCVValidatingSource) Fetch(ctx context.Context, start, end time.Time, symbols []string) (*tables.OHLCVTable, error) {
	table, err := s.inner.Fetch(ctx, start, end, symbols)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceError, "data source fetch failed", err)
	}

	validated, err := schema.ValidateOHLCV(*table)
	if err != nil {
		return nil, err
	}

	return &validated, nil
}
