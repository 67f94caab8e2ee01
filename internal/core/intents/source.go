package intents

import (
	"context"

	"gscchat/internal/core/metrics"
	perr "gscchat/internal/platform/errors"
)

// Source runs plans against a metrics backend. Implementations own all I/O;
// their errors are returned to the caller unchanged
type Source interface {
	Rows(ctx context.Context, p Plan) ([]metrics.RawRow, error)
	Totals(ctx context.Context, p Plan) (metrics.RawRow, error)
}

// SourceFuncs adapts two callbacks into a Source
type SourceFuncs struct {
	RowsFn   func(ctx context.Context, p Plan) ([]metrics.RawRow, error)
	TotalsFn func(ctx context.Context, p Plan) (metrics.RawRow, error)
}

// ErrNotConnected is returned when no metrics source is wired
var ErrNotConnected = perr.New(perr.ErrorCodeUnauthorized, "metrics source not connected")

// Rows implements Source
func (s SourceFuncs) Rows(ctx context.Context, p Plan) ([]metrics.RawRow, error) {
	if s.RowsFn == nil {
		return nil, ErrNotConnected
	}
	return s.RowsFn(ctx, p)
}

// Totals implements Source
func (s SourceFuncs) Totals(ctx context.Context, p Plan) (metrics.RawRow, error) {
	if s.TotalsFn == nil {
		return nil, ErrNotConnected
	}
	return s.TotalsFn(ctx, p)
}
