// Package repo reads search performance metrics from the configured store backend
package repo

import (
	"context"
	"time"

	"gscchat/internal/core/intents"
	"gscchat/internal/core/metrics"
	"gscchat/internal/modkit/repokit"
	perr "gscchat/internal/platform/errors"
	"gscchat/internal/platform/store"
)

// MetricsRepo is the metrics Source the dispatcher runs plans against
type MetricsRepo interface {
	intents.Source
}

// New constructs a binder compiling plans with d against table
func New(d Dialect, table string) repokit.Binder[MetricsRepo] {
	if table == "" {
		table = DefaultTable
	}
	return &sqlBinder{d: d, table: table}
}

type sqlBinder struct {
	d     Dialect
	table string
}

// Bind binds a Queryer to produce a MetricsRepo
func (b *sqlBinder) Bind(q repokit.Queryer) MetricsRepo {
	return &sqlRepo{q: q, d: b.d, table: b.table}
}

type sqlRepo struct {
	q     repokit.Queryer
	d     Dialect
	table string
}

var _ intents.Source = (*sqlRepo)(nil)

// Rows returns one raw row per dimension tuple
func (r *sqlRepo) Rows(ctx context.Context, p intents.Plan) ([]metrics.RawRow, error) {
	ms, q, err := r.read(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make([]metrics.RawRow, 0, len(ms))
	for _, m := range ms {
		out = append(out, toRaw(m, q.Dims))
	}
	return out, nil
}

// Totals returns the aggregate over the plan's range and filters
func (r *sqlRepo) Totals(ctx context.Context, p intents.Plan) (metrics.RawRow, error) {
	p.Dimensions, p.RowLimit, p.StartRow = nil, 0, 0
	ms, _, err := r.read(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return metrics.RawRow{}, nil
	}
	return toRaw(ms[0], nil), nil
}

func (r *sqlRepo) read(ctx context.Context, p intents.Plan) ([]map[string]any, Query, error) {
	if r.q == nil {
		return nil, Query{}, intents.ErrNotConnected
	}
	q, err := r.d.Compile(r.table, p)
	if err != nil {
		return nil, Query{}, err
	}
	ms, err := store.Maps(ctx, r.q, q.SQL, q.Args...)
	if err != nil {
		return nil, Query{}, perr.FromSource(err, r.d.Name)
	}
	return ms, q, nil
}

// toRaw reshapes a scanned row into the normalizer's raw form
func toRaw(m map[string]any, dims []string) metrics.RawRow {
	raw := metrics.RawRow{
		"clicks":      m[colClicks],
		"impressions": m[colImpressions],
		"ctr":         m[colCTR],
		"position":    m[colPosition],
	}
	if len(dims) > 0 {
		keys := make([]any, len(dims))
		for i, d := range dims {
			keys[i] = m[d]
		}
		raw["keys"] = keys
	}
	return raw
}

// Fact is one day of one query on one page
type Fact struct {
	Site        string
	Date        time.Time
	Query       string
	Page        string
	Clicks      int64
	Impressions int64
	Position    float64
}

// FactColumns is the load column order
var FactColumns = []string{"site_url", "date", "query", "page", "clicks", "impressions", "position"}

// LoadFacts bulk inserts facts into table through l
func LoadFacts(ctx context.Context, l store.Loader, table string, facts []Fact) (int64, error) {
	if l == nil {
		return 0, intents.ErrNotConnected
	}
	if table == "" {
		table = DefaultTable
	}
	if !ValidTable(table) {
		return 0, perr.WithField(perr.InvalidArgf("invalid table name %q", table), "table")
	}
	rows := make([][]any, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, []any{f.Site, f.Date.UTC(), f.Query, f.Page, f.Clicks, f.Impressions, f.Position})
	}
	n, err := l.Load(ctx, table, FactColumns, rows)
	if err != nil {
		return n, perr.FromSource(err, "load")
	}
	return n, nil
}
