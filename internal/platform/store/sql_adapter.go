package store

import (
	"context"
	"errors"
	"strings"

	"gscchat/internal/platform/store/pg"
	"gscchat/internal/platform/store/qtrace"

	"github.com/jackc/pgx/v5"
)

// pgxPool is the slice of *pgxpool.Pool the adapter needs
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error)
	Ping(ctx context.Context) error
}

// pgAdapter wraps pg.PG as a Backend
// it emits query trace events when a tracer is configured on pg.PG
type pgAdapter struct {
	pool   pgxPool
	close  func()
	tracer qtrace.Tracer
	slowMs int
}

var _ Backend = (*pgAdapter)(nil)

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{pool: p.Pool, close: p.Close, tracer: p.Tracer, slowMs: p.SlowMs}
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.pool == nil {
		return errors.New("pg: nil adapter")
	}
	return a.pool.Ping(ctx)
}

func (a *pgAdapter) Close() error {
	if a != nil && a.close != nil {
		a.close()
	}
	return nil
}

// Query runs sql; the trace event fires when the rows are closed so it carries the row count
func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	span := qtrace.Start(a.tracer, "pg", a.slowMs, sql, args)
	rs, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		span.End(ctx, 0, err)
		return nil, err
	}
	return &rows{r: rs, ctx: ctx, span: span}, nil
}

// Load copies rows with the COPY protocol
func (a *pgAdapter) Load(ctx context.Context, table string, cols []string, data [][]any) (int64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	span := qtrace.Start(a.tracer, "pg", a.slowMs, "COPY "+table+" ("+strings.Join(cols, ", ")+")", nil)
	n, err := a.pool.CopyFrom(ctx, pgx.Identifier(strings.Split(table, ".")), cols, pgx.CopyFromRows(data))
	span.End(ctx, int(n), err)
	return n, err
}

// rows adapts pgx.Rows to our Rows
type rows struct {
	r    pgx.Rows
	ctx  context.Context
	span qtrace.Span
	n    int
	done bool
}

func (x *rows) Next() bool {
	if x.r.Next() {
		x.n++
		return true
	}
	return false
}

func (x *rows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x *rows) Err() error            { return x.r.Err() }

func (x *rows) Close() {
	x.r.Close()
	if !x.done {
		x.done = true
		x.span.End(x.ctx, x.n, x.r.Err())
	}
}

func (x *rows) Columns() []string {
	f := x.r.FieldDescriptions()
	out := make([]string, len(f))
	for i := range f {
		out[i] = f[i].Name
	}
	return out
}
