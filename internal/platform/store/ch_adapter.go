package store

import (
	"context"
	"errors"

	"gscchat/internal/platform/store/ch"
)

// newCHAdapter wraps an opened *ch.CH as a Backend
func newCHAdapter(c *ch.CH) Backend {
	return &clickhouseAdapter{inner: c}
}

// clickhouseAdapter adapts *ch.CH to the Backend interface
type clickhouseAdapter struct {
	inner *ch.CH
}

var _ Backend = (*clickhouseAdapter)(nil)

func (a *clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.inner.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &chRows{r: r}, nil
}

func (a *clickhouseAdapter) Load(ctx context.Context, table string, cols []string, rows [][]any) (int64, error) {
	return a.inner.Insert(ctx, table, cols, rows)
}

// Ping verifies connectivity with ClickHouse
func (a *clickhouseAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	return a.inner.Ping(ctx)
}

func (a *clickhouseAdapter) Close() error { return a.inner.Close() }

// chRows wraps *ch.Rows as Rows and keeps its typed map scan reachable
type chRows struct {
	r *ch.Rows
}

func (r *chRows) Next() bool                       { return r.r.Next() }
func (r *chRows) Scan(dest ...any) error           { return r.r.Scan(dest...) }
func (r *chRows) Err() error                       { return r.r.Err() }
func (r *chRows) Close()                           { _ = r.r.Close() }
func (r *chRows) Columns() []string                { return r.r.Columns() }
func (r *chRows) ScanMap() (map[string]any, error) { return r.r.ScanMap() }
