// Package ch provides a clickhouse client over clickhouse-go with optional query tracing
package ch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"gscchat/internal/platform/store/qtrace"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL          string
	SlowMs       int
	MaxExecution time.Duration

	// Role and Tag end up in system.query_log client info
	Role string
	Tag  string
}

// CH is a clickhouse client with optional tracer
type CH struct {
	Conn   driver.Conn
	Tracer qtrace.Tracer
	SlowMs int
}

var openConn = clickhouse.Open

// Open parses the DSN and opens a lazily connected client
func Open(_ context.Context, cfg Config, tracer qtrace.Tracer) (*CH, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("ch: empty url")
	}
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch: parse dsn: %w", err)
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role, cfg.Tag)
	if cfg.MaxExecution > 0 {
		if opts.Settings == nil {
			opts.Settings = clickhouse.Settings{}
		}
		opts.Settings["max_execution_time"] = int(cfg.MaxExecution.Seconds())
	}

	conn, err := openConn(opts)
	if err != nil {
		return nil, fmt.Errorf("ch: open: %w", err)
	}
	return &CH{Conn: conn, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Query runs sql; the trace event fires when the rows are closed
func (c *CH) Query(ctx context.Context, sql string, args ...any) (*Rows, error) {
	span := qtrace.Start(c.Tracer, "clickhouse", c.SlowMs, sql, args)
	r, err := c.Conn.Query(ctx, sql, args...)
	if err != nil {
		span.End(ctx, 0, err)
		return nil, err
	}
	return &Rows{r: r, ctx: ctx, span: span}, nil
}

// Insert appends rows through a native batch
func (c *CH) Insert(ctx context.Context, table string, cols []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(cols, ", "))
	span := qtrace.Start(c.Tracer, "clickhouse", c.SlowMs, sql, nil)

	b, err := c.Conn.PrepareBatch(ctx, sql)
	if err != nil {
		span.End(ctx, 0, err)
		return 0, err
	}
	for i, row := range rows {
		if err := b.Append(row...); err != nil {
			_ = b.Abort()
			span.End(ctx, i, err)
			return 0, fmt.Errorf("ch: append row %d: %w", i, err)
		}
	}
	err = b.Send()
	span.End(ctx, len(rows), err)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// Ping checks the server answers
func (c *CH) Ping(ctx context.Context) error {
	if c == nil || c.Conn == nil {
		return errors.New("ch: nil client")
	}
	return c.Conn.Ping(ctx)
}

// Close closes the connection pool
func (c *CH) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}

// Rows wraps driver rows, counting them for the tracer
type Rows struct {
	r    driver.Rows
	ctx  context.Context
	span qtrace.Span
	n    int
	done bool
}

func (r *Rows) Next() bool {
	if r.r.Next() {
		r.n++
		return true
	}
	return false
}

func (r *Rows) Scan(dest ...any) error { return r.r.Scan(dest...) }
func (r *Rows) Err() error             { return r.r.Err() }
func (r *Rows) Columns() []string      { return r.r.Columns() }

// Close releases the result and emits the trace event once
func (r *Rows) Close() error {
	err := r.r.Close()
	if !r.done {
		r.done = true
		if err == nil {
			err = r.r.Err()
		}
		r.span.End(r.ctx, r.n, err)
	}
	return err
}

// ScanMap scans the current row into column name -> value
// clickhouse needs typed destinations so each is built from the column scan type
func (r *Rows) ScanMap() (map[string]any, error) {
	types := r.r.ColumnTypes()
	ptrs := make([]any, len(types))
	for i, ct := range types {
		ptrs[i] = reflect.New(ct.ScanType()).Interface()
	}
	if err := r.r.Scan(ptrs...); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(types))
	for i, ct := range types {
		out[ct.Name()] = deref(reflect.ValueOf(ptrs[i]).Elem())
	}
	return out, nil
}

// deref unwraps Nullable pointers
func deref(v reflect.Value) any {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}
