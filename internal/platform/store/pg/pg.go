// Package pg opens the postgres metrics pool
package pg

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gscchat/internal/platform/store/qtrace"
)

// Config configures the pool and the session every connection starts with
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
	// AppName is reported as application_name
	AppName string
	// StatementTimeout bounds each query server side; zero keeps the server default
	StatementTimeout time.Duration
	Tracer           qtrace.Tracer
}

// PG is an opened pool plus the tracing settings the store adapter reads
type PG struct {
	Pool   *pgxpool.Pool
	Tracer qtrace.Tracer
	SlowMs int
}

// Option adjusts the parsed pool config before the pool is created
type Option func(*pgxpool.Config)

// MinConns keeps n connections warm
func MinConns(n int32) Option { return func(c *pgxpool.Config) { c.MinConns = n } }

var newPool = pgxpool.NewWithConfig

func poolConfig(cfg Config, opts []Option) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	session := pc.ConnConfig.RuntimeParams
	if cfg.AppName != "" {
		session["application_name"] = cfg.AppName
	}
	if ms := cfg.StatementTimeout.Milliseconds(); ms > 0 {
		session["statement_timeout"] = strconv.FormatInt(ms, 10)
	}
	for _, o := range opts {
		o(pc)
	}
	return pc, nil
}

// Open parses cfg.URL and creates the pool. It does not wait for the server
func Open(ctx context.Context, cfg Config, opts ...Option) (*PG, error) {
	pc, err := poolConfig(cfg, opts)
	if err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: cfg.Tracer, SlowMs: cfg.SlowMs}, nil
}

// Close closes the pool; safe on nil
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
