package store

import (
	"context"
	"fmt"
	"time"

	"gscchat/internal/platform/store/ch"
	"gscchat/internal/platform/store/pg"
	"gscchat/internal/platform/store/qtrace"
)

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffCeiling        = 2 * time.Second
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (Backend, error) {
	var tracer qtrace.Tracer
	if cfg.PG.LogSQL {
		tracer = qtrace.Log(s.Log, "pg")
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:              cfg.PG.URL,
		MaxConns:         cfg.PG.MaxConns,
		SlowMs:           cfg.PG.SlowQueryMs,
		AppName:          cfg.AppName,
		StatementTimeout: cfg.PG.StatementTimeout,
		Tracer:           tracer,
	})
	if err != nil {
		return nil, err
	}

	// ping the pool directly so boot retries stay out of the sql trace
	if err := pingRetry(ctx, "postgres", cfg.PG.ConnectRetries, cfg.PG.PingTimeout, p.Pool.Ping); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// openCH opens clickhouse and waits for it to answer
func openCH(ctx context.Context, cfg Config, s *Store) (Backend, error) {
	var tracer qtrace.Tracer
	if cfg.CH.LogSQL {
		tracer = qtrace.Log(s.Log, "clickhouse")
	}

	c, err := ch.Open(ctx, ch.Config{
		URL:          cfg.CH.URL,
		SlowMs:       cfg.CH.SlowQueryMs,
		MaxExecution: cfg.CH.MaxExecution,
		Role:         cfg.CH.Role,
		Tag:          cfg.AppName,
	}, tracer)
	if err != nil {
		return nil, err
	}

	if err := pingRetry(ctx, "clickhouse", cfg.CH.ConnectRetries, cfg.CH.PingTimeout, c.Ping); err != nil {
		_ = c.Close()
		return nil, err
	}
	return newCHAdapter(c), nil
}

// pingRetry pings with exponential backoff until success, attempts run out, or ctx ends
func pingRetry(ctx context.Context, name string, attempts int, timeout time.Duration, ping func(context.Context) error) error {
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = ping(toCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff = min(backoff*2, backoffCeiling)
	}
	return fmt.Errorf("%s ping failed after %d attempts: %w", name, attempts, lastErr)
}
