// Package store opens the postgres and clickhouse metrics backends behind one small interface
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gscchat/internal/platform/logger"
)

// Rows is the iteration surface both drivers are adapted to
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// Querier runs read queries
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Loader bulk appends rows into a table and reports how many were written
type Loader interface {
	Load(ctx context.Context, table string, cols []string, rows [][]any) (int64, error)
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Backend is one opened metrics database
type Backend interface {
	Querier
	Loader
	Pinger
	Close() error
}

// Kind names a backend
type Kind string

const (
	KindClickhouse Kind = "clickhouse"
	KindPostgres   Kind = "postgres"
)

var kindAliases = map[string]Kind{
	"":           KindClickhouse,
	"ch":         KindClickhouse,
	"clickhouse": KindClickhouse,
	"pg":         KindPostgres,
	"postgres":   KindPostgres,
	"postgresql": KindPostgres,
}

// ParseKind accepts the backend names and their short aliases; empty means clickhouse
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("store: unknown backend %q", s)
}

// Store holds whichever backends were enabled. A nil field means that backend is off
type Store struct {
	Log logger.Logger
	PG  Backend
	CH  Backend
}

// Open dials every backend enabled in cfg that an option has not already supplied.
// On failure anything opened so far is closed
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Str("component", "store").Logger()

	dials := []struct {
		on   bool
		slot *Backend
		open func(context.Context, Config, *Store) (Backend, error)
	}{
		{cfg.PG.Enabled, &s.PG, openPG},
		{cfg.CH.Enabled, &s.CH, openCH},
	}
	for _, d := range dials {
		if !d.on || *d.slot != nil {
			continue
		}
		b, err := d.open(ctx, cfg, s)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		*d.slot = b
	}
	return s, nil
}

// Backend returns the backend for k, nil when it is not enabled
func (s *Store) Backend(k Kind) Backend {
	if s == nil {
		return nil
	}
	switch k {
	case KindPostgres:
		return s.PG
	case KindClickhouse:
		return s.CH
	}
	return nil
}

// each calls fn for every open backend and joins the failures, prefixed by backend
func (s *Store) each(fn func(Backend) error) error {
	var errs []error
	for _, b := range []struct {
		name string
		be   Backend
	}{{"pg", s.PG}, {"ch", s.CH}} {
		if b.be == nil {
			continue
		}
		if err := fn(b.be); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Guard pings every open backend
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	return s.each(func(b Backend) error { return b.Ping(ctx) })
}

// Close closes every open backend
func (s *Store) Close(context.Context) error {
	return s.each(func(b Backend) error { return b.Close() })
}
