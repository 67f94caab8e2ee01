// Package qtrace logs metrics source queries for any store backend
package qtrace

import (
	"context"
	"strings"
	"time"

	"gscchat/internal/platform/logger"

	"github.com/rs/zerolog"
)

// Event describes one finished query against a backend
type Event struct {
	Backend   string
	SQL       string
	Args      any
	ElapsedUS int64
	Rows      int
	Err       error
	Slow      bool
}

// Tracer receives query events
type Tracer interface {
	OnQuery(ctx context.Context, ev Event)
}

// Log returns a tracer that prints every query when sql logging is on,
// independent of the process-wide root level
func Log(root logger.Logger, backend string) Tracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", backend).Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev Event) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	if ev.Err != nil {
		evt = z.log.Error()
	}

	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Int("rows", ev.Rows).
		Str("sql", Compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg(ev.Backend + " query")
}

// Span times one query; a nil tracer makes every call a no op
type Span struct {
	tracer  Tracer
	backend string
	sql     string
	args    []any
	slowUS  int64
	start   time.Time
}

// Start begins timing sql; slowMs < 0 disables slow flagging
func Start(t Tracer, backend string, slowMs int, sql string, args []any) Span {
	if t == nil {
		return Span{}
	}
	return Span{
		tracer:  t,
		backend: backend,
		sql:     sql,
		args:    args,
		slowUS:  int64(slowMs) * 1000,
		start:   time.Now(),
	}
}

// End emits the event
func (s Span) End(ctx context.Context, rows int, err error) {
	if s.tracer == nil {
		return
	}
	elapsed := time.Since(s.start).Microseconds()
	s.tracer.OnQuery(ctx, Event{
		Backend:   s.backend,
		SQL:       s.sql,
		Args:      s.args,
		ElapsedUS: elapsed,
		Rows:      rows,
		Err:       err,
		Slow:      s.slowUS >= 0 && elapsed >= s.slowUS,
	})
}

// Compact folds runs of whitespace so generated sql logs on one line
func Compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
