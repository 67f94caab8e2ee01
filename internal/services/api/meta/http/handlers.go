// Package http serves liveness, readiness and build metadata
package http

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"gscchat/internal/core/version"
	"gscchat/internal/modkit/httpkit"
)

const probeTimeout = 2 * time.Second

// Pinger is any backend handle that can be probed
type Pinger interface {
	Ping(context.Context) error
}

// SourcePort reports the metrics backend the insights service reads
type SourcePort interface {
	Source() (kind, table string)
}

// Deps are the handler dependencies. PG and CH stay nil when no DSN was configured
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	Source      SourcePort
	// Now defaults to time.Now
	Now func() time.Time
}

type handlers struct {
	Deps
}

// Register mounts the meta routes on r
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/source", h.source)
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// sourceCheck maps a source kind onto the name of its probe
var sourceCheck = map[string]string{"postgres": "pg", "clickhouse": "ch"}

// selected returns the configured source and the handle serving it, nil when unopened
func (h *handlers) selected() (kind, table, check string, handle any) {
	if h.Source == nil {
		return "", "", "", nil
	}
	kind, table = h.Source.Source()
	check = sourceCheck[kind]
	switch check {
	case "pg":
		handle = h.PG
	case "ch":
		handle = h.CH
	}
	return kind, table, check, handle
}

func probe(ctx context.Context, name string, handle any) ReadyCheck {
	if handle == nil {
		return ReadyCheck{Name: name, Status: probeSkipped}
	}
	p, ok := handle.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: probeUnknown}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: probeFail, Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: probeOK}
}

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.ServiceName, Started: stamp(h.StartedAt), Now: stamp(h.Now())}, nil
}

// @Summary Readiness of the pg and ch backends
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	handles := []struct {
		name   string
		handle any
	}{{"pg", h.PG}, {"ch", h.CH}}
	checks := make([]ReadyCheck, len(handles))

	var g errgroup.Group
	for i, b := range handles {
		g.Go(func() error {
			checks[i] = probe(ctx, b.name, b.handle)
			return nil
		})
	}
	_ = g.Wait()

	_, _, want, _ := h.selected()
	status := probeOK
	if want == "" {
		status = "degraded"
	}
	for _, c := range checks {
		if c.Name == want && c.Status != probeOK {
			status = probeFail
			break
		}
		if c.Status == probeFail {
			status = "degraded"
		}
	}
	return ReadyResponse{Status: status, Source: want, Checks: checks, Now: stamp(h.Now())}, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(*http.Request) (any, error) {
	return version.Info(h.ServiceName), nil
}

// @Summary Service uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(*http.Request) (any, error) {
	up := h.Now().Sub(h.StartedAt) / time.Second
	return ServiceResponse{Name: h.ServiceName, Started: stamp(h.StartedAt), Uptime: int64(up)}, nil
}

// @Summary Metrics backend in use
// @Tags Meta
// @Produce json
// @Success 200 {object} SourceResponse "ok"
// @Router /meta/source [get]
func (h *handlers) source(*http.Request) (any, error) {
	kind, table, _, handle := h.selected()
	return SourceResponse{Kind: kind, Table: table, Connected: handle != nil}, nil
}
