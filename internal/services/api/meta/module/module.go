// Package module wires meta endpoints into the API
package module

import (
	"time"

	"gscchat/internal/modkit"
	"gscchat/internal/modkit/httpkit"
	"gscchat/internal/modkit/swaggerkit"
	str "gscchat/internal/platform/strings"

	metahttp "gscchat/internal/services/api/meta/http"
)

// Ports declares the injected source reporter, usually the insights service
type Ports struct {
	Source metahttp.SourcePort
}

// Module implements modkit.Module
type Module struct {
	built modkit.Built
	ports Ports
	deps  metahttp.Deps
}

// New constructs the meta module; readiness follows the source named in Ports
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{built: b}
	if p, ok := b.Ports.(Ports); ok {
		m.ports = p
	}
	m.deps = metahttp.Deps{
		ServiceName: deps.Cfg.MayString("CORE_API_SERVICE_NAME", "gscchat-api"),
		StartedAt:   time.Now(),
		PG:          deps.PG,
		CH:          deps.CH,
		Source:      m.ports.Source,
	}
	return m
}

// MountRoutes mounts health, readiness and version endpoints
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })

	p := m.Prefix()
	for path, summary := range map[string]string{
		"/health":  "Liveness",
		"/ready":   "Readiness of the pg and ch backends",
		"/version": "Build and version info",
		"/service": "Service uptime",
		"/source":  "Metrics backend in use",
	} {
		swaggerkit.Document(swaggerkit.Operation{Method: "GET", Path: p + path, Summary: summary, Tag: "Meta"})
	}
}

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Prefix is the route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
