// Package module wires the insights API into HTTP via modkit
package module

import (
	"gscchat/internal/core/intents"
	"gscchat/internal/modkit"
	"gscchat/internal/modkit/httpkit"
	"gscchat/internal/modkit/repokit"
	"gscchat/internal/modkit/swaggerkit"
	"gscchat/internal/platform/net/middleware"
	"gscchat/internal/platform/strings"
	"gscchat/internal/services/api/insights/domain"

	insightshttp "gscchat/internal/services/api/insights/http"
	"gscchat/internal/services/api/insights/repo"
	"gscchat/internal/services/api/insights/service"
)

// Ports exposes the service and the source reporter for cross-module lookups
type Ports struct {
	Service domain.ServicePort
	Source  domain.SourcePort
}

// Module implements the insights module
type Module struct {
	built modkit.Built
	ports Ports
	svc   *service.Service
}

// New constructs the insights module. It panics when the thresholds file is malformed
// or the table name is not a plain identifier
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("insights"),
		modkit.WithPrefix("/insights"),
		modkit.WithMiddlewares(middleware.AllowContentType("application/json")),
	}, opts...)...)
	set := FromConfig(deps.Cfg)

	th, err := intents.LoadThresholds(set.ThresholdsFile)
	if err != nil {
		panic("insights: " + err.Error())
	}
	if !repo.ValidTable(set.Table) {
		panic("insights: invalid GSC_SOURCE_TABLE " + set.Table)
	}
	dialect, _ := repo.DialectFor(string(set.Source))

	var db repokit.Queryer
	if be := repokit.Pick(set.Source, deps.PG, deps.CH); be != nil {
		db = be
	}
	svc := service.New(db, repo.New(dialect, set.Table),
		service.WithThresholds(th),
		service.WithSource(string(set.Source), set.Table),
	)
	deps.Log.Info().
		Str("source", string(set.Source)).
		Str("table", set.Table).
		Bool("connected", db != nil).
		Msg("insights module ready")

	return &Module{built: b, svc: svc, ports: Ports{Service: svc, Source: svc}}
}

// MountRoutes mounts the insights endpoints under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { insightshttp.Register(rr, m.svc) })

	p := m.Prefix()
	swaggerkit.Document(
		swaggerkit.Operation{Method: "POST", Path: p + "/ask", Tag: "Insights", Body: true,
			Summary: "Answer a question by comparing the current window with the previous one"},
		swaggerkit.Operation{Method: "POST", Path: p + "/ranges", Tag: "Insights", Body: true,
			Summary: "Resolve the current and previous windows"},
		swaggerkit.Operation{Method: "POST", Path: p + "/validate", Tag: "Insights", Body: true,
			Summary: "Check a rendered answer against the section contract"},
		swaggerkit.Operation{Method: "GET", Path: p + "/intents", Tag: "Insights",
			Summary: "List supported intents and row limits"},
	)
}

// Name is the module name
func (m *Module) Name() string { return strings.MustString(m.built.Name, "module name") }

// Prefix is the module route prefix
func (m *Module) Prefix() string { return strings.MustPrefix(m.built.Prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
