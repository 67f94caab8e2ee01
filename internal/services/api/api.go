// Package api provides the HTTP API for the application
package api

import (
	"gscchat/internal/platform/config"
	"gscchat/internal/platform/logger"
	phttp "gscchat/internal/platform/net/http"
	"gscchat/internal/platform/store"

	"gscchat/internal/modkit"
	"gscchat/internal/modkit/httpkit"
	"gscchat/internal/modkit/module"
	"gscchat/internal/modkit/swaggerkit"

	insightsdom "gscchat/internal/services/api/insights/domain"
	insightsmod "gscchat/internal/services/api/insights/module"
	metamod "gscchat/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	Stack          httpkit.StackOptions
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	// Construct insights first and hand its source port to meta for readiness
	insights := insightsmod.New(deps)
	src := module.MustPortsOf[insightsdom.SourcePort](insights)

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Source: src})),
		insights,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.Stack(opt.Stack), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
