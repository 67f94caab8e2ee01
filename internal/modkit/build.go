package modkit

import (
	"net/http"

	"gscchat/internal/modkit/httpkit"
)

// Built is the resolved option set a module keeps
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(httpkit.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount routes own under the module prefix behind its middleware, then any extra Register routes
func (b Built) Mount(r httpkit.Router, own func(httpkit.Router)) {
	r.Route(b.Prefix, func(sub httpkit.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		own(sub)
		if b.Register != nil {
			b.Register(sub)
		}
	})
}
