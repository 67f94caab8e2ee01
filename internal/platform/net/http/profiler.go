package http

import (
	stdhttp "net/http"
	"strings"

	mw "github.com/go-chi/chi/v5/middleware"
)

// DefaultProfilerPrefix is used when MountProfiler gets an empty prefix
const DefaultProfilerPrefix = "/debug"

// MountProfiler serves pprof under prefix when CORE_API_PROFILER is on
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = DefaultProfilerPrefix
	}
	pprof := stdhttp.StripPrefix(prefix, mw.Profiler())
	serve := func(w stdhttp.ResponseWriter, req *stdhttp.Request) { pprof.ServeHTTP(w, req) }
	for _, pattern := range []string{prefix, prefix + "/*"} {
		r.Get(pattern, serve)
	}
}
