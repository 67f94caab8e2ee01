// Package middleware adapts chi and go-chi/cors middleware for the API stack and adds
// the access log and JSON panic recovery
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"

	pstrings "gscchat/internal/platform/strings"
)

// Func is an http middleware
type Func = func(http.Handler) http.Handler

// throttleWait is how long a request may sit in the backlog before a 429
const throttleWait = 5 * time.Second

// RequestID propagates X-Request-ID or mints one
func RequestID() Func { return chimw.RequestID }

// RealIP trusts X-Forwarded-For and X-Real-IP
func RealIP() Func { return chimw.RealIP }

func Timeout(d time.Duration) Func { return chimw.Timeout(d) }

func NoCache() Func { return chimw.NoCache }

// Compress gzips and deflates responses at the given flate level
func Compress(level int) Func { return chimw.Compress(level) }

func RedirectSlashes() Func { return chimw.RedirectSlashes }

func StripSlashes() Func { return chimw.StripSlashes }

// AllowContentType answers 415 for request bodies of any other type
func AllowContentType(types ...string) Func { return chimw.AllowContentType(types...) }

// Throttle admits limit requests at once and queues as many again
func Throttle(limit int) Func { return chimw.ThrottleBacklog(limit, limit, throttleWait) }

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) Func { return chimw.Heartbeat(path) }

// CORSOptions are the go-chi/cors knobs the API exposes. Empty lists take defaults
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS allows the GET and POST surface by default
func CORS(o CORSOptions) Func {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, []string{"X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
