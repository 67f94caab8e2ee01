package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"gscchat/internal/platform/net/middleware"
)

// DefaultTimeout bounds one request including both metric fetches
const DefaultTimeout = 30 * time.Second

// StackOptions tunes the shared middleware stack; zero values keep defaults
type StackOptions struct {
	Timeout     time.Duration
	SlowRequest time.Duration
	// MaxInflight caps concurrent requests, zero disables the throttle
	MaxInflight int
	CORSOrigins []string
}

// CommonStack returns the baseline per module middleware slice
func CommonStack() []func(http.Handler) http.Handler { return Stack(StackOptions{}) }

// Stack builds the middleware slice mounted in front of every versioned route
func Stack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.SlowRequest <= 0 {
		o.SlowRequest = 2 * time.Second
	}
	stack := []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.SlowRequest}),

		// safety
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
	}
	if o.MaxInflight > 0 {
		stack = append(stack, middleware.Throttle(o.MaxInflight))
	}
	return append(stack, middleware.Timeout(o.Timeout))
}
