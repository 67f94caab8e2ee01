package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"gscchat/internal/platform/logger"
)

// AccessLogOptions configures the access log
type AccessLogOptions struct {
	// Slow logs requests at or over this duration at warn; zero disables it
	Slow time.Duration
	// Base replaces the process logger
	Base *logger.Logger
}

// AccessLog puts the chi request id on the logging context, so every logger.C(ctx)
// downstream carries it, and writes one line per finished request
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimw.GetReqID(r.Context())
			r = r.WithContext(logger.WithRequest(r.Context(), reqID, ""))
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			next.ServeHTTP(ww, r)
			took := time.Since(start)

			log := logger.C(r.Context())
			if opt.Base != nil {
				l := opt.Base.With().Str("request_id", reqID).Logger()
				log = &l
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := zerolog.InfoLevel
			if status >= http.StatusInternalServerError {
				level = zerolog.ErrorLevel
			} else if opt.Slow > 0 && took >= opt.Slow {
				level = zerolog.WarnLevel
			}
			log.WithLevel(level).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", took).
				Msg("request done")
		})
	}
}
