package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"gscchat/internal/platform/config"
	"gscchat/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns the root chi mux and the listening http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer reads API_PORT and API_READ_HEADER_TIMEOUT from cfg
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("API_PORT", ":4000")
	m := chi.NewRouter()
	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: cfg.MayDuration("API_READ_HEADER_TIMEOUT", 10*time.Second),
		},
	}
}

// Router returns the Router facade over the root mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the configured listen address
func (s *Server) Addr() string { return s.addr }

// Run listens until Shutdown; a clean shutdown returns nil
func (s *Server) Run(_ context.Context) error {
	logger.Named("http").Info().Str("addr", s.addr).Msg("http listening")
	if err := s.srv.ListenAndServe(); !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
