package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gscchat/internal/platform/config"
	phttp "gscchat/internal/platform/net/http"
)

func TestNewServer_AddrDefaultAndOverride(t *testing.T) {
	t.Setenv("CORE_API_PORT", "")
	if got := phttp.NewServer(config.New().Prefix("CORE_")).Addr(); got != ":4000" {
		t.Fatalf("default addr = %q", got)
	}

	t.Setenv("CORE_API_PORT", ":8089")
	if got := phttp.NewServer(config.New().Prefix("CORE_")).Addr(); got != ":8089" {
		t.Fatalf("addr = %q", got)
	}
}

func TestServer_RouterServesMountedRoutes(t *testing.T) {
	srv := phttp.NewServer(config.New())
	r := srv.Router()
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("ping = %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_RunStopsCleanlyOnShutdown(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:0")
	srv := phttp.NewServer(config.New())

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil after shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return")
	}
}

func TestServer_RunReportsListenError(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:notaport")
	if err := phttp.NewServer(config.New()).Run(context.Background()); err == nil {
		t.Fatalf("expected listen error")
	}
}
