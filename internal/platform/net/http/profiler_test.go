package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gscchat/internal/platform/config"
	phttp "gscchat/internal/platform/net/http"
)

func TestMountProfiler(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		r := phttp.NewServer(config.New()).Router()
		phttp.MountProfiler(r, "/debug", enabled)

		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
		want := http.StatusNotFound
		if enabled {
			want = http.StatusOK
		}
		if rec.Code != want {
			t.Fatalf("enabled=%v: status = %d, want %d", enabled, rec.Code, want)
		}
	}
}

func TestMountProfiler_NormalizesPrefix(t *testing.T) {
	for prefix, path := range map[string]string{"": "/debug/pprof/cmdline", "ops/": "/ops/pprof/cmdline"} {
		r := phttp.NewServer(config.New()).Router()
		phttp.MountProfiler(r, prefix, true)

		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("prefix %q: GET %s = %d", prefix, path, rec.Code)
		}
	}
}
