package module

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"gscchat/internal/modkit"
	"gscchat/internal/modkit/swaggerkit"
	"gscchat/internal/platform/config"
	phttp "gscchat/internal/platform/net/http"
	"gscchat/internal/platform/store"
	"gscchat/internal/platform/testkit"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("GSC_SOURCE_KIND", "postgres")
	t.Setenv("GSC_SOURCE_TABLE", "gsc.daily")
	t.Setenv("GSC_THRESHOLDS_FILE", "/etc/gscchat/thresholds.yaml")

	got := FromConfig(config.New())
	want := Settings{Source: store.KindPostgres, Table: "gsc.daily", ThresholdsFile: "/etc/gscchat/thresholds.yaml"}
	if got != want {
		t.Fatalf("FromConfig = %+v, want %+v", got, want)
	}
}

func TestModule_MountsAndReportsNotConnected(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()})
	if m.Name() != "insights" {
		t.Fatalf("name = %q", m.Name())
	}
	if _, ok := m.Ports().(Ports); !ok {
		t.Fatalf("ports = %T", m.Ports())
	}

	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/insights/ask",
		strings.NewReader(`{"question":"why?","site_url":"sc-domain:example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	testkit.MustContain(t, rec.Body.String(), "metrics source not connected")

	req = httptest.NewRequest(http.MethodPost, "/insights/ranges", strings.NewReader("preset=last7"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("form body status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/insights/intents", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("intents status = %d", rec.Code)
	}
}

func TestModule_PanicsOnBadSettings(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(bad, []byte("fetch_rows: [nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GSC_THRESHOLDS_FILE", bad)
	testkit.MustPanic(t, func() { New(modkit.Deps{Cfg: config.New()}) })

	t.Setenv("GSC_THRESHOLDS_FILE", "")
	t.Setenv("GSC_SOURCE_TABLE", "x; DROP TABLE y")
	testkit.MustPanic(t, func() { New(modkit.Deps{Cfg: config.New()}) })
}

func TestModule_DocumentsRoutes(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()})
	m.MountRoutes(phttp.AdaptChi(chi.NewRouter()))

	paths := swaggerkit.Spec("t", "dev", "/api/v1")["paths"].(map[string]any)
	for _, p := range []string{"/insights/ask", "/insights/ranges", "/insights/validate", "/insights/intents"} {
		if paths[p] == nil {
			t.Fatalf("%s not documented", p)
		}
	}
}
