package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"gscchat/internal/modkit/httpkit"
	phttp "gscchat/internal/platform/net/http"
)

func header(k, v string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(k, v)
			next.ServeHTTP(w, r)
		})
	}
}

func TestBuild_LaterOptionsWin(t *testing.T) {
	type ports struct{ Table string }
	b := Build(
		WithName("insights"), WithPrefix("/insights"),
		WithPrefix("/v2/insights"),
		WithMiddlewares(header("X-A", "1")),
		WithMiddlewares(header("X-B", "1")),
		WithPorts(ports{Table: "gsc.daily"}),
	)
	if b.Name != "insights" || b.Prefix != "/v2/insights" || len(b.Mw) != 2 {
		t.Fatalf("built = %+v", b)
	}
	if p, ok := b.Ports.(ports); !ok || p.Table != "gsc.daily" {
		t.Fatalf("ports = %#v", b.Ports)
	}
	if b.Register != nil {
		t.Fatalf("register should default to nil")
	}
}

func TestBuilt_Mount(t *testing.T) {
	b := Build(
		WithPrefix("/meta"),
		WithMiddlewares(header("X-Module", "meta")),
		WithRegister(func(r httpkit.Router) {
			httpkit.Get(r, "/extra", func(*http.Request) (any, error) { return "extra", nil })
		}),
	)
	r := phttp.AdaptChi(chi.NewRouter())
	b.Mount(r, func(r httpkit.Router) {
		httpkit.Get(r, "/version", func(*http.Request) (any, error) { return "dev", nil })
	})

	for _, path := range []string{"/meta/version", "/meta/extra"} {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Header().Get("X-Module") != "meta" {
			t.Fatalf("%s = %d %v", path, rec.Code, rec.Header())
		}
	}
}
