package middleware_test

import (
	"compress/flate"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gscchat/internal/platform/net/middleware"
)

func TestCompress_GzipWhenAccepted(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"markdown":"`+strings.Repeat("## Summary ", 400)+`"}`)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/ask", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	middleware.Compress(flate.BestSpeed)(h).ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip, headers=%v", rr.Header())
	}
}

func TestCORS_Preflight(t *testing.T) {
	cors := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://dash.example.com"}})
	h := cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/insights/ask", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "https://dash.example.com" {
		t.Fatalf("allow origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Fatalf("allow methods = %q", rr.Header().Get("Access-Control-Allow-Methods"))
	}

	// DELETE is not part of the surface
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/insights/ask", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("DELETE preflight should not be allowed")
	}
}

func TestAllowContentType(t *testing.T) {
	h := middleware.AllowContentType("application/json")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("question=why"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("form body status = %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("json body status = %d", rr.Code)
	}

	// bodiless GETs pass through
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/intents", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("GET status = %d", rr.Code)
	}
}

func TestThrottle_RejectsBeyondBacklog(t *testing.T) {
	release := make(chan struct{})
	var entered sync.WaitGroup
	entered.Add(1)
	h := middleware.Throttle(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			entered.Done()
			<-release
		}
		w.WriteHeader(http.StatusOK)
	}))

	done := make(chan int, 1)
	go func() {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/slow", nil))
		done <- rr.Code
	}()
	entered.Wait()

	// one waiter fits the backlog; fill it, then the next caller is refused
	waiting := make(chan int, 1)
	go func() {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fast", nil))
		waiting <- rr.Code
	}()
	time.Sleep(50 * time.Millisecond)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fast", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("overflow status = %d", rr.Code)
	}

	close(release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("slow status = %d", code)
	}
	if code := <-waiting; code != http.StatusOK {
		t.Fatalf("waiter status = %d", code)
	}
}

func TestHeartbeatAndSlashes(t *testing.T) {
	var seen string
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = r.URL.Path })
	h := middleware.Heartbeat("/health")(middleware.StripSlashes()(final))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || seen != "" {
		t.Fatalf("heartbeat should short circuit, code=%d seen=%q", rr.Code, seen)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/meta/source/", nil))
	if seen != "/api/v1/meta/source" {
		t.Fatalf("strip slashes saw %q", seen)
	}
}
