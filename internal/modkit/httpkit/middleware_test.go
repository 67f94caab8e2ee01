package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func applyStack(h http.Handler, stack []func(http.Handler) http.Handler) http.Handler {
	for i := len(stack) - 1; i >= 0; i-- { // outermost first
		h = stack[i](h)
	}
	return h
}

func TestCommonStack_HealthAndPassThrough(t *testing.T) {
	hit := 0
	root := applyStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit++
		w.WriteHeader(http.StatusNoContent)
	}), CommonStack())

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || hit != 0 {
		t.Fatalf("/health = %d, handler hits %d", rr.Code, hit)
	}

	rr = httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/insights/intents", nil))
	if rr.Code != http.StatusNoContent || hit != 1 {
		t.Fatalf("pass through = %d, hits %d", rr.Code, hit)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("expected no-cache headers, got %v", rr.Header())
	}
}

func TestStack_TimeoutAndThrottle(t *testing.T) {
	if got, want := len(Stack(StackOptions{MaxInflight: 4})), len(CommonStack())+1; got != want {
		t.Fatalf("throttle not appended: %d vs %d", got, want)
	}

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			// leave the status to the timeout middleware
		case <-time.After(time.Second):
			w.WriteHeader(http.StatusNoContent)
		}
	})
	root := applyStack(slow, Stack(StackOptions{Timeout: 20 * time.Millisecond}))

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/insights/intents", nil))
	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 after timeout, got %d", rr.Code)
	}
}
