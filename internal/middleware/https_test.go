// internal/middleware/https_test.go
//
// Unit-tests for the HTTPS-enforcement wrapper.
//
// Run: go test ./internal/middleware -v

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestForceHTTPS(t *testing.T) {
	known := KnownHostsFunc(func(host string) bool {
		return host == "shop.example.org"
	})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := ForceHTTPS(known, ok)

	t.Run("known host redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://shop.example.org/p?x=1", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusPermanentRedirect {
			t.Fatalf("status = %d, want 308", rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "https://shop.example.org/p?x=1" {
			t.Fatalf("Location = %q", loc)
		}
	})

	t.Run("unknown host passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://stranger.example.net/", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
	})

	t.Run("localhost passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
	})
}
