// internal/server/timeouts_test.go
//
// Run: go test ./internal/server -v

package server

import (
	"net/http"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	h := http.NotFoundHandler()
	srv := New(":8080", h)

	if srv.Addr != ":8080" {
		t.Fatalf("addr = %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout != 5*time.Second || srv.ReadTimeout != 10*time.Second {
		t.Fatalf("read timeouts = %v / %v", srv.ReadHeaderTimeout, srv.ReadTimeout)
	}
	if srv.WriteTimeout != 15*time.Second || srv.IdleTimeout != 60*time.Second {
		t.Fatalf("write/idle timeouts = %v / %v", srv.WriteTimeout, srv.IdleTimeout)
	}
	if srv.MaxHeaderBytes != 64<<10 {
		t.Fatalf("max header bytes = %d", srv.MaxHeaderBytes)
	}
}
