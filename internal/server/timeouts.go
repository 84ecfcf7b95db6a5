// internal/server/timeouts.go
//
// HTTP server construction for aliasd.
//
// aliasd fronts many domains at once and normally sits behind a
// TLS-terminating proxy, so the traffic profile is lots of small requests:
// alias resolution, 301/308 redirects, short admin JSON bodies.  The timeouts
// are sized for that profile — aggressive on the read side, where a slow
// client would otherwise pin a connection per aliased domain, and generous
// enough on idle keep-alives that a redirect and its follow-up request reuse
// the same connection.
//
//   - ReadHeaderTimeout – 5 s; the Host header is all resolution needs
//   - ReadTimeout       – 10 s cap on the whole request, admin bodies are small
//   - WriteTimeout      – 15 s; responses are JSON or redirects, never streams
//   - IdleTimeout       – 60 s keep-alive for redirect / follow-up pairs

package server

import (
	"net/http"
	"time"
)

// New constructs the process-wide *http.Server with the timeout profile
// above.  TLSConfig, when terminating locally, is set by the caller.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // plenty for any legitimate Host + cookies
	}
}
