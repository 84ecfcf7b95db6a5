// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// KnownHosts reports whether a (port-less) host is served by this
// installation, either as a canonical site domain or as an alias.
type KnownHosts interface {
	Known(host string) bool
}

// KnownHostsFunc adapts a plain function to KnownHosts.
type KnownHostsFunc func(host string) bool

func (f KnownHostsFunc) Known(host string) bool { return f(host) }

// ForceHTTPS wraps h.  If the request is plain HTTP, the host is not
// “localhost”, and hosts confirms the domain is served here, the wrapper
// issues a 308 Permanent Redirect to the HTTPS version of the same URL.
// Otherwise it calls the next handler unchanged.
func ForceHTTPS(hosts KnownHosts, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Already HTTPS or dev host → continue.
		if r.TLS != nil || stripPort(r.Host) == "localhost" {
			h.ServeHTTP(w, r)
			return
		}

		// Only redirect for domains we actually serve.
		if hosts.Known(stripPort(r.Host)) {
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
			return
		}

		// Unknown host → keep normal flow (likely 404 later).
		h.ServeHTTP(w, r)
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
