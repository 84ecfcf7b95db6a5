// internal/binding/binding.go
//
// Request-scoped alias binding.
//
// Context
// -------
// When a request arrives on an alias domain, the middleware resolves it and
// stores a Binding in the request context.  Every later consumer (the URL
// rewriter, the default handler, templates) reads that request-scoped value;
// there is no process-global "current alias."  A request is either unbound
// (no alias; everything behaves canonically) or bound, and the transition
// happens at most once, before any downstream handler runs.
package binding

import (
	"context"

	"github.com/yanizio/aliasd/internal/alias"
	"github.com/yanizio/aliasd/internal/site"
)

// Binding captures the winning alias and its owner for one request.
// Exactly one of Site and Network is non-nil.
type Binding struct {
	Alias alias.Alias

	Site    *site.Record  // owner, site-alias match
	Network *site.Network // owner, network-alias match

	// MappedDomain is the internal-equivalent domain for network matches
	// (subdomain remainder + network real root); empty otherwise.
	MappedDomain string
}

type ctxKey struct{} // unexported, collision-proof

// WithBinding returns a child context carrying b.
func WithBinding(ctx context.Context, b *Binding) context.Context {
	return context.WithValue(ctx, ctxKey{}, b)
}

// FromContext returns the Binding stored by the middleware, or nil when the
// request is unbound.
func FromContext(ctx context.Context) *Binding {
	v, _ := ctx.Value(ctxKey{}).(*Binding)
	return v
}
