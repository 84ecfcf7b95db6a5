// internal/binding/middleware.go
//
// Alias-binding middleware.
//
/*
Context
--------
This handler sits early in the chain—after security headers but before
anything that reads "which site is this?"  For every request it:

  1. Resolves the Host header through the strategy list.
  2. On a miss, falls through untouched: canonical routing proceeds.
  3. On a redirect-kind alias, issues a 301 to the owner's canonical home
     URL and terminates the request.
  4. Otherwise loads the owner record, stores a *Binding in the request
     context, and forwards.

Owner-lookup failures fall through rather than failing the request; the
alias layer only ever augments canonical routing.

Notes
-----
  • HostResolver and Owners are minimal contracts so tests can inject
    fakes without the full resolver or site cache.
  • Oxford commas, two spaces after periods.
*/
package binding

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/aliasd/internal/metrics"
	"github.com/yanizio/aliasd/internal/resolver"
	"github.com/yanizio/aliasd/internal/site"
)

// HostResolver is the minimal contract *resolver.Resolver fulfils.
type HostResolver interface {
	Resolve(ctx context.Context, rawHost string) *resolver.Match
}

// Owners is the minimal contract *site.Cache fulfils.
type Owners interface {
	Get(ctx context.Context, id uint64) (*site.Record, error)
	Network(ctx context.Context, id uint64) (*site.Network, error)
}

// Middleware returns a chi-compatible wrapper that binds matched requests.
func Middleware(res HostResolver, owners Owners) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			m := res.Resolve(ctx, r.Host)
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			b := &Binding{Alias: m.Alias, MappedDomain: m.MappedDomain}

			if m.Network {
				net, err := owners.Network(ctx, m.Alias.SiteID)
				if err != nil {
					zap.L().Warn("alias owner network lookup failed",
						zap.Uint64("network_id", m.Alias.SiteID), zap.Error(err))
					next.ServeHTTP(w, r)
					return
				}
				b.Network = net

				if m.Alias.IsRedirect() {
					metrics.AliasRedirectTotal.Inc()
					http.Redirect(w, r, "https://"+net.Domain+net.Path,
						http.StatusMovedPermanently)
					return
				}
			} else {
				rec, err := owners.Get(ctx, m.Alias.SiteID)
				if err != nil {
					zap.L().Warn("alias owner site lookup failed",
						zap.Uint64("site_id", m.Alias.SiteID), zap.Error(err))
					next.ServeHTTP(w, r)
					return
				}
				b.Site = rec

				if m.Alias.IsRedirect() {
					metrics.AliasRedirectTotal.Inc()
					http.Redirect(w, r, rec.HomeURL(), http.StatusMovedPermanently)
					return
				}
			}

			zap.L().Debug("alias bound",
				zap.String("host", r.Host),
				zap.String("domain", b.Alias.Domain),
				zap.Uint64("owner_id", b.Alias.SiteID))

			next.ServeHTTP(w, r.WithContext(WithBinding(ctx, b)))
		})
	}
}
