// internal/rewrite/rewrite.go
//
// Canonical-URL rewriting for aliased requests.
//
/*
Context
--------
Once a request is bound to an alias, every canonical URL generated during
that request must come out on the domain the visitor actually typed, or
links, redirects, and asset URLs drift back to the canonical domain
mid-session.  Rewriting is deliberately textual—prefix (site) or host-suffix
(network) substitution—so the scheme, query string, and fragment pass
through byte-for-byte exactly as the caller built them.

Rules
-----
  • Site URLs: `{scheme}://{canonical_domain}{canonical_path}` →
    `{scheme}://{alias_domain}/`, only when the URL's site ID equals the
    bound one.  The alias domain is substituted exactly as stored, www
    prefix included.  URLs for unrelated sites are returned unmodified.
  • Network URLs: the network's root domain is replaced at a host-label
    boundary, so `foo.network.example` becomes `foo.alias-root` for any
    subdomain of the aliased network.
  • Unbound request (nil Binding): every function is a no-op.
*/
package rewrite

import (
	"context"
	"strings"

	"github.com/yanizio/aliasd/internal/binding"
	"github.com/yanizio/aliasd/internal/domain"
)

// SiteURL rewrites a canonical site URL onto the alias domain.  rawurl is
// returned unchanged when b is nil, the IDs differ, or the URL does not
// start with the canonical domain+path.
func SiteURL(b *binding.Binding, rawurl string, siteID uint64) string {
	if b == nil || b.Site == nil || b.Site.ID != siteID {
		return rawurl
	}

	i := strings.Index(rawurl, "://")
	if i < 0 {
		return rawurl
	}
	rest := rawurl[i+3:]

	prefix := b.Site.Domain + b.Site.Path
	if !strings.HasPrefix(rest, prefix) {
		return rawurl
	}

	return rawurl[:i+3] + b.Alias.Domain + "/" + rest[len(prefix):]
}

// NetworkURL rewrites a canonical network URL onto the alias root.  The
// substitution happens on the host portion only, at a label boundary, so
// subdomain URLs of the network map onto subdomains of the alias.
func NetworkURL(b *binding.Binding, rawurl string, networkID uint64) string {
	if b == nil || b.Network == nil || b.Network.ID != networkID {
		return rawurl
	}

	i := strings.Index(rawurl, "://")
	if i < 0 {
		return rawurl
	}
	rest := rawurl[i+3:]

	host := rest
	if slash := strings.IndexByte(rest, '/'); slash != -1 {
		host = rest[:slash]
	}

	root := b.Network.Domain
	aliasRoot := domain.StripWWW(b.Alias.Domain)

	var newHost string
	switch {
	case host == root:
		newHost = aliasRoot
	case strings.HasSuffix(host, "."+root):
		newHost = host[:len(host)-len(root)] + aliasRoot
	default:
		return rawurl
	}

	return rawurl[:i+3] + newHost + rest[len(host):]
}

//
// Context conveniences
//

// SiteURLFromContext applies SiteURL with the request's binding.
func SiteURLFromContext(ctx context.Context, rawurl string, siteID uint64) string {
	return SiteURL(binding.FromContext(ctx), rawurl, siteID)
}

// NetworkURLFromContext applies NetworkURL with the request's binding.
func NetworkURLFromContext(ctx context.Context, rawurl string, networkID uint64) string {
	return NetworkURL(binding.FromContext(ctx), rawurl, networkID)
}
