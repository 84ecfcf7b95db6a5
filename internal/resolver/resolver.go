// internal/resolver/resolver.go
//
// Host-to-alias matching engine.
//
/*
Context
--------
The resolver answers one question per request: does this Host header
correspond to a registered, active alias, and if so, which site or network
should serve it?  Matching strategies are an explicit ordered list; each is
tried in sequence and the first non-empty answer wins.  Lightweight
interfaces (DomainLookup, NetworkDirectory) keep this package independent of
the store and site packages' concrete types for testing.

Strategies
----------
  • Sites    — the request host and its www twin against the site-alias
    table.
  • Networks — progressive supersets of the host (each with a www variant)
    against the network-alias table, so any subdomain of an aliased root
    matches.  A network match also computes the mapped-equivalent internal
    domain: the subdomain remainder recombined with the network's real root,
    which downstream site-path resolution continues from.

Failure policy
--------------
Alias resolution augments canonical routing, it never replaces it.  Lookup
errors are logged and treated as a miss, so a storage hiccup degrades to
normal canonical-domain handling instead of failing the request.
*/
package resolver

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/aliasd/internal/alias"
	"github.com/yanizio/aliasd/internal/domain"
	"github.com/yanizio/aliasd/internal/metrics"
	"github.com/yanizio/aliasd/internal/site"
)

// DomainLookup is the slice of the alias store the resolver needs.
type DomainLookup interface {
	ByDomains(ctx context.Context, candidates []string) (*alias.Alias, error)
}

// NetworkDirectory resolves a network ID to its row.
type NetworkDirectory interface {
	Network(ctx context.Context, id uint64) (*site.Network, error)
}

// Match is a successful resolution.
type Match struct {
	Alias alias.Alias

	// Network is true when the network strategy matched; Alias.SiteID then
	// names a network, not a site.
	Network bool

	// MappedDomain is the internal-equivalent domain for network matches:
	// the requested host with the alias root swapped back to the network's
	// real domain.  Empty for site matches.
	MappedDomain string
}

// Strategy produces zero or one match for a normalized host.
type Strategy interface {
	Resolve(ctx context.Context, host string) (*Match, error)
}

// Resolver tries its strategies in order.
type Resolver struct {
	strategies []Strategy
}

// New builds a Resolver; strategy order is significance order.
func New(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve normalizes rawHost and returns the first match, or nil when the
// request should fall through to canonical routing.  Never returns an
// error: read-path failures are a miss by policy.
func (r *Resolver) Resolve(ctx context.Context, rawHost string) *Match {
	host := domain.NormalizeHost(rawHost)
	if host == "" {
		return nil
	}

	for _, st := range r.strategies {
		m, err := st.Resolve(ctx, host)
		if err != nil {
			zap.L().Warn("alias resolution degraded",
				zap.String("host", host), zap.Error(err))
			continue
		}
		if m != nil {
			metrics.AliasResolveHitTotal.Inc()
			return m
		}
	}

	metrics.AliasResolveMissTotal.Inc()
	return nil
}

//
// Site strategy
//

// Sites matches the host (and its www twin) against site aliases.
type Sites struct {
	Aliases DomainLookup
}

// Resolve implements Strategy.
func (s *Sites) Resolve(ctx context.Context, host string) (*Match, error) {
	a, err := s.Aliases.ByDomains(ctx, domain.Variants(host))
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsActive() {
		// Inactive aliases are invisible: no partial information leaks.
		return nil, nil
	}
	return &Match{Alias: *a}, nil
}

//
// Network strategy
//

// Networks matches progressive supersets of the host against network
// aliases and computes the mapped-equivalent internal domain.
type Networks struct {
	Aliases  DomainLookup
	Networks NetworkDirectory

	// Segments bounds the superset expansion; 2 matches the common
	// root-plus-subdomain layout.
	Segments int
}

// Resolve implements Strategy.
func (n *Networks) Resolve(ctx context.Context, host string) (*Match, error) {
	segments := n.Segments
	if segments < 2 {
		segments = 2
	}

	a, err := n.Aliases.ByDomains(ctx, domain.NetworkCandidates(host, segments))
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsActive() {
		return nil, nil
	}

	net, err := n.Networks.Network(ctx, a.SiteID)
	if err != nil {
		return nil, err
	}

	// Recombine the subdomain remainder with the network's real root:
	// foo.bar.com aliased via bar.com → network.example yields
	// foo.network.example.  Pure string work, matching on the www-stripped
	// forms of both sides.
	bare := domain.StripWWW(host)
	root := domain.StripWWW(a.Domain)
	remainder := ""
	if strings.HasSuffix(bare, root) {
		remainder = bare[:len(bare)-len(root)]
	}

	return &Match{
		Alias:        *a,
		Network:      true,
		MappedDomain: remainder + net.Domain,
	}, nil
}
