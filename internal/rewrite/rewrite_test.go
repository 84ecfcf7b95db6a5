// internal/rewrite/rewrite_test.go
//
// Unit-tests for canonical-URL rewriting.
//
// Run: go test ./internal/rewrite -v

package rewrite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/aliasd/internal/alias"
	"github.com/yanizio/aliasd/internal/binding"
	"github.com/yanizio/aliasd/internal/resolver"
	"github.com/yanizio/aliasd/internal/site"
)

func siteBinding() *binding.Binding {
	return &binding.Binding{
		Alias: alias.Alias{ID: 1, SiteID: 42, Domain: "shop.example.org",
			Status: alias.StatusActive, Kind: alias.KindMask},
		Site: &site.Record{ID: 42, Domain: "real-domain.test", Path: "/"},
	}
}

func networkBinding() *binding.Binding {
	return &binding.Binding{
		Alias: alias.Alias{ID: 2, SiteID: 3, Domain: "alias-root.test",
			Status: alias.StatusActive, Kind: alias.KindMask},
		Network:      &site.Network{ID: 3, Domain: "network.example", Path: "/"},
		MappedDomain: "network.example",
	}
}

func TestSiteURL(t *testing.T) {
	b := siteBinding()

	cases := []struct {
		name   string
		in     string
		siteID uint64
		want   string
	}{
		{"path and query survive",
			"http://real-domain.test/path?x=1", 42,
			"http://shop.example.org/path?x=1"},
		{"scheme passes through",
			"https://real-domain.test/assets/a.css", 42,
			"https://shop.example.org/assets/a.css"},
		{"root URL",
			"https://real-domain.test/", 42,
			"https://shop.example.org/"},
		{"unrelated site untouched",
			"https://real-domain.test/path", 7,
			"https://real-domain.test/path"},
		{"foreign domain untouched",
			"https://elsewhere.test/path", 42,
			"https://elsewhere.test/path"},
		{"schemeless untouched",
			"/relative/path", 42,
			"/relative/path"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SiteURL(b, tc.in, tc.siteID); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSiteURL_WWWAliasKeptVerbatim(t *testing.T) {
	b := siteBinding()
	b.Alias.Domain = "www.shop.example.org"

	// The alias domain is substituted exactly as stored; a www-prefixed
	// alias rewrites onto the www form.  Only network rewriting strips the
	// prefix.
	got := SiteURL(b, "https://real-domain.test/page", 42)
	if got != "https://www.shop.example.org/page" {
		t.Fatalf("got %q", got)
	}
}

func TestSiteURL_NilBindingNoOp(t *testing.T) {
	const in = "https://real-domain.test/path"
	if got := SiteURL(nil, in, 42); got != in {
		t.Fatalf("nil binding rewrote URL: %q", got)
	}
}

func TestNetworkURL(t *testing.T) {
	b := networkBinding()

	cases := []struct {
		name  string
		in    string
		netID uint64
		want  string
	}{
		{"root host",
			"https://network.example/path", 3,
			"https://alias-root.test/path"},
		{"subdomain host",
			"https://foo.network.example/path?x=1", 3,
			"https://foo.alias-root.test/path?x=1"},
		{"label boundary respected",
			"https://notnetwork.example/path", 3,
			"https://notnetwork.example/path"},
		{"unrelated network untouched",
			"https://network.example/path", 9,
			"https://network.example/path"},
		{"bare host no path",
			"https://network.example", 3,
			"https://alias-root.test"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NetworkURL(b, tc.in, tc.netID); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

//
// End-to-end: resolve → bind → rewrite
//

// memLookup serves one in-memory alias record.
type memLookup struct {
	rec *alias.Alias
}

func (m *memLookup) ByDomains(_ context.Context, candidates []string) (*alias.Alias, error) {
	if m.rec == nil {
		return nil, nil
	}
	for _, d := range candidates {
		if d == m.rec.Domain {
			cp := *m.rec
			return &cp, nil
		}
	}
	return nil, nil
}

// memOwners serves one site record.
type memOwners struct {
	rec *site.Record
}

func (m *memOwners) Get(_ context.Context, id uint64) (*site.Record, error) {
	if m.rec != nil && m.rec.ID == id {
		return m.rec, nil
	}
	return nil, site.ErrNotFound
}

func (m *memOwners) Network(_ context.Context, _ uint64) (*site.Network, error) {
	return nil, site.ErrNotFound
}

func TestAliasedRequest_EndToEnd(t *testing.T) {
	rec := &alias.Alias{ID: 1, SiteID: 42, Domain: "shop.example.org",
		Status: alias.StatusActive, Kind: alias.KindMask}
	lookup := &memLookup{rec: rec}
	owners := &memOwners{rec: &site.Record{ID: 42, Domain: "real-domain.test", Path: "/"}}

	res := resolver.New(&resolver.Sites{Aliases: lookup})
	mw := binding.Middleware(res, owners)

	// The handler builds a canonical URL for the bound site and pushes it
	// through the rewriter, exactly as link generation would.
	var rewritten string
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rewritten = SiteURLFromContext(r.Context(),
			"http://real-domain.test/path?x=1", 42)
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(host string) {
		t.Helper()
		rewritten = ""
		req := httptest.NewRequest(http.MethodGet, "http://placeholder/path", nil)
		req.Host = host
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	serve("shop.example.org")
	if rewritten != "http://shop.example.org/path?x=1" {
		t.Fatalf("bound rewrite = %q", rewritten)
	}

	// Port variants normalize to the same resolution.
	serve("shop.example.org:443")
	if rewritten != "http://shop.example.org/path?x=1" {
		t.Fatalf("port-variant rewrite = %q", rewritten)
	}

	// Flipping the alias inactive makes the host miss, and canonical URLs
	// come out unmodified.
	rec.Status = alias.StatusInactive
	serve("shop.example.org")
	if rewritten != "http://real-domain.test/path?x=1" {
		t.Fatalf("inactive rewrite = %q, want canonical URL untouched", rewritten)
	}
}

func TestFromContextHelpers(t *testing.T) {
	ctx := binding.WithBinding(context.Background(), siteBinding())

	got := SiteURLFromContext(ctx, "https://real-domain.test/p", 42)
	if got != "https://shop.example.org/p" {
		t.Fatalf("got %q", got)
	}

	// An unbound context leaves everything alone.
	const in = "https://real-domain.test/p"
	if got := SiteURLFromContext(context.Background(), in, 42); got != in {
		t.Fatalf("unbound context rewrote URL: %q", got)
	}
	if got := NetworkURLFromContext(context.Background(), in, 3); got != in {
		t.Fatalf("unbound context rewrote network URL: %q", got)
	}
}
