// internal/binding/middleware_test.go
//
// Unit-tests for the alias-binding middleware.
//
// Context
// -------
// fakeResolver and fakeOwners satisfy the middleware's two contracts so the
// binding decisions can be exercised with httptest alone:
//
//   • Miss → request passes through without a Binding.
//   • Mask alias → Binding lands in the request context.
//   • Redirect alias → 301 to the owner's canonical home URL.
//   • Owner lookup failure → fall through, never a 5xx.
//
// Run: go test ./internal/binding -v

package binding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/aliasd/internal/alias"
	"github.com/yanizio/aliasd/internal/resolver"
	"github.com/yanizio/aliasd/internal/site"
)

// fakeResolver returns one canned match for one host.
type fakeResolver struct {
	host  string
	match *resolver.Match
}

func (f *fakeResolver) Resolve(_ context.Context, rawHost string) *resolver.Match {
	if rawHost == f.host {
		return f.match
	}
	return nil
}

// fakeOwners serves canned site and network rows.
type fakeOwners struct {
	sites    map[uint64]*site.Record
	networks map[uint64]*site.Network
	err      error
}

func (f *fakeOwners) Get(_ context.Context, id uint64) (*site.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if rec, ok := f.sites[id]; ok {
		return rec, nil
	}
	return nil, site.ErrNotFound
}

func (f *fakeOwners) Network(_ context.Context, id uint64) (*site.Network, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n, ok := f.networks[id]; ok {
		return n, nil
	}
	return nil, site.ErrNotFound
}

func maskMatch(siteID uint64, domain string) *resolver.Match {
	return &resolver.Match{Alias: alias.Alias{
		ID: 1, SiteID: siteID, Domain: domain,
		Status: alias.StatusActive, Kind: alias.KindMask,
	}}
}

func TestMiddleware_MissFallsThrough(t *testing.T) {
	res := &fakeResolver{host: "shop.example.org", match: maskMatch(42, "shop.example.org")}
	owners := &fakeOwners{}

	var sawBinding bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawBinding = FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "http://unrelated.example.net/", nil)
	rr := httptest.NewRecorder()

	Middleware(res, owners)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if sawBinding {
		t.Fatalf("miss produced a binding")
	}
}

func TestMiddleware_MaskBindsContext(t *testing.T) {
	res := &fakeResolver{host: "shop.example.org", match: maskMatch(42, "shop.example.org")}
	owners := &fakeOwners{sites: map[uint64]*site.Record{
		42: {ID: 42, Domain: "real-domain.test", Path: "/", Title: "Shop"},
	}}

	var got *Binding
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "http://shop.example.org/page", nil)
	rr := httptest.NewRecorder()

	Middleware(res, owners)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got == nil || got.Site == nil || got.Site.ID != 42 {
		t.Fatalf("binding = %#v, want site 42", got)
	}
	if got.Alias.Domain != "shop.example.org" {
		t.Fatalf("bound alias domain = %q", got.Alias.Domain)
	}
}

func TestMiddleware_RedirectKind(t *testing.T) {
	m := maskMatch(42, "shop.example.org")
	m.Alias.Kind = alias.KindRedirect

	res := &fakeResolver{host: "shop.example.org", match: m}
	owners := &fakeOwners{sites: map[uint64]*site.Record{
		42: {ID: 42, Domain: "real-domain.test", Path: "/"},
	}}

	req := httptest.NewRequest(http.MethodGet, "http://shop.example.org/page", nil)
	rr := httptest.NewRecorder()

	Middleware(res, owners)(http.NotFoundHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "https://real-domain.test/" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestMiddleware_NetworkRedirect(t *testing.T) {
	m := &resolver.Match{
		Alias: alias.Alias{ID: 2, SiteID: 3, Domain: "alias-root.test",
			Status: alias.StatusActive, Kind: alias.KindRedirect},
		Network:      true,
		MappedDomain: "network.example",
	}
	res := &fakeResolver{host: "alias-root.test", match: m}
	owners := &fakeOwners{networks: map[uint64]*site.Network{
		3: {ID: 3, Domain: "network.example", Path: "/"},
	}}

	req := httptest.NewRequest(http.MethodGet, "http://alias-root.test/", nil)
	rr := httptest.NewRecorder()

	Middleware(res, owners)(http.NotFoundHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "https://network.example/" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestMiddleware_OwnerFailureFallsThrough(t *testing.T) {
	res := &fakeResolver{host: "shop.example.org", match: maskMatch(42, "shop.example.org")}
	owners := &fakeOwners{err: errors.New("connection refused")}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) != nil {
			t.Errorf("binding present despite owner failure")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "http://shop.example.org/", nil)
	rr := httptest.NewRecorder()

	Middleware(res, owners)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 pass-through", rr.Code)
	}
}
