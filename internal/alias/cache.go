// internal/alias/cache.go
//
// Keyed lookup cache in front of the alias store.
//
// Context
// -------
// Three independent keyspaces share one LRU:
//
//   • id     → record            (Get)
//   • domain → record or absent  (ByDomains; negative entries matter so a
//     cold domain does not hammer the store on every request)
//   • site   → ordered id list of the site's aliases (BySite)
//
// The cache is opportunistic and best-effort: the backing store stays
// authoritative, and every mutation path invalidates exactly the keys it
// can affect.  A stale negative entry after a concurrent create is
// acceptable by design.
//
// Notes
// -----
// • Records are stored and returned by value so callers can never mutate a
//   cached copy in place.
// • Oxford commas, two spaces after periods.
package alias

import (
	"sync"

	"github.com/yanizio/aliasd/internal/cache"
)

// Typed keys keep the three keyspaces collision-free inside one LRU.
type (
	idKey     struct{ id uint64 }
	domainKey struct{ d string }
	siteKey   struct{ id uint64 }
)

// absent is the negative marker for domain lookups.
type absent struct{}

// Cache wraps the shared LRU with a mutex; the LRU itself is not safe for
// concurrent use.
type Cache struct {
	mu  sync.Mutex
	lru *cache.LRU
}

// NewCache returns a Cache holding at most capacity entries across all
// keyspaces.
func NewCache(capacity int) *Cache {
	return &Cache{lru: cache.New(capacity)}
}

//
// id keyspace
//

// Alias returns the cached record for id, when present.
func (c *Cache) Alias(id uint64) (Alias, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(idKey{id}); ok {
		return v.(Alias), true
	}
	return Alias{}, false
}

// StoreAlias primes both the id and domain keyspaces for a.
func (c *Cache) StoreAlias(a Alias) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(idKey{a.ID}, a)
	c.lru.Add(domainKey{a.Domain}, a)
}

// DropAlias invalidates the id and domain entries for a.
func (c *Cache) DropAlias(a Alias) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(idKey{a.ID})
	c.lru.Remove(domainKey{a.Domain})
}

//
// domain keyspace
//

// Domain returns the cached record for d.  negative is true when the cache
// has confirmed the domain absent; ok is false when the cache knows nothing.
func (c *Cache) Domain(d string) (rec Alias, negative, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(domainKey{d})
	if !ok {
		return Alias{}, false, false
	}
	if _, neg := v.(absent); neg {
		return Alias{}, true, true
	}
	return v.(Alias), false, true
}

// StoreDomainMiss records that d has no alias.
func (c *Cache) StoreDomainMiss(d string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(domainKey{d}, absent{})
}

// DropDomain invalidates the domain entry (positive or negative) for d.
func (c *Cache) DropDomain(d string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(domainKey{d})
}

//
// site keyspace
//

// SiteList returns the cached alias list for a site.
func (c *Cache) SiteList(siteID uint64) ([]Alias, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(siteKey{siteID}); ok {
		list := v.([]Alias)
		out := make([]Alias, len(list))
		copy(out, list)
		return out, true
	}
	return nil, false
}

// StoreSiteList caches the ordered alias list for a site.
func (c *Cache) StoreSiteList(siteID uint64, list []Alias) {
	cp := make([]Alias, len(list))
	copy(cp, list)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(siteKey{siteID}, cp)
}

// DropSiteList invalidates the alias list for a site.
func (c *Cache) DropSiteList(siteID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(siteKey{siteID})
}
