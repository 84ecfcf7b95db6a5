// internal/site/cache.go
//
// Lazy site-record cache.
//
// Context
// -------
// The binder needs the owner record for every aliased request, and the
// default handler needs it for canonical requests.  Rows change rarely, so
// records are loaded on first use, deduplicated through singleflight, kept
// in a sync.Map, and evicted on idle TTL or LRU pressure by the background
// evictor (see evictor.go).
package site

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/aliasd/internal/metrics"
)

// Static defaults.  Overridden by the sites config section.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 100
	EvictInterval = 5 * time.Minute
)

type entry struct {
	rec      *Record
	lastSeen int64 // UnixNano
}

// Cache lazily loads site records, stores them in a sync.Map, and evicts
// them on idle TTL or LRU pressure.  Network rows are cached without
// eviction; installations have a handful at most.
type Cache struct {
	db          *sqlx.DB
	sfg         singleflight.Group
	m           sync.Map // uint64 → *entry
	networks    sync.Map // uint64 → *Network
	evictTicker *time.Ticker
	idleTTL     time.Duration
	maxEntries  int
}

// NewCache constructs a Cache and starts the background evictor.
func NewCache(db *sqlx.DB, idleTTL time.Duration, maxEntries int) *Cache {
	c := &Cache{
		db:         db,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// Get returns the live Record for id, loading it on demand.
func (c *Cache) Get(ctx context.Context, id uint64) (*Record, error) {
	if v, ok := c.m.Load(id); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.rec, nil
	}

	v, err, _ := c.sfg.Do(strconv.FormatUint(id, 10), func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := c.m.Load(id); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.rec, nil
		}
		rec, err := ByID(ctx, c.db, id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				metrics.SiteLoadErrorsTotal.Inc()
			}
			return nil, err
		}
		c.m.Store(id, &entry{rec: rec, lastSeen: time.Now().UnixNano()})
		metrics.SiteLoadTotal.Inc()
		metrics.ActiveSites.Inc()
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// Exists reports whether id resolves to a live site.  Satisfies the alias
// store's owner check.
func (c *Cache) Exists(ctx context.Context, id uint64) (bool, error) {
	_, err := c.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Network returns the network row for id, cached indefinitely.
func (c *Cache) Network(ctx context.Context, id uint64) (*Network, error) {
	if v, ok := c.networks.Load(id); ok {
		return v.(*Network), nil
	}
	n, err := NetworkByID(ctx, c.db, id)
	if err != nil {
		return nil, err
	}
	c.networks.Store(id, n)
	return n, nil
}

// Drop removes a site from the cache, e.g. after deletion.
func (c *Cache) Drop(id uint64) {
	if _, ok := c.m.LoadAndDelete(id); ok {
		metrics.ActiveSites.Dec()
	}
}

// NetworkChecker adapts the cache's network lookup to the alias store's
// owner check, so network aliases can only be created for networks that
// exist.
type NetworkChecker struct {
	Cache *Cache
}

// Exists reports whether id resolves to a network row.
func (n NetworkChecker) Exists(ctx context.Context, id uint64) (bool, error) {
	_, err := n.Cache.Network(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
