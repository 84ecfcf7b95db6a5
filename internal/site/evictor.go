// evictor.go houses the eviction loop for Cache.  Every EvictInterval it
// scans the map and removes:
//
//   - site records idle longer than idleTTL
//   - least-recently-used records when map size exceeds maxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package site

import (
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/aliasd/internal/metrics"
)

func (c *Cache) evictLoop() {
	for range c.evictTicker.C {
		now := time.Now().UnixNano()
		var count int

		// ----------------------------------------------------------------
		// Idle eviction pass
		// ----------------------------------------------------------------
		c.m.Range(func(key, value any) bool {
			count++
			ent := value.(*entry)
			idle := time.Duration(now - atomic.LoadInt64(&ent.lastSeen))
			if idle > c.idleTTL {
				c.m.Delete(key)
				zap.S().Infow("site evicted",
					"site_id", key, "idle", idle.Truncate(time.Second))
				metrics.SiteEvictTotal.Inc()
				metrics.ActiveSites.Dec()
			}
			return true
		})

		// ----------------------------------------------------------------
		// LRU eviction pass
		// ----------------------------------------------------------------
		if c.maxEntries > 0 && count > c.maxEntries {
			type kv struct {
				key uint64
				at  int64
			}
			var all []kv
			c.m.Range(func(key, value any) bool {
				ent := value.(*entry)
				all = append(all, kv{key: key.(uint64), at: atomic.LoadInt64(&ent.lastSeen)})
				return true
			})
			sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
			for i := 0; i < count-c.maxEntries && i < len(all); i++ {
				if _, ok := c.m.LoadAndDelete(all[i].key); ok {
					zap.S().Infow("site evicted (LRU pressure)", "site_id", all[i].key)
					metrics.SiteEvictTotal.Inc()
					metrics.ActiveSites.Dec()
				}
			}
		}
	}
}
