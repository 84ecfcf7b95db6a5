// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AliasResolveHitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alias_resolve_hit_total",
			Help: "Cumulative number of requests matched to an active alias.",
		})

	AliasResolveMissTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alias_resolve_miss_total",
			Help: "Cumulative number of requests that fell through to canonical routing.",
		})

	AliasRedirectTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alias_redirect_total",
			Help: "Cumulative number of redirect-kind aliases served.",
		})

	AliasCacheHitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alias_cache_hit_total",
			Help: "Cumulative number of alias lookups answered from cache.",
		})

	AliasCacheMissTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alias_cache_miss_total",
			Help: "Cumulative number of alias lookups that hit the backing store.",
		})

	ActiveSites = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sites",
			Help: "Number of site records currently loaded in memory.",
		})

	SiteLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_load_total",
			Help: "Cumulative number of site records successfully loaded.",
		})

	SiteLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_load_errors_total",
			Help: "Cumulative number of site load errors.",
		})

	SiteEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_evict_total",
			Help: "Cumulative number of site records evicted from the cache.",
		})
)

func init() {
	prometheus.MustRegister(
		AliasResolveHitTotal,
		AliasResolveMissTotal,
		AliasRedirectTotal,
		AliasCacheHitTotal,
		AliasCacheMissTotal,
		ActiveSites,
		SiteLoadTotal,
		SiteLoadErrorsTotal,
		SiteEvictTotal,
	)
}
