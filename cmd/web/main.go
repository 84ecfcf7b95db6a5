// cmd/web/main.go
//
// aliasd – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load layered config (YAML → env → Vault secrets) and validate it.
//
//  4. Open the control-plane DB and log active-site count.
//
//  5. Build the site cache, the two alias stores (site_alias and
//     network_alias), and the ordered resolver (sites first, networks
//     second).
//
//  6. Assemble the chi chain: security headers → optional HTTPS
//     enforcement → request-info enrichment → alias binding.
//
//  7. Mount /metrics (Prometheus), /api (admin CRUD), and the default
//     handler, which reports the bound site through the URL rewriter.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/aliasd/internal/alias"
	"github.com/yanizio/aliasd/internal/api"
	"github.com/yanizio/aliasd/internal/binding"
	"github.com/yanizio/aliasd/internal/config"
	"github.com/yanizio/aliasd/internal/database"
	"github.com/yanizio/aliasd/internal/domain"
	"github.com/yanizio/aliasd/internal/logger"
	"github.com/yanizio/aliasd/internal/middleware"
	"github.com/yanizio/aliasd/internal/requestinfo"
	"github.com/yanizio/aliasd/internal/resolver"
	"github.com/yanizio/aliasd/internal/rewrite"
	"github.com/yanizio/aliasd/internal/server"
	"github.com/yanizio/aliasd/internal/site"
)

const serverEnvPath = "/usr/local/etc/aliasd/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx := context.Background()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config (YAML → env → Vault) ─────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Control-plane DB connect ────────────────────────────────────
	//
	dsn := cfg.Database.DSN
	if cfg.Database.Password != "" {
		// DSN templates reference ${DB_PASSWORD}; substitute the
		// Vault-resolved secret before dialing.
		dsn = os.Expand(dsn, func(key string) string {
			if key == "DB_PASSWORD" {
				return cfg.Database.Password
			}
			return os.Getenv(key)
		})
	}
	logOut.Infow("connecting to control-plane DB")
	db, err := database.Open(dsn)
	if err != nil {
		logOut.Fatalf("connect DB: %v", err)
	}
	defer db.Close()

	// Log active-site count as an early sanity check.
	sites, err := site.AllActive(ctx, db)
	if err != nil {
		logOut.Fatalf("list sites: %v", err)
	}
	logOut.Infow("control-plane DB online", "active_sites", len(sites))

	//
	// ── 3.  Caches, stores, and resolver ────────────────────────────────
	//
	siteCache := site.NewCache(db, cfg.Sites.IdleTTL, cfg.Sites.MaxEntries)

	siteAliases := alias.NewStore(db, alias.Options{
		Table:        "site_alias",
		CacheEntries: cfg.Aliases.CacheEntries,
		Events:       alias.LogEvents{},
		Sites:        siteCache,
	})
	networkAliases := alias.NewStore(db, alias.Options{
		Table:        "network_alias",
		CacheEntries: cfg.Aliases.CacheEntries,
		Events:       alias.LogEvents{},
		Sites:        site.NetworkChecker{Cache: siteCache},
	})

	res := resolver.New(
		&resolver.Sites{Aliases: siteAliases},
		&resolver.Networks{
			Aliases:  networkAliases,
			Networks: siteCache,
			Segments: cfg.Aliases.NetworkSegments,
		},
	)

	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		// Geo is enrichment only; run without it rather than abort.
		logOut.Warnw("geo reader unavailable", "path", cfg.Geo.DBPath, "err", err)
	}

	//
	// ── 4.  Router: middleware chain, metrics, API, default handler ────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich)
	r.Use(binding.Middleware(res, siteCache))

	r.Handle("/metrics", promhttp.Handler())

	adminAPI := &api.API{
		DB:             db,
		Sites:          siteCache,
		SiteAliases:    siteAliases,
		NetworkAliases: networkAliases,
	}
	r.Mount("/api", adminAPI.Routes())

	r.NotFound(siteHandler(db))

	var root http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		known := middleware.KnownHostsFunc(func(host string) bool {
			if res.Resolve(ctx, host) != nil {
				return true
			}
			_, err := site.ByDomain(ctx, db, host)
			return err == nil
		})
		root = middleware.ForceHTTPS(known, r)
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, root)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}

// siteHandler resolves the owner for the request—via the alias binding when
// present, via canonical-domain lookup otherwise—and reports its identity.
// Every URL in the payload passes through the rewriter so aliased visitors
// see their own domain.
func siteHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var (
			rec *site.Record
			b   = binding.FromContext(ctx)
		)
		if b != nil && b.Site != nil {
			rec = b.Site
		} else {
			host := domain.NormalizeHost(r.Host)
			found, err := site.ByDomain(ctx, db, host)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			rec = found
		}

		home := rewrite.SiteURLFromContext(ctx, rec.HomeURL(), rec.ID)

		payload := map[string]any{
			"site_id": rec.ID,
			"title":   rec.Title,
			"home":    home,
		}
		if b != nil {
			payload["alias"] = b.Alias.Domain
			if b.MappedDomain != "" {
				payload["mapped_domain"] = b.MappedDomain
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			zap.L().Error("site handler encode failed", zap.Error(err))
		}
	}
}
