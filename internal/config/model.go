// internal/config/model.go
//
// Typed configuration model for aliasd.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `ALIASD_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client after unmarshalling, so consumers only ever see
// plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the control-plane DSN.  The DSN template stays in YAML so
// operators can tweak host, port, or flags without touching Vault; the
// password may be a `vault:` reference resolved at load time.
type Database struct {
	DSN      string `koanf:"dsn" validate:"required"`
	Password string `koanf:"password"`
}

//
// Aliases section
//

// Aliases tunes the resolution core.  NetworkSegments bounds the
// progressive-superset expansion for network aliases; CacheEntries caps the
// LRU behind each alias store.
type Aliases struct {
	NetworkSegments int `koanf:"network_segments" validate:"gte=1,lte=10"`
	CacheEntries    int `koanf:"cache_entries"    validate:"gte=0"`
}

//
// Sites section
//

// Sites tunes the lazy site-record cache.
type Sites struct {
	IdleTTL    time.Duration `koanf:"idle_ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

//
// Geo section
//

// Geo points at the optional GeoLite2-City database used by the
// request-info middleware.  Empty path disables geo lookups.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or ALIASD_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // ALIASD_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Aliases  Aliases  `koanf:"aliases"`
	Sites    Sites    `koanf:"sites"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
