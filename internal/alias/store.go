// internal/alias/store.go
//
// Alias persistence: CRUD plus the three indexed lookups, with the keyed
// cache in front.
//
/*
Context
--------
One Store serves one table.  The site front end constructs two of them,
`site_alias` and `network_alias`, so both alias variants share a single
implementation.  Writes bubble storage faults to the caller; read paths
return typed misses (nil, ErrNotFound) that resolution treats as "no match."

Uniqueness
----------
Create and Update re-check domain uniqueness before touching the table, but
the authoritative guard is the table's UNIQUE KEY on `domain`: two racing
creates can both pass the application check, and the second insert must
surface as ErrDomainExists via MySQL error 1062, never as a crash.

Notes
-----
  • Table names are compile-time constants chosen by the caller, never user
    input, so interpolating them into the query strings is safe.
  • Oxford commas, two spaces after periods.
*/
package alias

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/aliasd/internal/metrics"
)

// SiteChecker answers "does this owner exist right now?"  Defined here so
// the alias package does not import the site package; the site layer depends
// on this one for purge-on-delete.
type SiteChecker interface {
	Exists(ctx context.Context, siteID uint64) (bool, error)
}

// Options configures a Store.
type Options struct {
	Table        string // "site_alias" or "network_alias"
	CacheEntries int    // LRU capacity; 0 uses a small default
	Events       Events // nil disables notifications
	Sites        SiteChecker
}

// Store owns one alias table plus its cache.
type Store struct {
	db     *sqlx.DB
	table  string
	cache  *Cache
	events Events
	sites  SiteChecker
}

const defaultCacheEntries = 1024

// NewStore wires a Store over db.
func NewStore(db *sqlx.DB, opts Options) *Store {
	if opts.Table == "" {
		opts.Table = "site_alias"
	}
	if opts.CacheEntries < 1 {
		opts.CacheEntries = defaultCacheEntries
	}
	return &Store{
		db:     db,
		table:  opts.Table,
		cache:  NewCache(opts.CacheEntries),
		events: opts.Events,
		sites:  opts.Sites,
	}
}

const columns = "id, site_id, domain, status, kind, created_at"

//
// Create
//

// Create validates, normalizes, and inserts a new alias.  Empty status and
// kind default to active and mask.  Creating the same domain again for the
// same owner is idempotent and returns the existing record; for a different
// owner it fails with ErrDomainExists regardless of either record's status.
func (s *Store) Create(ctx context.Context, siteID uint64, domain string, status Status, kind Kind) (*Alias, error) {
	dom, err := SanitizeDomain(domain)
	if err != nil {
		return nil, err
	}

	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return nil, ErrBadStatus
	}

	if kind == "" {
		kind = KindMask
	}
	if !kind.Valid() {
		return nil, ErrBadKind
	}

	if siteID == 0 {
		return nil, ErrInvalidSite
	}
	if s.sites != nil {
		ok, err := s.sites.Exists(ctx, siteID)
		if err != nil {
			return nil, fmt.Errorf("alias owner check: %w", err)
		}
		if !ok {
			return nil, ErrInvalidSite
		}
	}

	// Exact-domain uniqueness, status-independent.
	existing, err := s.ByDomains(ctx, []string{dom})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.SiteID == siteID {
			return existing, nil // idempotent create
		}
		return nil, ErrDomainExists
	}

	now := time.Now().UTC().Truncate(time.Second)
	q := fmt.Sprintf(
		`INSERT INTO %s (site_id, domain, status, kind, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.table)

	res, err := s.db.ExecContext(ctx, q, siteID, dom, status, kind, now)
	if err != nil {
		if isDuplicateKey(err) {
			// Lost the race; the constraint is the authoritative guard.
			return nil, ErrDomainExists
		}
		return nil, fmt.Errorf("alias insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("alias insert id: %w", err)
	}

	a := Alias{
		ID:        uint64(id),
		SiteID:    siteID,
		Domain:    dom,
		Status:    status,
		Kind:      kind,
		CreatedAt: now,
	}

	// Clear the negative marker (if any) before priming, and drop the
	// owner's stale list.
	s.cache.DropDomain(dom)
	s.cache.DropSiteList(siteID)
	s.cache.StoreAlias(a)

	if s.events != nil {
		s.events.Created(a)
	}
	return &a, nil
}

//
// Reads
//

// Get fetches one alias by ID.
func (s *Store) Get(ctx context.Context, id uint64) (*Alias, error) {
	if a, ok := s.cache.Alias(id); ok {
		metrics.AliasCacheHitTotal.Inc()
		return &a, nil
	}
	metrics.AliasCacheMissTotal.Inc()

	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? LIMIT 1`, columns, s.table)

	var a Alias
	if err := s.db.GetContext(ctx, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("alias get: %w", err)
	}

	s.cache.StoreAlias(a)
	return &a, nil
}

// BySite returns every alias owned by siteID, ordered by creation.
func (s *Store) BySite(ctx context.Context, siteID uint64) ([]Alias, error) {
	if list, ok := s.cache.SiteList(siteID); ok {
		metrics.AliasCacheHitTotal.Inc()
		return list, nil
	}
	metrics.AliasCacheMissTotal.Inc()

	q := fmt.Sprintf(
		`SELECT %s FROM %s WHERE site_id = ? ORDER BY created_at ASC, id ASC`,
		columns, s.table)

	list := make([]Alias, 0, 4)
	if err := s.db.SelectContext(ctx, &list, q, siteID); err != nil {
		return nil, fmt.Errorf("alias list: %w", err)
	}

	s.cache.StoreSiteList(siteID, list)
	return list, nil
}

// ByDomains returns the best match among the candidate domain strings, or
// nil when none match.  Candidates confirmed absent by the cache are not
// re-queried; when every candidate is a confirmed miss, the store is not
// touched at all.  When multiple rows match, the longest (most specific)
// domain wins.
func (s *Store) ByDomains(ctx context.Context, candidates []string) (*Alias, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var (
		best    *Alias
		unknown []string
	)
	for _, d := range candidates {
		rec, negative, ok := s.cache.Domain(d)
		switch {
		case !ok:
			unknown = append(unknown, d)
		case negative:
			// Confirmed absent; nothing to re-derive.
		default:
			r := rec
			best = better(best, &r)
		}
	}

	if len(unknown) == 0 {
		metrics.AliasCacheHitTotal.Inc()
		return best, nil
	}
	metrics.AliasCacheMissTotal.Inc()

	// One query for every still-unknown candidate.  Length ordering makes
	// the first row the most specific match.
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(unknown)), ",")
	q := fmt.Sprintf(
		`SELECT %s FROM %s WHERE domain IN (%s) ORDER BY CHAR_LENGTH(domain) DESC, id ASC`,
		columns, s.table, placeholders)

	args := make([]any, len(unknown))
	for i, d := range unknown {
		args[i] = d
	}

	var rows []Alias
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("alias domain lookup: %w", err)
	}

	found := make(map[string]struct{}, len(rows))
	for i := range rows {
		s.cache.StoreAlias(rows[i])
		found[rows[i].Domain] = struct{}{}
		best = better(best, &rows[i])
	}
	for _, d := range unknown {
		if _, ok := found[d]; !ok {
			s.cache.StoreDomainMiss(d)
		}
	}
	return best, nil
}

// better picks the more specific of two candidate matches: longer domain
// first, then the older row for stability.
func better(a, b *Alias) *Alias {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case len(b.Domain) > len(a.Domain):
		return b
	case len(b.Domain) == len(a.Domain) && b.ID < a.ID:
		return b
	default:
		return a
	}
}

//
// Update
//

// Update holds the mutable fields.  Nil pointers are "leave unchanged."
type Update struct {
	Domain *string
	Status *Status
	Kind   *Kind
}

// ApplyUpdate mutates the alias identified by id.  It returns (false, nil)
// when every supplied field already matches the current record: nothing to
// do, distinct from failure.  A domain change re-runs the uniqueness check
// exactly as in Create.
func (s *Store) ApplyUpdate(ctx context.Context, id uint64, upd Update) (bool, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	var (
		sets []string
		args []any
		next = *cur
	)

	if upd.Domain != nil {
		dom, err := SanitizeDomain(*upd.Domain)
		if err != nil {
			return false, err
		}
		if dom != cur.Domain {
			existing, err := s.ByDomains(ctx, []string{dom})
			if err != nil {
				return false, err
			}
			if existing != nil {
				return false, ErrDomainExists
			}
			sets = append(sets, "domain = ?")
			args = append(args, dom)
			next.Domain = dom
		}
	}

	if upd.Status != nil && *upd.Status != cur.Status {
		if !upd.Status.Valid() {
			return false, ErrBadStatus
		}
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
		next.Status = *upd.Status
	}

	if upd.Kind != nil && *upd.Kind != cur.Kind {
		if !upd.Kind.Valid() {
			return false, ErrBadKind
		}
		sets = append(sets, "kind = ?")
		args = append(args, *upd.Kind)
		next.Kind = *upd.Kind
	}

	if len(sets) == 0 {
		return false, nil
	}

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, s.table, strings.Join(sets, ", "))
	args = append(args, id)

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if isDuplicateKey(err) {
			return false, ErrDomainExists
		}
		return false, fmt.Errorf("alias update: %w", err)
	}

	// Invalidate every key the mutation can affect, then prime the new
	// shape.
	s.cache.DropAlias(*cur)
	s.cache.DropDomain(next.Domain)
	s.cache.DropSiteList(cur.SiteID)
	s.cache.StoreAlias(next)

	if s.events != nil {
		s.events.Updated(*cur, next)
	}
	return true, nil
}

//
// Delete
//

// Delete removes one alias.
func (s *Store) Delete(ctx context.Context, id uint64) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("alias delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.cache.DropAlias(*cur)
		return ErrNotFound
	}

	s.cache.DropAlias(*cur)
	s.cache.DropSiteList(cur.SiteID)

	if s.events != nil {
		s.events.Deleted(*cur)
	}
	return nil
}

// PurgeSite deletes every alias owned by siteID.  This is the explicit
// cascade run when an owner is deleted; there is no FK-level cascade.
func (s *Store) PurgeSite(ctx context.Context, siteID uint64) (int, error) {
	list, err := s.BySite(ctx, siteID)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}

	q := fmt.Sprintf(`DELETE FROM %s WHERE site_id = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, q, siteID); err != nil {
		return 0, fmt.Errorf("alias purge: %w", err)
	}

	for i := range list {
		s.cache.DropAlias(list[i])
		if s.events != nil {
			s.events.Deleted(list[i])
		}
	}
	s.cache.DropSiteList(siteID)
	return len(list), nil
}

//
// helpers
//

// isDuplicateKey recognises MySQL/MariaDB error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
