// internal/site/repository.go
//
// Query helpers for the `site` and `network` tables.  Thin, parameterised,
// context-aware; callers wrap results in the package cache when they need
// memoization.
package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a site or network row does not exist or is
// suspended/deleted.
var ErrNotFound = errors.New("site not found")

const siteColumns = `id, network_id, domain, path, title,
               suspended_at, deleted_at, created_at, updated_at`

// ByID fetches a single live site row.
func ByID(ctx context.Context, db *sqlx.DB, id uint64) (*Record, error) {
	const q = `
        SELECT ` + siteColumns + `
        FROM   site
        WHERE  id = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1`

	var rec Record
	if err := db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("site by id: %w", err)
	}
	return &rec, nil
}

// ByDomain fetches the live site that owns a canonical domain.  Used for
// fall-through routing when no alias matched.
func ByDomain(ctx context.Context, db *sqlx.DB, domain string) (*Record, error) {
	const q = `
        SELECT ` + siteColumns + `
        FROM   site
        WHERE  domain = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1`

	var rec Record
	if err := db.GetContext(ctx, &rec, q, domain); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("site by domain: %w", err)
	}
	return &rec, nil
}

// AllActive returns every site that is neither suspended nor deleted.  Used
// for the boot-time sanity count and by batch operations.
func AllActive(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	const q = `
        SELECT ` + siteColumns + `
        FROM   site
        WHERE  suspended_at IS NULL
          AND  deleted_at   IS NULL`

	var rows []Record
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("site all active: %w", err)
	}
	return rows, nil
}

// NetworkByID fetches one network row.
func NetworkByID(ctx context.Context, db *sqlx.DB, id uint64) (*Network, error) {
	const q = `SELECT id, domain, path FROM network WHERE id = ? LIMIT 1`

	var n Network
	if err := db.GetContext(ctx, &n, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("network by id: %w", err)
	}
	return &n, nil
}

// SoftDelete marks a site deleted.  The caller is responsible for the
// explicit alias cleanup; there is no FK-level cascade.
func SoftDelete(ctx context.Context, db *sqlx.DB, id uint64) error {
	const q = `
        UPDATE site
        SET    deleted_at = NOW()
        WHERE  id = ?
          AND  deleted_at IS NULL`

	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("site delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
