// internal/site/repository_test.go
//
// Unit-tests for the site repository and the lazy cache, using sqlmock.
//
// Run: go test ./internal/site -v

package site

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func siteRows(list ...Record) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "network_id", "domain", "path", "title",
		"suspended_at", "deleted_at", "created_at", "updated_at",
	})
	for _, r := range list {
		rows.AddRow(r.ID, r.NetworkID, r.Domain, r.Path, r.Title,
			r.SuspendedAt, r.DeletedAt, r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

func TestByID(t *testing.T) {
	db, mock := newMockDB(t)

	rec := Record{ID: 42, NetworkID: 1, Domain: "real-domain.test", Path: "/",
		Title: "Shop", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+id = \?`).
		WithArgs(int64(42)).
		WillReturnRows(siteRows(rec))

	got, err := ByID(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got.Domain != "real-domain.test" || got.HomeURL() != "https://real-domain.test/" {
		t.Fatalf("unexpected record: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByDomain_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+domain = \?`).
		WithArgs("gone.example.org").
		WillReturnRows(siteRows())

	if _, err := ByDomain(context.Background(), db, "gone.example.org"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE site\s+SET\s+deleted_at = NOW\(\)`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := SoftDelete(context.Background(), db, 42); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// Deleting the same row again affects nothing and reports not-found.
	mock.ExpectExec(`UPDATE site\s+SET\s+deleted_at = NOW\(\)`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := SoftDelete(context.Background(), db, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeat delete: err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCache_GetMemoizes(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewCache(db, IdleTTL, MaxEntries)

	rec := Record{ID: 42, NetworkID: 1, Domain: "real-domain.test", Path: "/",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}

	// One SQL round-trip; the second Get is served from memory.
	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+id = \?`).
		WithArgs(int64(42)).
		WillReturnRows(siteRows(rec))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		got, err := c.Get(ctx, 42)
		if err != nil {
			t.Fatalf("get #%d: %v", i+1, err)
		}
		if got.ID != 42 {
			t.Fatalf("get #%d returned %#v", i+1, got)
		}
	}

	if ok, err := c.Exists(ctx, 42); err != nil || !ok {
		t.Fatalf("exists: ok=%v err=%v", ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCache_ExistsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewCache(db, IdleTTL, MaxEntries)

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(siteRows())

	// Missing owners are a clean false, not an error.
	if ok, err := c.Exists(context.Background(), 7); err != nil || ok {
		t.Fatalf("exists: ok=%v err=%v, want false, nil", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestNetworkChecker(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewCache(db, IdleTTL, MaxEntries)
	chk := NetworkChecker{Cache: c}

	networkRows := func(list ...Network) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"id", "domain", "path"})
		for _, n := range list {
			rows.AddRow(n.ID, n.Domain, n.Path)
		}
		return rows
	}

	mock.ExpectQuery(`SELECT id, domain, path FROM network WHERE id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(networkRows(Network{ID: 3, Domain: "network.example", Path: "/"}))
	mock.ExpectQuery(`SELECT id, domain, path FROM network WHERE id = \?`).
		WithArgs(int64(9)).
		WillReturnRows(networkRows())

	ctx := context.Background()
	if ok, err := chk.Exists(ctx, 3); err != nil || !ok {
		t.Fatalf("known network: ok=%v err=%v", ok, err)
	}
	// Missing networks are a clean false, not an error.
	if ok, err := chk.Exists(ctx, 9); err != nil || ok {
		t.Fatalf("unknown network: ok=%v err=%v, want false, nil", ok, err)
	}

	// Network rows are cached; the repeat check needs no SQL.
	if ok, err := chk.Exists(ctx, 3); err != nil || !ok {
		t.Fatalf("cached network: ok=%v err=%v", ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCache_DropForcesReload(t *testing.T) {
	db, mock := newMockDB(t)
	c := NewCache(db, IdleTTL, MaxEntries)

	rec := Record{ID: 42, NetworkID: 1, Domain: "real-domain.test", Path: "/",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+id = \?`).
		WithArgs(int64(42)).
		WillReturnRows(siteRows(rec))

	ctx := context.Background()
	if _, err := c.Get(ctx, 42); err != nil {
		t.Fatalf("first get: %v", err)
	}

	c.Drop(42)

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+id = \?`).
		WithArgs(int64(42)).
		WillReturnRows(siteRows(rec))

	if _, err := c.Get(ctx, 42); err != nil {
		t.Fatalf("get after drop: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
