package site

import "time"

// Record mirrors one row in the persistent `site` table.  The operational
// state is captured by two nullable timestamps:
//
//   - SuspendedAt – site is temporarily disabled (e.g., billing).
//   - DeletedAt   – site is permanently removed.
//
// Either timestamp being non-NULL makes the site invisible to alias
// binding and canonical lookup alike.
type Record struct {
	ID          uint64     `db:"id"`
	NetworkID   uint64     `db:"network_id"`
	Domain      string     `db:"domain"`
	Path        string     `db:"path"`
	Title       string     `db:"title"`
	SuspendedAt *time.Time `db:"suspended_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// HomeURL builds the canonical home URL for the site.  Path always carries
// a leading slash ("/" for the root).
func (r *Record) HomeURL() string {
	return "https://" + r.Domain + r.Path
}

// Network mirrors one row in the `network` table.  A network groups sites
// under one root domain; network aliases map foreign domains onto it.
type Network struct {
	ID     uint64 `db:"id"`
	Domain string `db:"domain"`
	Path   string `db:"path"`
}
