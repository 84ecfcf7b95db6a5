// internal/alias/model.go
//
// Alias record, enumerations, and field validation.
//
// Context
// -------
// An Alias maps an extra fully-qualified domain onto an owning site (or, for
// the network store, a network).  The record is a fixed-shape struct with one
// canonical name per concept: ID, SiteID, Domain.  Inactive aliases are
// retained but invisible to resolution; uniqueness of the domain string is
// status-independent.
//
// Notes
// -----
// • Domain is stored lowercase, scheme-less, port-less, and ≤255 bytes.
// • Kind is an optional extension: mask serves content under the alias
//   domain, redirect bounces to the owner's canonical home URL.
package alias

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

//
// Enumerations
//

// Status gates resolution: only active aliases match requests.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Kind selects serving behavior for a matched alias.
type Kind string

const (
	KindMask     Kind = "mask"
	KindRedirect Kind = "redirect"
)

// Valid reports whether k is a known kind value.
func (k Kind) Valid() bool {
	return k == KindMask || k == KindRedirect
}

//
// Record
//

// Alias mirrors one row in the `site_alias` (or `network_alias`) table.
type Alias struct {
	ID        uint64    `db:"id"         json:"id"`
	SiteID    uint64    `db:"site_id"    json:"site_id"`
	Domain    string    `db:"domain"     json:"domain"`
	Status    Status    `db:"status"     json:"status"`
	Kind      Kind      `db:"kind"       json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsActive reports whether the alias participates in resolution.
func (a *Alias) IsActive() bool { return a.Status == StatusActive }

// IsRedirect reports whether the alias should 301 to the canonical domain
// instead of masking it.
func (a *Alias) IsRedirect() bool { return a.Kind == KindRedirect }

//
// Validation errors
//

// User-facing validation failures.  These are detected before any store
// interaction and must surface as 4xx responses, never as system faults.
var (
	ErrNotFound      = errors.New("alias not found")
	ErrDomainExists  = errors.New("alias domain already in use")
	ErrInvalidSite   = errors.New("alias owner site is invalid")
	ErrDomainEmpty   = errors.New("alias domain is empty")
	ErrDomainNoTLD   = errors.New("alias domain requires a top-level domain")
	ErrDomainChars   = errors.New("alias domain contains invalid characters")
	ErrDomainTooLong = errors.New("alias domain exceeds 255 characters")
	ErrBadStatus     = errors.New("alias status must be active or inactive")
	ErrBadKind       = errors.New("alias kind must be mask or redirect")
)

var (
	domainChars = regexp.MustCompile(`^[a-z0-9.-]+$`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SanitizeDomain normalizes user input into the canonical stored form and
// validates it.  Whitespace is removed, a scheme prefix and trailing slash
// are stripped, and the result is lowercased before the checks run.
func SanitizeDomain(raw string) (string, error) {
	d := whitespace.ReplaceAllString(raw, "")

	// Accept full URLs; keep only the authority onward.
	if _, rest, ok := strings.Cut(d, "://"); ok {
		d = rest
	}
	d = strings.ToLower(strings.TrimRight(d, "/"))

	switch {
	case d == "":
		return "", ErrDomainEmpty
	case !strings.Contains(d[1:], "."):
		// No dot at all, or only a leading dot: not a registrable name.
		return "", ErrDomainNoTLD
	case !domainChars.MatchString(d):
		return "", ErrDomainChars
	case len(d) > 255:
		return "", ErrDomainTooLong
	}
	return d, nil
}
