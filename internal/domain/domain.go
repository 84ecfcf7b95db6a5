// internal/domain/domain.go
//
// Host normalization and candidate-domain expansion.
//
// Context
// -------
// Every alias lookup starts from a raw Host header.  The helpers here turn
// that header into the canonical comparison form (lowercase, no port) and
// expand it into the candidate list the store is queried with:
//
//   • Variants          — the host plus its www-toggled twin (site aliases).
//   • NetworkCandidates — progressive supersets of the host, each with a
//     www variant appended (network aliases; lets foo.bar.com match an
//     alias registered for bar.com).
//
// Everything in this package is a pure string function.  No storage, no
// logging, no side effects.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package domain

import "strings"

// wwwPrefix is the only label we ever toggle; deeper prefixes are the
// resolver's business, not the normalizer's.
const wwwPrefix = "www."

// NormalizeHost lowercases a raw Host header and strips the port suffix.
// The scheme is never present in a Host header, but stray whitespace is
// tolerated.  ":80" and ":443" are the common cases; any other ":port"
// falls to the same rule because comparison is always port-less.
func NormalizeHost(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(h, ':'); i != -1 {
		h = h[:i]
	}
	return h
}

// StripWWW removes a leading "www." when present.
func StripWWW(d string) string {
	return strings.TrimPrefix(d, wwwPrefix)
}

// AddWWW prepends "www." unless the domain already carries it.
func AddWWW(d string) string {
	if strings.HasPrefix(d, wwwPrefix) {
		return d
	}
	return wwwPrefix + d
}

// ToggleWWW returns the www twin of d: stripped when present, added when
// absent.
func ToggleWWW(d string) string {
	if strings.HasPrefix(d, wwwPrefix) {
		return StripWWW(d)
	}
	return AddWWW(d)
}

// Variants returns exactly two candidates: the domain as given and its
// www-toggled twin.  A stored alias of either form must match a request in
// the other form.
func Variants(d string) []string {
	return []string{d, ToggleWWW(d)}
}

// Supersets splits d on "." and returns a sequence of decreasing
// specificity, at most max entries:
//
//	Supersets("a.b.c.com", 2) → ["a.b.c.com", "b.c.com"]
//
// max < 2 yields just the domain itself.
func Supersets(d string, max int) []string {
	d = strings.Trim(d, ".")
	if d == "" {
		return nil
	}
	if max < 2 {
		return []string{d}
	}

	parts := strings.SplitN(d, ".", max)
	out := make([]string, 0, len(parts))
	for len(parts) > 1 {
		out = append(out, strings.Join(parts, "."))
		parts = parts[1:]
	}
	return append(out, parts[0])
}

// NetworkCandidates expands a (normalized) host into every domain a network
// alias could be registered under: the progressive supersets of the
// www-stripped host, followed by the www variant of each.  The bare forms
// come first so the longest bare match is preferred by the store's
// length-ordered lookup.
func NetworkCandidates(host string, max int) []string {
	bare := Supersets(StripWWW(host), max)
	out := make([]string, 0, len(bare)*2)
	out = append(out, bare...)
	for _, d := range bare {
		out = append(out, AddWWW(d))
	}
	return out
}
