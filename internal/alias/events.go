// internal/alias/events.go
//
// Outbound mutation events.
//
// Collaborators (observability, external cache busting) subscribe by
// implementing Events.  Notifications are fire-and-forget; the store never
// consumes a return value and never lets a subscriber fail a mutation.
package alias

import "go.uber.org/zap"

// Events receives record-change notifications from the store.
type Events interface {
	Created(a Alias)
	Updated(old, cur Alias)
	Deleted(a Alias)
}

// LogEvents is the default subscriber: one structured log line per event.
type LogEvents struct{}

func (LogEvents) Created(a Alias) {
	zap.L().Info("alias created",
		zap.Uint64("id", a.ID),
		zap.Uint64("site_id", a.SiteID),
		zap.String("domain", a.Domain),
		zap.String("status", string(a.Status)))
}

func (LogEvents) Updated(old, cur Alias) {
	zap.L().Info("alias updated",
		zap.Uint64("id", cur.ID),
		zap.String("old_domain", old.Domain),
		zap.String("domain", cur.Domain),
		zap.String("old_status", string(old.Status)),
		zap.String("status", string(cur.Status)))
}

func (LogEvents) Deleted(a Alias) {
	zap.L().Info("alias deleted",
		zap.Uint64("id", a.ID),
		zap.Uint64("site_id", a.SiteID),
		zap.String("domain", a.Domain))
}
