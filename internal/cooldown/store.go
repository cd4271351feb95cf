// Package cooldown tracks per-KOL vote cooldowns on the client side.
//
// The store is a UX guard, not the authority: the vote procedure enforces
// its own per-identity rate limit server-side. Entries are never purged;
// an entry is simply ignored once its window has elapsed.
package cooldown

import "time"

// Entry records one cooldown window for a KOL.
type Entry struct {
	KOLID     string        `json:"kolId"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Remaining returns how much of the window is left at the given time,
// or zero if it has elapsed.
func (e Entry) Remaining(now time.Time) time.Duration {
	end := e.StartedAt.Add(e.Duration)
	if !now.Before(end) {
		return 0
	}
	return end.Sub(now)
}

// Store persists cooldown entries keyed by KOL id. The vote coordinator is
// the only writer; readers poll Remaining for countdown display.
type Store interface {
	// Start records a new cooldown window for the KOL, replacing any
	// existing entry.
	Start(kolID string, d time.Duration) error

	// Remaining returns the time left on the KOL's cooldown, or zero if
	// none is active.
	Remaining(kolID string) time.Duration

	// Active reports whether a non-expired cooldown exists for the KOL.
	Active(kolID string) bool
}
