package service

import (
	"sync"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

// SnapshotStore holds the displayed tally state for each KOL. Exactly two
// paths write to it — the vote procedure's direct response and the realtime
// change stream — and both go through Apply, which replaces the record
// wholesale. The last snapshot to arrive wins regardless of source; the
// payloads carry no sequence number, so an older snapshot arriving late
// does overwrite a newer one. That matches the upstream behavior and is
// covered by tests as-is.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]model.KOLSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]model.KOLSnapshot)}
}

// Apply overwrites the stored state for the snapshot's KOL unconditionally.
func (s *SnapshotStore) Apply(snap model.KOLSnapshot) {
	s.mu.Lock()
	s.snapshots[snap.KOLID] = snap
	s.mu.Unlock()
}

// Get returns the latest applied snapshot for a KOL, if any.
func (s *SnapshotStore) Get(kolID string) (model.KOLSnapshot, bool) {
	s.mu.RLock()
	snap, ok := s.snapshots[kolID]
	s.mu.RUnlock()
	return snap, ok
}

// Overlay replaces the KOL's tally fields with the latest snapshot when one
// has been applied since the row was read from the database.
func (s *SnapshotStore) Overlay(k *model.KOL) {
	snap, ok := s.Get(k.ID)
	if !ok {
		return
	}
	k.Upvotes = snap.Upvotes
	k.Downvotes = snap.Downvotes
	k.Rating = snap.Rating
	k.TotalVotes = snap.TotalVotes
}
