package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

// SnapshotSink receives authoritative tally overwrites. Satisfied by
// service.SnapshotStore.
type SnapshotSink interface {
	Apply(model.KOLSnapshot)
}

// CacheInvalidator drops cached reads superseded by a change event.
// Satisfied by service.CacheService.
type CacheInvalidator interface {
	InvalidateKOL(ctx context.Context, kolID string) error
	InvalidateLeaderboards(ctx context.Context) error
	InvalidateBounties(ctx context.Context) error
}

// kolRow is the subset of a kols table row carried by a change event.
type kolRow struct {
	ID         string  `json:"id"`
	Upvotes    int     `json:"upvotes"`
	Downvotes  int     `json:"downvotes"`
	Rating     float64 `json:"rating"`
	TotalVotes int     `json:"total_votes"`
}

type commentRow struct {
	KOLID string `json:"kol_id"`
}

// Dispatcher routes decoded change events to local state. KOL updates
// overwrite the snapshot store unconditionally, in arrival order — the
// same last-write-wins rule as the direct vote response path. Comment
// inserts trigger the registered refetch hook; bounty changes invalidate
// the bounty cache.
type Dispatcher struct {
	snapshots SnapshotSink
	cache     CacheInvalidator

	// OnCommentChange, when set, is invoked with the KOL id whose comment
	// set changed, so interested consumers can refetch threads.
	OnCommentChange func(kolID string)

	// OnKOLChange, when set, is invoked after a KOL snapshot is applied.
	OnKOLChange func(snap model.KOLSnapshot)
}

func NewDispatcher(snapshots SnapshotSink, cache CacheInvalidator) *Dispatcher {
	return &Dispatcher{snapshots: snapshots, cache: cache}
}

// Handle processes one change event. Unknown tables are ignored.
func (d *Dispatcher) Handle(ev Event) {
	switch ev.Table {
	case "kols":
		d.handleKOL(ev)
	case "kol_comments":
		d.handleComment(ev)
	case "bounties":
		d.handleBounty(ev)
	}
}

func (d *Dispatcher) handleKOL(ev Event) {
	if ev.Type != "UPDATE" && ev.Type != "INSERT" {
		return
	}
	var row kolRow
	if err := json.Unmarshal(ev.Record, &row); err != nil || row.ID == "" {
		log.Printf("realtime: bad kols record: %v", err)
		return
	}

	snap := model.KOLSnapshot{
		KOLID:      row.ID,
		Upvotes:    row.Upvotes,
		Downvotes:  row.Downvotes,
		Rating:     row.Rating,
		TotalVotes: row.TotalVotes,
	}
	d.snapshots.Apply(snap)

	if d.cache != nil {
		ctx := context.Background()
		if err := d.cache.InvalidateKOL(ctx, row.ID); err != nil {
			log.Printf("realtime: invalidate kol error: %v", err)
		}
		if err := d.cache.InvalidateLeaderboards(ctx); err != nil {
			log.Printf("realtime: invalidate leaderboards error: %v", err)
		}
	}
	if d.OnKOLChange != nil {
		d.OnKOLChange(snap)
	}
}

func (d *Dispatcher) handleComment(ev Event) {
	if ev.Type != "INSERT" {
		return
	}
	var row commentRow
	if err := json.Unmarshal(ev.Record, &row); err != nil || row.KOLID == "" {
		log.Printf("realtime: bad kol_comments record: %v", err)
		return
	}
	if d.OnCommentChange != nil {
		d.OnCommentChange(row.KOLID)
	}
}

func (d *Dispatcher) handleBounty(ev Event) {
	if d.cache == nil {
		return
	}
	if err := d.cache.InvalidateBounties(context.Background()); err != nil {
		log.Printf("realtime: invalidate bounties error: %v", err)
	}
}
