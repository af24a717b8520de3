package world

import (
	"sort"

	"cubetick.dev/internal/persistence/snapshot"
	"cubetick.dev/internal/sim/block"
)

// ExportSnapshot captures the grid and host state as of nowTick. It must run
// on the loop goroutine.
func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header:        snapshot.Header{Version: snapshot.Version, WorldID: w.cfg.ID, Tick: nowTick},
		Seed:          w.cfg.Seed,
		TickRate:      w.cfg.TickRateHz,
		Width:         w.cfg.Width,
		Height:        w.cfg.Height,
		Length:        w.cfg.Length,
		SeaLevel:      w.cfg.SeaLevel,
		Paused:        w.paused,
		CatalogDigest: w.cat.DefsDigest,
		TuningDigest:  w.tuningDigest,
		Chunks:        w.store.ExportChunks(),
		Stats: &snapshot.StatsV1{
			Ticks:        w.totals.Ticks,
			TorchToggles: w.totals.TorchToggles,
			Burnouts:     w.totals.Burnouts,
			Detonations:  w.totals.Detonations,
			Dropped:      w.totals.Dropped,
			QueueClears:  w.totals.QueueClears,
		},
	}

	// Only facings of switches still in the grid are worth keeping.
	for p, f := range w.facings {
		b := w.store.Block(p.X, p.Y, p.Z)
		if !block.IsButton(b) && !block.IsLever(b) {
			continue
		}
		snap.Facings = append(snap.Facings, snapshot.FacingV1{Pos: [3]int{p.X, p.Y, p.Z}, Facing: f})
	}
	sort.Slice(snap.Facings, func(i, j int) bool {
		a, b := snap.Facings[i].Pos, snap.Facings[j].Pos
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		if a[2] != b[2] {
			return a[2] < b[2]
		}
		return a[0] < b[0]
	})

	for _, e := range w.ents.list {
		snap.Entities = append(snap.Entities, snapshot.EntityV1{
			ID:      e.ID,
			Kind:    kindName(e.Kind),
			Creeper: e.Creeper,
			HP:      w.ents.hp[e.ID],
			Pos:     [3]float64{e.Pos.X(), e.Pos.Y(), e.Pos.Z()},
		})
	}
	return snap
}
