package world

import (
	"path/filepath"
	"testing"

	"cubetick.dev/internal/persistence/snapshot"
	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/tuning"
)

func TestSnapshot_RoundTripThroughFile(t *testing.T) {
	w := newTestWorld(t)
	c := joinClient(t, w, false)
	w.StepOnce(nil, nil, []EditEnvelope{
		edit(c, 1, protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{5, 1, 4}, Block: block.Name(block.Stone)}),
		edit(c, 2, protocol.EditMsg{Op: protocol.OpSwitch, Pos: [3]int{4, 1, 4}, Block: block.Name(block.Lever), Facing: 2}),
		edit(c, 3, protocol.EditMsg{Op: protocol.OpSpawn, Entity: 4, Kind: "mob", Creeper: true, To: [3]float64{2.5, 1, 2.5}}),
	})

	tick := w.CurrentTick() - 1
	snap := w.ExportSnapshot(tick)
	path := filepath.Join(t.TempDir(), "world.snap.zst")
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	tun := tuning.Default()
	tun.RandomTicksPerChunk = 0
	w2, err := NewFromSnapshot(WorldConfig{}, tun, catalogs.Default(), nil, loaded)
	if err != nil {
		t.Fatalf("NewFromSnapshot: %v", err)
	}
	if w2.ID() != "test" || w2.CurrentTick() != tick+1 {
		t.Fatalf("restored id=%s tick=%d", w2.ID(), w2.CurrentTick())
	}
	if w2.Digest() != w.Digest() {
		t.Fatalf("digest mismatch after restore")
	}
	if w2.store.Block(4, 1, 4) != block.Lever || w2.facings.Facing(4, 1, 4) != 2 {
		t.Fatalf("lever or its facing lost")
	}
	if i := w2.ents.find(4); i < 0 || !w2.ents.list[i].Creeper || w2.ents.hp[4] != 20 {
		t.Fatalf("entity not restored: %+v", w2.ents.list)
	}
}

func TestSnapshot_SinkReceivesPeriodicSnapshots(t *testing.T) {
	w := newTestWorld(t)
	w.cfg.SnapshotEveryTicks = 5
	sink := make(chan snapshot.SnapshotV1, 4)
	w.SetSnapshotSink(sink)

	steps(w, 11)
	if len(sink) != 2 {
		t.Fatalf("snapshots = %d, want 2 (ticks 5 and 10)", len(sink))
	}
	first := <-sink
	if first.Header.Tick != 5 {
		t.Fatalf("first snapshot tick = %d", first.Header.Tick)
	}
	if err := first.Validate(); err != nil {
		t.Fatalf("snapshot invalid: %v", err)
	}
	if first.Stats == nil || first.Stats.Ticks != 6 {
		t.Fatalf("snapshot stats = %+v", first.Stats)
	}
}

func TestSnapshot_RejectsBadShape(t *testing.T) {
	w := newTestWorld(t)
	snap := w.ExportSnapshot(0)
	snap.Chunks = snap.Chunks[:0]
	if _, err := NewFromSnapshot(WorldConfig{}, tuning.Default(), nil, nil, snap); err == nil {
		t.Fatalf("expected error for a snapshot without chunks")
	}
}
