package log

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"cubetick.dev/internal/sim/world"
)

func readTicks(t *testing.T, path string) []world.TickLogEntry {
	t.Helper()
	var out []world.TickLogEntry
	err := ReadLines(path, func(line []byte) error {
		var e world.TickLogEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadLines(%s): %v", path, err)
	}
	return out
}

func TestJSONLZstdWriter_SegmentsByTick(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "ticks", 2)
	for tick := uint64(0); tick < 5; tick++ {
		if err := w.Write(tick, world.TickLogEntry{Tick: tick, Digest: "d"}); err != nil {
			t.Fatalf("write %d: %v", tick, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	segs, err := Segments(dir, "ticks")
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("segments = %v, want 3", segs)
	}
	if filepath.Base(segs[1]) != "ticks-000000000002.jsonl.zst" {
		t.Fatalf("segment name = %s", filepath.Base(segs[1]))
	}
	var ticks []uint64
	for _, p := range segs {
		for _, e := range readTicks(t, p) {
			ticks = append(ticks, e.Tick)
		}
	}
	if len(ticks) != 5 {
		t.Fatalf("read %d entries, want 5", len(ticks))
	}
	for i, tk := range ticks {
		if tk != uint64(i) {
			t.Fatalf("entry %d has tick %d", i, tk)
		}
	}
}

func TestJSONLZstdWriter_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	for run := 0; run < 2; run++ {
		w := NewJSONLZstdWriter(dir, "ticks", 100)
		if err := w.Write(uint64(run), world.TickLogEntry{Tick: uint64(run)}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	segs, _ := Segments(dir, "ticks")
	if len(segs) != 1 {
		t.Fatalf("segments = %v", segs)
	}
	if got := readTicks(t, segs[0]); len(got) != 2 || got[1].Tick != 1 {
		t.Fatalf("entries = %+v", got)
	}
}

func TestLoggers_WriteWorldStreams(t *testing.T) {
	dir := t.TempDir()
	tl := NewTickLogger(dir)
	al := NewAuditLogger(dir)
	il := NewIncidentLogger(dir)

	if err := tl.WriteTick(world.TickLogEntry{Tick: 3, Changed: 2}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if err := al.WriteAudit(world.AuditEntry{Tick: 3, Actor: "C1", Action: "SET_BLOCK"}); err != nil {
		t.Fatalf("audit: %v", err)
	}
	il.RecordIncident(world.Incident{Tick: 3, Kind: world.IncidentDetonation, Count: 1})
	for _, c := range []interface{ Close() error }{tl, al, il} {
		if err := c.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	if il.Err() != nil {
		t.Fatalf("incident write: %v", il.Err())
	}

	for _, sub := range []string{"ticks", "audit", "incidents"} {
		segs, err := Segments(filepath.Join(dir, sub), sub)
		if err != nil || len(segs) != 1 {
			t.Fatalf("%s segments = %v, %v", sub, segs, err)
		}
	}
	segs, _ := Segments(filepath.Join(dir, "incidents"), "incidents")
	var in world.Incident
	err := ReadLines(segs[0], func(line []byte) error { return json.Unmarshal(line, &in) })
	if err != nil || in.Kind != world.IncidentDetonation {
		t.Fatalf("incident = %+v, %v", in, err)
	}
}
