package snapshot

import (
	"errors"
	"path/filepath"
	"testing"
)

func sample() SnapshotV1 {
	blocks := make([]uint16, 16*16*4)
	blocks[5] = 46
	return SnapshotV1{
		Header:   Header{Version: Version, WorldID: "w1", Tick: 1200},
		Seed:     1337,
		TickRate: 20,
		Width:    16,
		Height:   4,
		Length:   16,
		Chunks:   []ChunkV1{{CX: 0, CZ: 0, Height: 4, Blocks: blocks}},
		Facings:  []FacingV1{{Pos: [3]int{1, 1, 2}, Facing: 3}},
		Entities: []EntityV1{{ID: 7, Kind: "mob", Creeper: true, HP: 20, Pos: [3]float64{1.5, 2, 3.5}}},
		Stats:    &StatsV1{Ticks: 1200, Detonations: 2},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap", "1200.snap.zst")
	in := sample()
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Header != in.Header || out.Seed != in.Seed || out.Height != 4 {
		t.Fatalf("header/params mismatch: %+v", out.Header)
	}
	if len(out.Chunks) != 1 || out.Chunks[0].Blocks[5] != 46 {
		t.Fatalf("chunk data lost")
	}
	if len(out.Facings) != 1 || out.Facings[0].Facing != 3 {
		t.Fatalf("facings lost: %+v", out.Facings)
	}
	if len(out.Entities) != 1 || !out.Entities[0].Creeper {
		t.Fatalf("entities lost: %+v", out.Entities)
	}
	if out.Stats == nil || out.Stats.Detonations != 2 {
		t.Fatalf("stats lost: %+v", out.Stats)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h.Tick != 1200 || h.WorldID != "w1" {
		t.Fatalf("header = %+v", h)
	}
}

func TestValidate(t *testing.T) {
	if err := sample().Validate(); err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}

	cases := map[string]func(*SnapshotV1){
		"version":  func(s *SnapshotV1) { s.Header.Version = 99 },
		"dims":     func(s *SnapshotV1) { s.Height = 0 },
		"chunks":   func(s *SnapshotV1) { s.Width = 17 },
		"nochunks": func(s *SnapshotV1) { s.Chunks = nil },
	}
	for name, mutate := range cases {
		s := sample()
		mutate(&s)
		if err := s.Validate(); !errors.Is(err, ErrBadShape) {
			t.Fatalf("%s: err = %v, want ErrBadShape", name, err)
		}
	}
}
