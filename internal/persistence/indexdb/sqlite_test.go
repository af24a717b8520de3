package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"cubetick.dev/internal/persistence/snapshot"
	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/tuning"
	"cubetick.dev/internal/sim/world"
)

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestSQLiteIndex_WritesAllStreams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "world.sqlite")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.SessionID() == "" {
		t.Fatalf("empty session id")
	}
	if err := s.UpsertCatalogs(catalogs.Default(), tuning.Default()); err != nil {
		t.Fatalf("upsert catalogs: %v", err)
	}

	_ = s.WriteTick(world.TickLogEntry{
		Tick:   1,
		Joins:  []string{"C1"},
		Digest: "d1",
		Edits: []world.RecordedEdit{
			{ClientID: "C1", Edit: protocol.EditMsg{Op: protocol.OpSet, Seq: 1}},
			{ClientID: "C1", Edit: protocol.EditMsg{Op: protocol.OpFuse, Seq: 2}, Code: protocol.ErrBadRequest},
		},
		Changed: 1,
	})
	_ = s.WriteTick(world.TickLogEntry{Tick: 2, Digest: "d2", Paused: true})
	_ = s.WriteAudit(world.AuditEntry{Tick: 1, Actor: "C1", Action: "SET_BLOCK", Pos: [3]int{1, 2, 3}, To: 1})
	_ = s.WriteAudit(world.AuditEntry{Tick: 1, Actor: "C1", Action: "EXPLODE", Pos: [3]int{4, 5, 6}})
	s.RecordIncident(world.Incident{Tick: 2, Kind: world.IncidentDetonation, Count: 2})
	s.RecordSnapshot("/data/snap/2.snap.zst", snapshot.SnapshotV1{
		Header:   snapshot.Header{Version: snapshot.Version, Tick: 2},
		Width:    16,
		Height:   8,
		Length:   16,
		Chunks:   make([]snapshot.ChunkV1, 1),
		Entities: make([]snapshot.EntityV1, 3),
	})
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if st := s.Stats(); st.DropTickTotal+st.DropAuditTotal+st.DropIncidentTotal+st.DropSnapshotTotal != 0 {
		t.Fatalf("unexpected drops: %+v", st)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	if n := count(t, db, `SELECT COUNT(*) FROM ticks`); n != 2 {
		t.Fatalf("ticks = %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM ticks WHERE paused=1`); n != 1 {
		t.Fatalf("paused ticks = %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM edits WHERE code=?`, protocol.ErrBadRequest); n != 1 {
		t.Fatalf("rejected edits = %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM audits WHERE tick=1`); n != 2 {
		t.Fatalf("audits = %d", n)
	}
	if n := count(t, db, `SELECT total FROM incidents WHERE kind=?`, world.IncidentDetonation); n != 2 {
		t.Fatalf("detonation count = %d", n)
	}
	if n := count(t, db, `SELECT entities FROM snapshots WHERE tick=2`); n != 3 {
		t.Fatalf("snapshot entities = %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM catalogs`); n != 3 {
		t.Fatalf("catalog rows = %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM sessions WHERE id=?`, s.SessionID()); n != 1 {
		t.Fatalf("session rows = %d", n)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	_ = s.WriteAudit(world.AuditEntry{Tick: 2})
	s.RecordIncident(world.Incident{Tick: 2, Kind: world.IncidentBurnout, Count: 1})
	s.RecordSnapshot("/tmp/2.snap.zst", snapshot.SnapshotV1{})

	st := s.Stats()
	if st.DropTickTotal != 1 || st.DropAuditTotal != 1 || st.DropIncidentTotal != 1 || st.DropSnapshotTotal != 1 {
		t.Fatalf("drop counters = %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_NilIsNoop(t *testing.T) {
	var s *SQLiteIndex
	if err := s.WriteTick(world.TickLogEntry{}); err != nil {
		t.Fatalf("nil WriteTick: %v", err)
	}
	s.RecordIncident(world.Incident{})
	if s.Stats() != (Stats{}) || s.SessionID() != "" {
		t.Fatalf("nil index reported state")
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
