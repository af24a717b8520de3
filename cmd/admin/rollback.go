package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	persistlog "cubetick.dev/internal/persistence/log"
	"cubetick.dev/internal/persistence/snapshot"
	"cubetick.dev/internal/sim/world"
	"cubetick.dev/internal/sim/world/terrain/store"
)

type rollbackOptions struct {
	snapPath  string
	aabb      string
	sinceTick uint64
	toTick    uint64
	actor     string
	outPath   string
}

type box struct{ min, max [3]int }

func (b box) contains(p [3]int) bool {
	return p[0] >= b.min[0] && p[0] <= b.max[0] &&
		p[1] >= b.min[1] && p[1] <= b.max[1] &&
		p[2] >= b.min[2] && p[2] <= b.max[2]
}

func runRollback(out io.Writer, worldDir string, o rollbackOptions) error {
	path := strings.TrimSpace(o.snapPath)
	if path == "" {
		path = latestSnapshot(worldDir)
	}
	if path == "" {
		return fmt.Errorf("no snapshot in %s; pass --snapshot", worldDir)
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	b, err := parseAABB(o.aabb)
	if err != nil {
		return fmt.Errorf("bad --aabb: %w", err)
	}
	end := o.toTick
	if end == 0 || end > snap.Header.Tick {
		end = snap.Header.Tick
	}

	recs, err := readAudit(filepath.Join(worldDir, "audit"), o.sinceTick, end, b, o.actor)
	if err != nil {
		return fmt.Errorf("read audit: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "no matching audit entries; nothing to roll back")
		return nil
	}
	applied, skipped := applyRollback(&snap, recs)

	dst := strings.TrimSpace(o.outPath)
	if dst == "" {
		dst = filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.rollback.snap.zst", snap.Header.Tick))
	}
	if err := snapshot.WriteSnapshot(dst, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Fprintf(out, "rollback ok: snapshot=%s tick=%d since=%d to=%d entries=%d applied=%d skipped=%d out=%s\n",
		filepath.Base(path), snap.Header.Tick, o.sinceTick, end, len(recs), applied, skipped, dst)
	return nil
}

type auditRec struct {
	seq   int
	entry world.AuditEntry
}

// clientActions are the audited block writes a rollback can undo.
var clientActions = map[string]bool{"SET_BLOCK": true, "SWITCH": true, "PLACE_TORCH": true}

// readAudit returns the client block writes matching the filter, newest
// first so that undoing them in order restores the oldest From.
func readAudit(dir string, since, to uint64, b box, actor string) ([]auditRec, error) {
	segs, err := persistlog.Segments(dir, "audit")
	if err != nil {
		return nil, err
	}
	var out []auditRec
	seq := 0
	for _, p := range segs {
		err := persistlog.ReadLines(p, func(line []byte) error {
			var e world.AuditEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(p), err)
			}
			seq++
			if !clientActions[e.Action] || e.Tick < since || e.Tick > to || !b.contains(e.Pos) {
				return nil
			}
			if actor != "" && e.Actor != actor {
				return nil
			}
			out = append(out, auditRec{seq: seq, entry: e})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].entry.Tick != out[j].entry.Tick {
			return out[i].entry.Tick > out[j].entry.Tick
		}
		return out[i].seq > out[j].seq
	})
	return out, nil
}

func applyRollback(snap *snapshot.SnapshotV1, recs []auditRec) (applied, skipped int) {
	chunks := map[[2]int]*snapshot.ChunkV1{}
	for i := range snap.Chunks {
		ch := &snap.Chunks[i]
		chunks[[2]int{ch.CX, ch.CZ}] = ch
	}
	const n = store.ChunkSize
	for _, r := range recs {
		p := r.entry.Pos
		if p[0] < 0 || p[2] < 0 {
			skipped++
			continue
		}
		ch := chunks[[2]int{p[0] / n, p[2] / n}]
		if ch == nil || p[1] < 0 || p[1] >= ch.Height {
			skipped++
			continue
		}
		ch.Blocks[p[0]%n+(p[2]%n)*n+p[1]*n*n] = r.entry.From
		applied++
	}
	return applied, skipped
}

func parseAABB(s string) (box, error) {
	var b box
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return b, fmt.Errorf("expected x1,y1,z1:x2,y2,z2")
	}
	lo, err := parseVec3(parts[0])
	if err != nil {
		return b, err
	}
	hi, err := parseVec3(parts[1])
	if err != nil {
		return b, err
	}
	for i := 0; i < 3; i++ {
		b.min[i], b.max[i] = min(lo[i], hi[i]), max(lo[i], hi[i])
	}
	return b, nil
}

func parseVec3(s string) ([3]int, error) {
	var v [3]int
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected x,y,z")
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return v, err
		}
		v[i] = n
	}
	return v, nil
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick, best = tick, filepath.Join(dir, name)
		}
	}
	return best
}
