package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cubetick.dev/internal/persistence/indexdb"
	"cubetick.dev/internal/persistence/snapshot"
)

func snapshotPath(worldDir string, tick uint64) string {
	return filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.snap.zst", tick))
}

// writeSnapshots persists snapshots handed over by the world loop until ctx
// ends, then drains what is already queued.
func writeSnapshots(ctx context.Context, ch <-chan snapshot.SnapshotV1, worldDir string, idx *indexdb.SQLiteIndex, log *zap.Logger) {
	write := func(snap snapshot.SnapshotV1) {
		path := snapshotPath(worldDir, snap.Header.Tick)
		if err := snapshot.WriteSnapshot(path, snap); err != nil {
			log.Error("snapshot write", zap.String("path", path), zap.Error(err))
			return
		}
		idx.RecordSnapshot(path, snap)
		log.Debug("snapshot written", zap.String("path", path), zap.Uint64("tick", snap.Header.Tick))
	}
	for {
		select {
		case snap := <-ch:
			write(snap)
		case <-ctx.Done():
			for {
				select {
				case snap := <-ch:
					write(snap)
				default:
					return
				}
			}
		}
	}
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
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}
