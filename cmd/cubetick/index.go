package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"cubetick.dev/internal/config"
	"cubetick.dev/internal/persistence/indexdb"
	persistlog "cubetick.dev/internal/persistence/log"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/tuning"
	"cubetick.dev/internal/sim/world"
)

// openIndex returns nil when the index is disabled. A nil index is a valid
// no-op sink.
func openIndex(cfg *config.Config, worldDir string, cat *catalogs.BlockCatalog, tune tuning.Tuning, log *zap.Logger) (*indexdb.SQLiteIndex, error) {
	if !cfg.Index.Enabled {
		log.Info("index disabled")
		return nil, nil
	}
	path := cfg.Index.SQLitePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(worldDir, path)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	if err := idx.UpsertCatalogs(cat, tune); err != nil {
		log.Warn("index: upsert catalogs", zap.Error(err))
	}
	log.Info("index opened", zap.String("path", path), zap.String("session", idx.SessionID()))
	return idx, nil
}

// The JSONL streams are authoritative; the index is best effort.

type tickFanout struct {
	log *persistlog.TickLogger
	idx *indexdb.SQLiteIndex
}

func (f tickFanout) WriteTick(e world.TickLogEntry) error {
	_ = f.idx.WriteTick(e)
	return f.log.WriteTick(e)
}

type auditFanout struct {
	log *persistlog.AuditLogger
	idx *indexdb.SQLiteIndex
}

func (f auditFanout) WriteAudit(e world.AuditEntry) error {
	_ = f.idx.WriteAudit(e)
	return f.log.WriteAudit(e)
}

type incidentFanout struct {
	log *persistlog.IncidentLogger
	idx *indexdb.SQLiteIndex
}

func (f incidentFanout) RecordIncident(in world.Incident) {
	f.idx.RecordIncident(in)
	f.log.RecordIncident(in)
}
