package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/integrii/flaggy"
	"go.uber.org/zap"

	"cubetick.dev/internal/config"
	persistlog "cubetick.dev/internal/persistence/log"
	"cubetick.dev/internal/persistence/snapshot"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/tuning"
	"cubetick.dev/internal/sim/world"
	"cubetick.dev/internal/transport/ws"
)

var version = "dev"

type options struct {
	configPath string
	addr       string
	worldID    string
	dataDir    string
	snapPath   string
	fresh      bool
	noIndex    bool
}

func main() {
	opts := parseFlags()
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "cubetick: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	opts := options{}
	flaggy.SetName("cubetick")
	flaggy.SetDescription("block-grid physics server")
	flaggy.SetVersion(version)
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&opts.configPath, "c", "config", "Path to cubetick.toml (built-in defaults when empty)")
	flaggy.String(&opts.addr, "a", "addr", "Override server.bind_address")
	flaggy.String(&opts.worldID, "w", "world", "Override world.id")
	flaggy.String(&opts.dataDir, "d", "data", "Override paths.data_dir")
	flaggy.String(&opts.snapPath, "s", "snapshot", "Resume from this snapshot file")
	flaggy.Bool(&opts.fresh, "f", "fresh", "Generate a new world even if snapshots exist")
	flaggy.Bool(&opts.noIndex, "", "no-index", "Disable the sqlite index")
	flaggy.Parse()
	return opts
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.addr != "" {
		cfg.Server.BindAddress = opts.addr
	}
	if opts.worldID != "" {
		cfg.World.ID = opts.worldID
	}
	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	if opts.noIndex {
		cfg.Index.Enabled = false
	}
	return cfg, nil
}

// loadAssets resolves the catalog and tuning paths. Empty paths select the
// built-in tables.
func loadAssets(p config.PathsConfig) (*catalogs.BlockCatalog, tuning.Tuning, error) {
	cat := catalogs.Default()
	tune := tuning.Default()
	var err error
	if p.CatalogDir != "" {
		if cat, err = catalogs.Load(p.CatalogDir); err != nil {
			return nil, tune, fmt.Errorf("load catalogs: %w", err)
		}
	}
	if p.Tuning != "" {
		if tune, err = tuning.Load(p.Tuning); err != nil {
			return nil, tune, fmt.Errorf("load tuning: %w", err)
		}
	}
	return cat, tune, nil
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cat, tune, err := loadAssets(cfg.Paths)
	if err != nil {
		return err
	}

	worldDir := filepath.Join(cfg.Paths.DataDir, "worlds", cfg.World.ID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		return fmt.Errorf("world dir: %w", err)
	}

	w, err := openWorld(cfg, opts, tune, cat, worldDir, log)
	if err != nil {
		return err
	}

	idx, err := openIndex(cfg, worldDir, cat, tune, log)
	if err != nil {
		return err
	}
	if idx != nil {
		defer idx.Close()
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	incidentLog := persistlog.NewIncidentLogger(worldDir)
	defer tickLog.Close()
	defer auditLog.Close()
	defer incidentLog.Close()
	w.SetTickLogger(tickFanout{tickLog, idx})
	w.SetAuditLogger(auditFanout{auditLog, idx})
	w.SetIncidentSink(incidentFanout{incidentLog, idx})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	snapDone := make(chan struct{})
	go func() {
		defer close(snapDone)
		writeSnapshots(ctx, snapCh, worldDir, idx, log)
	}()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("world stopped", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(w, idx))
	mux.HandleFunc("/v1/state", stateHandler(w))
	mux.HandleFunc("/v1/ws", ws.NewServer(w, cfg.Server.ClientQueue, log.Named("ws")).Handler())

	srv := &http.Server{
		Addr:              cfg.Server.BindAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	log.Info("listening", zap.String("addr", cfg.Server.BindAddress), zap.String("world", w.ID()), zap.Uint64("tick", w.CurrentTick()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-worldDone
		return fmt.Errorf("listen: %w", err)
	}

	<-worldDone
	<-snapDone
	if t := w.CurrentTick(); t > 0 {
		path := snapshotPath(worldDir, t-1)
		snap := w.ExportSnapshot(t - 1)
		if err := snapshot.WriteSnapshot(path, snap); err != nil {
			log.Error("final snapshot", zap.Error(err))
		} else {
			idx.RecordSnapshot(path, snap)
			log.Info("final snapshot written", zap.String("path", path), zap.Uint64("tick", t-1))
		}
	}
	return nil
}

func openWorld(cfg *config.Config, opts options, tune tuning.Tuning, cat *catalogs.BlockCatalog, worldDir string, log *zap.Logger) (*world.World, error) {
	path := opts.snapPath
	if path == "" && cfg.World.Resume && !opts.fresh {
		path = latestSnapshot(worldDir)
	}
	if path == "" {
		w, err := world.New(cfg.WorldParams(), tune, cat, log)
		if err != nil {
			return nil, fmt.Errorf("world: %w", err)
		}
		log.Info("generated world", zap.String("world", w.ID()), zap.Int64("seed", cfg.World.Seed))
		return w, nil
	}

	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if snap.Header.WorldID != "" && snap.Header.WorldID != cfg.World.ID {
		return nil, fmt.Errorf("snapshot world id mismatch: config=%s snapshot=%s", cfg.World.ID, snap.Header.WorldID)
	}
	w, err := world.NewFromSnapshot(cfg.WorldParams(), tune, cat, log, snap)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", path, err)
	}
	log.Info("resumed from snapshot", zap.String("path", filepath.Base(path)), zap.Uint64("tick", w.CurrentTick()))
	return w, nil
}
