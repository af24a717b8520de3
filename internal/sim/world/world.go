package world

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"cubetick.dev/internal/persistence/snapshot"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/physics"
	"cubetick.dev/internal/sim/tuning"
	genpkg "cubetick.dev/internal/sim/world/terrain/gen"
	"cubetick.dev/internal/sim/world/terrain/store"
)

// World hosts one grid and its physics engine. Everything below is owned by
// the goroutine running Run (or the caller of StepOnce).
type World struct {
	cfg WorldConfig
	tun tuning.Tuning
	cat *catalogs.BlockCatalog
	log *zap.Logger

	tuningDigest string

	tick atomic.Uint64

	store   *store.Store
	grid    *recorder
	engine  *physics.Engine
	facings facingMap
	ents    *entitySet
	fx      effectBuffer
	paused  bool

	clients    map[string]*clientState
	nextClient uint64

	inbox chan EditEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}
	once  sync.Once

	tickLogger   TickLogger
	auditLogger  AuditLogger
	incidents    IncidentSink
	snapshotSink chan<- snapshot.SnapshotV1

	totals Totals
	last   physics.Stats

	metrics atomic.Value // WorldMetrics
}

type effectBuffer []physics.Effect

func (b *effectBuffer) Emit(fx physics.Effect) { *b = append(*b, fx) }

// New builds a world with freshly generated terrain, or a flat one when
// cfg.FlatFloor is set.
func New(cfg WorldConfig, tun tuning.Tuning, cat *catalogs.BlockCatalog, logger *zap.Logger) (*World, error) {
	cfg.applyDefaults()
	if err := tun.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	if cat == nil {
		cat = catalogs.Default()
	}
	st := store.New(cfg.Width, cfg.Height, cfg.Length, cat)
	if cfg.FlatFloor > 0 {
		st.Flatten(cfg.FlatFloor)
	} else {
		st.Generate(genpkg.Params{
			Seed:                        cfg.Seed,
			SeaLevel:                    cfg.SeaLevel,
			Relief:                      cfg.Relief,
			OreClusterProbScalePermille: cfg.OreClusterProbScalePermille,
			SaplingPermille:             cfg.SaplingPermille,
			FlowerPermille:              cfg.FlowerPermille,
		})
	}
	w := newWorld(cfg, tun, cat, logger)
	w.attach(st)
	return w, nil
}

// NewFromSnapshot restores a world saved by ExportSnapshot. The snapshot
// dims and seed override cfg.
func NewFromSnapshot(cfg WorldConfig, tun tuning.Tuning, cat *catalogs.BlockCatalog, logger *zap.Logger, snap snapshot.SnapshotV1) (*World, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if err := tun.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	if cat == nil {
		cat = catalogs.Default()
	}
	cfg.ID = snap.Header.WorldID
	cfg.Seed = snap.Seed
	cfg.Width, cfg.Height, cfg.Length = snap.Width, snap.Height, snap.Length
	cfg.SeaLevel = snap.SeaLevel
	if snap.TickRate > 0 {
		cfg.TickRateHz = snap.TickRate
	}
	cfg.applyDefaults()

	st, err := store.ImportChunks(snap.Width, snap.Height, snap.Length, cat, snap.Chunks)
	if err != nil {
		return nil, fmt.Errorf("import chunks: %w", err)
	}
	w := newWorld(cfg, tun, cat, logger)
	if snap.CatalogDigest != "" && snap.CatalogDigest != cat.DefsDigest {
		w.log.Warn("snapshot catalog digest differs", zap.String("snapshot", snap.CatalogDigest), zap.String("loaded", cat.DefsDigest))
	}
	if snap.TuningDigest != "" && snap.TuningDigest != w.tuningDigest {
		w.log.Warn("snapshot tuning digest differs", zap.String("snapshot", snap.TuningDigest), zap.String("loaded", w.tuningDigest))
	}
	for _, f := range snap.Facings {
		w.facings[physics.Pos{X: f.Pos[0], Y: f.Pos[1], Z: f.Pos[2]}] = f.Facing
	}
	for _, e := range snap.Entities {
		w.ents.spawn(physics.Entity{
			ID:      e.ID,
			Kind:    parseKind(e.Kind),
			Creeper: e.Creeper,
			Pos:     vec(e.Pos),
		}, e.HP)
	}
	if snap.Stats != nil {
		w.totals = Totals{
			Ticks:        snap.Stats.Ticks,
			TorchToggles: snap.Stats.TorchToggles,
			Burnouts:     snap.Stats.Burnouts,
			Detonations:  snap.Stats.Detonations,
			Dropped:      snap.Stats.Dropped,
			QueueClears:  snap.Stats.QueueClears,
		}
	}
	w.paused = snap.Paused
	w.tick.Store(snap.Header.Tick + 1)
	w.attach(st)
	return w, nil
}

func newWorld(cfg WorldConfig, tun tuning.Tuning, cat *catalogs.BlockCatalog, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{
		cfg:          cfg,
		tun:          tun,
		cat:          cat,
		log:          logger.With(zap.String("world", cfg.ID)),
		tuningDigest: tun.Digest(),
		facings:      facingMap{},
		ents:         newEntitySet(),
		clients:      map[string]*clientState{},
		inbox:        make(chan EditEnvelope, 1024),
		join:         make(chan JoinRequest, 64),
		leave:        make(chan string, 64),
		stop:         make(chan struct{}),
	}
}

func (w *World) attach(st *store.Store) {
	w.store = st
	w.grid = newRecorder(st)
	w.engine = physics.New(physics.Options{
		Grid:     w.grid,
		Info:     w.cat,
		Lighting: st,
		Facings:  w.facings,
		Entities: w.ents,
		Trees:    st.Trees(),
		Sink:     &w.fx,
		Paused:   func() bool { return w.paused },
		Tuning:   w.tun,
		Logger:   w.log.Named("physics"),
		Seed:     w.cfg.Seed,
	})
	w.engine.Load()
	w.last = w.engine.Stats()
	w.grid.reset()
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Inbox() chan<- EditEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest   { return w.join }
func (w *World) Leave() chan<- string       { return w.leave }

func (w *World) SetTickLogger(l TickLogger)     { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)   { w.auditLogger = l }
func (w *World) SetIncidentSink(s IncidentSink) { w.incidents = s }

// SetSnapshotSink receives a snapshot every SnapshotEveryTicks ticks. Sends
// never block; a full sink skips that snapshot.
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

// Store exposes the grid for read-only inspection from the loop goroutine
// (tests, scenario runners).
func (w *World) Store() *store.Store { return w.store }

// Engine exposes the physics engine for inspection from the loop goroutine.
func (w *World) Engine() *physics.Engine { return w.engine }

func (w *World) Paused() bool { return w.paused }

// Digest is the grid digest at the current state.
func (w *World) Digest() string { return w.store.Digest() }
