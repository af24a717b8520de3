// Package physics advances a block grid by one tick at a time: liquids, falling
// blocks, plants and the redstone circuit subsystem (dust, torches, buttons,
// levers, pressure plates, iron doors and TNT).
package physics

import (
	"math/rand"

	"go.uber.org/zap"

	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics/delayqueue"
	"cubetick.dev/internal/sim/physics/registry"
	"cubetick.dev/internal/sim/tuning"
)

type Options struct {
	Grid     Grid
	Info     BlockInfo
	Lighting Lighting
	Facings  Facings
	Entities Entities
	Trees    TreeGrower
	Sink     EffectSink
	// Paused reports a blocking UI surface; Tick does nothing while it is true.
	Paused func() bool

	Tuning tuning.Tuning
	Logger *zap.Logger
	Seed   int64
}

type Stats struct {
	Ticks         int
	Events        int
	DroppedEvents int
	Propagations  int
	TorchToggles  int
	Burnouts      int
	Detonations   int
	// Dropped counts registrations refused because a table was full.
	Dropped     int
	QueueClears int

	LavaQueued     int
	WaterQueued    int
	TorchesPending int
	ButtonsPending int
	PlatesPending  int
	Doors          int
	TNT            int
	Fuses          int
}

type torchToggle struct {
	target block.ID
	ticks  int
}

type burnout struct {
	count int
	first int
}

// Engine owns all simulation state for one loaded grid. It is not safe for
// concurrent use.
type Engine struct {
	grid    Grid
	info    BlockInfo
	light   Lighting
	facings Facings
	ents    Entities
	trees   TreeGrower
	sink    EffectSink
	paused  func() bool

	tun tuning.Tuning
	log *zap.Logger
	rng *rand.Rand

	on handlers

	enabled bool
	loaded  bool
	w, h, l int
	tick    int

	lava  *delayqueue.Queue[Pos]
	water *delayqueue.Queue[Pos]

	// change events waiting for dispatch
	events   []change
	head     int
	draining bool
	curDepth int
	curQuiet bool

	// redstone working state, reused across propagations
	propagating bool
	depth       int
	visited     []uint64
	touched     []int
	bfs         []Pos
	dust        []Pos
	dustPower   []int
	dustIndex   map[Pos]int
	opaqueCells []Pos
	toggled     []Pos
	chain       []Pos
	power       map[Pos]int

	torches  *registry.Table[Pos, torchToggle]
	burnouts *registry.Table[Pos, burnout]
	buttons  *registry.Table[Pos, int]
	plates   *registry.Table[Pos, int]
	doors    *registry.Table[Pos, struct{}]
	tnt      *registry.Table[Pos, struct{}]
	fuses    *registry.Table[Pos, int]

	stats Stats
}

func New(opts Options) *Engine {
	e := &Engine{
		grid:    opts.Grid,
		info:    opts.Info,
		light:   opts.Lighting,
		facings: opts.Facings,
		ents:    opts.Entities,
		trees:   opts.Trees,
		sink:    opts.Sink,
		paused:  opts.Paused,
		tun:     opts.Tuning,
		log:     opts.Logger,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		enabled: true,
	}
	if e.light == nil {
		e.light = skyLit{}
	}
	if e.facings == nil {
		e.facings = noFacings{}
	}
	if e.ents == nil {
		e.ents = noEntities{}
	}
	if e.sink == nil {
		e.sink = discard{}
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	e.on = newHandlers()

	t := e.tun
	e.lava = delayqueue.New[Pos](t.Liquids.QueueCeiling, func(n int) { e.queueCleared("lava", n) })
	e.water = delayqueue.New[Pos](t.Liquids.QueueCeiling, func(n int) { e.queueCleared("water", n) })
	e.torches = registry.New[Pos, torchToggle](t.Redstone.TorchQueueMax)
	e.burnouts = registry.New[Pos, burnout](t.Redstone.BurnoutMax)
	e.buttons = registry.New[Pos, int](t.Switches.ButtonQueueMax)
	e.plates = registry.New[Pos, int](t.Switches.PlateQueueMax)
	e.doors = registry.New[Pos, struct{}](t.Redstone.IronDoorMax)
	e.tnt = registry.New[Pos, struct{}](t.TNT.TrackMax)
	e.fuses = registry.New[Pos, int](t.TNT.FuseMax)
	e.dustIndex = make(map[Pos]int)
	e.power = make(map[Pos]int)
	return e
}

// Load resets every queue and registry for the grid's current contents and
// registers the iron doors and TNT already present.
func (e *Engine) Load() {
	e.w, e.h, e.l = e.grid.Dims()
	e.lava.Clear()
	e.water.Clear()
	e.events = e.events[:0]
	e.head = 0
	e.curDepth, e.curQuiet = 0, false
	e.propagating = false
	e.depth = 0

	e.torches.Clear()
	e.burnouts.Clear()
	e.buttons.Clear()
	e.plates.Clear()
	e.doors.Clear()
	e.tnt.Clear()
	e.fuses.Clear()
	clear(e.power)

	e.visited = make([]uint64, (e.w*e.h*e.l+63)/64)
	e.touched = e.touched[:0]
	e.loaded = true

	for y := 0; y < e.h; y++ {
		for z := 0; z < e.l; z++ {
			for x := 0; x < e.w; x++ {
				b := e.grid.Block(x, y, z)
				p := Pos{X: x, Y: y, Z: z}
				switch {
				case block.IsIronDoorBottom(b):
					e.registerDoor(p)
				case b == block.TNT:
					e.registerTNT(p)
				}
			}
		}
	}
	e.log.Info("physics loaded",
		zap.Int("width", e.w), zap.Int("height", e.h), zap.Int("length", e.l),
		zap.Int("doors", e.doors.Len()), zap.Int("tnt", e.tnt.Len()))
}

func (e *Engine) Unload() {
	e.loaded = false
	e.lava.Clear()
	e.water.Clear()
	e.visited = nil
	e.events = nil
	e.head = 0
	e.torches.Clear()
	e.burnouts.Clear()
	e.buttons.Clear()
	e.plates.Clear()
	e.doors.Clear()
	e.tnt.Clear()
	e.fuses.Clear()
	clear(e.power)
}

// SetEnabled switches physics on or off and starts from a clean state.
func (e *Engine) SetEnabled(on bool) {
	e.enabled = on
	if e.grid != nil {
		e.Load()
	}
}

func (e *Engine) Enabled() bool  { return e.enabled }
func (e *Engine) TickCount() int { return e.tick }

func (e *Engine) Stats() Stats {
	s := e.stats
	s.LavaQueued = e.lava.Len()
	s.WaterQueued = e.water.Len()
	s.TorchesPending = e.torches.Len()
	s.ButtonsPending = e.buttons.Len()
	s.PlatesPending = e.plates.Len()
	s.Doors = e.doors.Len()
	s.TNT = e.tnt.Len()
	s.Fuses = e.fuses.Len()
	return s
}

// Power returns the settled power level of the dust at (x,y,z), or 0 when
// the cell holds no dust.
func (e *Engine) Power(x, y, z int) int {
	p := Pos{X: x, Y: y, Z: z}
	if !block.IsDust(e.at(p)) {
		return 0
	}
	return e.power[p]
}

func (e *Engine) in(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.Z >= 0 && p.X < e.w && p.Y < e.h && p.Z < e.l
}

func (e *Engine) at(p Pos) block.ID {
	if !e.in(p) {
		return block.Air
	}
	return e.grid.Block(p.X, p.Y, p.Z)
}

func (e *Engine) opaque(p Pos) bool {
	return e.in(p) && e.info.BlocksLight(e.grid.Block(p.X, p.Y, p.Z))
}

func (e *Engine) pack(p Pos) int { return (p.Y*e.l+p.Z)*e.w + p.X }

func (e *Engine) unpack(i int) Pos {
	x := i % e.w
	i /= e.w
	return Pos{X: x, Y: i / e.l, Z: i % e.l}
}

// set writes b into the grid and queues the resulting change event.
func (e *Engine) set(p Pos, b block.ID) {
	if !e.in(p) {
		return
	}
	old := e.grid.Block(p.X, p.Y, p.Z)
	if old == b {
		return
	}
	e.grid.SetBlock(p.X, p.Y, p.Z, b)
	e.enqueue(change{pos: p, old: old, now: b, depth: e.curDepth + 1, quiet: e.curQuiet || e.propagating})
}

func (e *Engine) emit(fx Effect) {
	fx.Tick = e.tick
	e.sink.Emit(fx)
}

func (e *Engine) sound(p Pos, c Cue) {
	e.emit(Effect{Kind: EffectSound, Pos: p, Cue: c})
}

func (e *Engine) queueCleared(name string, dropped int) {
	e.stats.QueueClears++
	e.log.Warn("delay queue cleared", zap.String("queue", name), zap.Int("dropped", dropped))
	e.emit(Effect{Kind: EffectWarning, Message: "too many " + name + " entries, clearing"})
}

func (e *Engine) dropped(table string, p Pos) {
	e.stats.Dropped++
	e.log.Debug("registration dropped", zap.String("table", table),
		zap.Int("x", p.X), zap.Int("y", p.Y), zap.Int("z", p.Z))
}
