// Package physicstest provides in-memory collaborators and a small driver for
// exercising the physics engine through its exported API.
package physicstest

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/physics"
	"cubetick.dev/internal/sim/tuning"
)

// Grid is a dense in-memory block grid. Writes counts SetBlock calls.
type Grid struct {
	W, H, L int
	Cells   []block.ID
	Writes  int
}

func NewGrid(w, h, l int) *Grid {
	return &Grid{W: w, H: h, L: l, Cells: make([]block.ID, w*h*l)}
}

func (g *Grid) Dims() (int, int, int) { return g.W, g.H, g.L }

func (g *Grid) index(x, y, z int) int { return (y*g.L+z)*g.W + x }

func (g *Grid) Block(x, y, z int) block.ID { return g.Cells[g.index(x, y, z)] }

func (g *Grid) SetBlock(x, y, z int, b block.ID) {
	g.Writes++
	g.Cells[g.index(x, y, z)] = b
}

// Fill sets every cell in the box [x0,x1]×[y0,y1]×[z0,z1] without counting
// the writes.
func (g *Grid) Fill(x0, y0, z0, x1, y1, z1 int, b block.ID) {
	for y := y0; y <= y1; y++ {
		for z := z0; z <= z1; z++ {
			for x := x0; x <= x1; x++ {
				g.Cells[g.index(x, y, z)] = b
			}
		}
	}
}

// Sink records every effect the engine emits.
type Sink struct {
	Effects []physics.Effect
}

func (s *Sink) Emit(fx physics.Effect) { s.Effects = append(s.Effects, fx) }

func (s *Sink) Count(k physics.EffectKind) int {
	n := 0
	for _, fx := range s.Effects {
		if fx.Kind == k {
			n++
		}
	}
	return n
}

func (s *Sink) Sounds(c physics.Cue) int {
	n := 0
	for _, fx := range s.Effects {
		if fx.Kind == physics.EffectSound && fx.Cue == c {
			n++
		}
	}
	return n
}

// ForEntity returns the effects of kind k aimed at entity id.
func (s *Sink) ForEntity(k physics.EffectKind, id int) []physics.Effect {
	var out []physics.Effect
	for _, fx := range s.Effects {
		if fx.Kind == k && fx.Entity == id {
			out = append(out, fx)
		}
	}
	return out
}

type Entities struct {
	List []physics.Entity
}

func (e *Entities) Entities() []physics.Entity { return e.List }

// Put adds or moves entity id to (x,y,z).
func (e *Entities) Put(id int, kind physics.EntityKind, x, y, z float64) {
	for i := range e.List {
		if e.List[i].ID == id {
			e.List[i].Pos = mgl64.Vec3{x, y, z}
			return
		}
	}
	e.List = append(e.List, physics.Entity{ID: id, Kind: kind, Pos: mgl64.Vec3{x, y, z}})
}

func (e *Entities) Remove(id int) {
	for i := range e.List {
		if e.List[i].ID == id {
			e.List = append(e.List[:i], e.List[i+1:]...)
			return
		}
	}
}

// Facings maps switch positions to their facing; missing entries face 0.
type Facings map[physics.Pos]int

func (f Facings) Facing(x, y, z int) int { return f[physics.Pos{X: x, Y: y, Z: z}] }

// Tuning returns the stock tuning with random ticks switched off so runs
// are deterministic.
func Tuning() tuning.Tuning {
	t := tuning.Default()
	t.RandomTicksPerChunk = 0
	return t
}

// Harness drives one engine over one grid.
type Harness struct {
	T        *testing.T
	Grid     *Grid
	Sink     *Sink
	Entities *Entities
	Facings  Facings
	Engine   *physics.Engine

	Options physics.Options
}

func NewHarness(t *testing.T, w, h, l int) *Harness {
	t.Helper()
	g := NewGrid(w, h, l)
	hs := &Harness{
		T:        t,
		Grid:     g,
		Sink:     &Sink{},
		Entities: &Entities{},
		Facings:  Facings{},
	}
	hs.Options = physics.Options{
		Grid:     g,
		Info:     catalogs.Default(),
		Facings:  hs.Facings,
		Entities: hs.Entities,
		Sink:     hs.Sink,
		Tuning:   Tuning(),
		Seed:     1,
	}
	return hs
}

// Start builds the engine from Options and loads the grid as it stands.
func (h *Harness) Start() *physics.Engine {
	h.T.Helper()
	h.Engine = physics.New(h.Options)
	h.Engine.Load()
	return h.Engine
}

// Place writes b at (x,y,z) the way a player edit would and lets the engine
// react.
func (h *Harness) Place(x, y, z int, b block.ID) {
	h.T.Helper()
	old := h.Grid.Block(x, y, z)
	h.Grid.SetBlock(x, y, z, b)
	h.Engine.OnBlockChanged(x, y, z, old, b)
}

// Switch places a button or lever at (x,y,z) hanging on the neighbour given
// by facing.
func (h *Harness) Switch(x, y, z, facing int, b block.ID) {
	h.T.Helper()
	h.Facings[physics.Pos{X: x, Y: y, Z: z}] = facing
	h.Place(x, y, z, b)
}

func (h *Harness) Ticks(n int) {
	for i := 0; i < n; i++ {
		h.Engine.Tick()
	}
}

func (h *Harness) Block(x, y, z int) block.ID { return h.Grid.Block(x, y, z) }

// Expect fails the test unless (x,y,z) holds want.
func (h *Harness) Expect(x, y, z int, want block.ID) {
	h.T.Helper()
	if got := h.Grid.Block(x, y, z); got != want {
		h.T.Fatalf("block at (%d,%d,%d) = %s, want %s", x, y, z, block.Name(got), block.Name(want))
	}
}
