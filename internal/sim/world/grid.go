package world

import (
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics"
	"cubetick.dev/internal/sim/world/terrain/store"
)

// recorder passes writes through to the store and remembers which cells
// were written during the current tick, in first-write order, along with
// the block each held when the tick began.
type recorder struct {
	*store.Store

	changed map[physics.Pos]block.ID
	order   []physics.Pos
}

func newRecorder(s *store.Store) *recorder {
	return &recorder{Store: s, changed: map[physics.Pos]block.ID{}}
}

func (r *recorder) SetBlock(x, y, z int, b block.ID) {
	if !r.InBounds(x, y, z) {
		return
	}
	p := physics.Pos{X: x, Y: y, Z: z}
	if _, ok := r.changed[p]; !ok {
		r.changed[p] = r.Store.Block(x, y, z)
		r.order = append(r.order, p)
	}
	r.Store.SetBlock(x, y, z, b)
}

// deltas returns the written cells whose block differs from the start of
// the tick. Cells written and then restored are left out.
func (r *recorder) deltas() []physics.Pos {
	out := make([]physics.Pos, 0, len(r.order))
	for _, p := range r.order {
		if r.Store.Block(p.X, p.Y, p.Z) != r.changed[p] {
			out = append(out, p)
		}
	}
	return out
}

// edit is a host write: bounds checked, returns the replaced block.
func (r *recorder) edit(x, y, z int, b block.ID) (block.ID, error) {
	if !r.InBounds(x, y, z) {
		return block.Air, store.ErrOutOfBounds
	}
	old := r.Block(x, y, z)
	r.SetBlock(x, y, z, b)
	return old, nil
}

func (r *recorder) reset() {
	clear(r.changed)
	r.order = r.order[:0]
}

// facingMap implements physics.Facings over the switches placed through
// edits.
type facingMap map[physics.Pos]int

func (f facingMap) Facing(x, y, z int) int { return f[physics.Pos{X: x, Y: y, Z: z}] }
