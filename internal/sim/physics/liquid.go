package physics

import (
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics/delayqueue"
)

// spreadDirs are the five faces a liquid can flow through; liquids never
// climb.
var spreadDirs = [5]Pos{
	{X: -1}, {X: 1},
	{Z: -1}, {Z: 1},
	{Y: -1},
}

func (e *Engine) placeWater(p Pos, _ block.ID) { e.water.Enqueue(p, e.tun.Liquids.WaterDelay) }
func (e *Engine) placeLava(p Pos, _ block.ID)  { e.lava.Enqueue(p, e.tun.Liquids.LavaDelay) }

// tickLiquid works through the entries queued before this tick started;
// entries pushed back or added while it runs wait for the next tick.
func (e *Engine) tickLiquid(q *delayqueue.Queue[Pos], is func(block.ID) bool) {
	n := q.Len()
	for i := 0; i < n; i++ {
		p, ready := q.Check()
		if !ready {
			continue
		}
		b := e.at(p)
		if !is(b) {
			continue
		}
		e.spreadLiquid(p, b)
	}
}

func (e *Engine) spreadLiquid(p Pos, b block.ID) {
	water := block.IsWater(b)
	for _, d := range spreadDirs {
		t := p.plus(d)
		if !e.in(t) {
			continue
		}
		tb := e.grid.Block(t.X, t.Y, t.Z)
		if block.IsLiquid(tb) {
			if water && block.IsLava(tb) || !water && block.IsWater(tb) {
				e.set(t, block.Stone)
			}
			continue
		}
		if e.info.Collide(tb) != block.CollideNone {
			continue
		}
		if water {
			if e.spongeNear(t) {
				continue
			}
			e.water.Enqueue(t, e.tun.Liquids.WaterDelay)
			e.set(t, block.Water)
		} else {
			e.lava.Enqueue(t, e.tun.Liquids.LavaDelay)
			e.set(t, block.Lava)
		}
	}
}

func (e *Engine) spongeNear(p Pos) bool {
	r := e.tun.Liquids.SpongeRange
	x0, x1 := clampRange(p.X, r, e.w)
	y0, y1 := clampRange(p.Y, r, e.h)
	z0, z1 := clampRange(p.Z, r, e.l)
	for y := y0; y <= y1; y++ {
		for z := z0; z <= z1; z++ {
			for x := x0; x <= x1; x++ {
				if e.grid.Block(x, y, z) == block.Sponge {
					return true
				}
			}
		}
	}
	return false
}

// clampRange returns [v-r, v+r] limited to the valid indices of an axis of
// length n.
func clampRange(v, r, n int) (int, int) {
	lo, hi := v-r, v+r
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

func (e *Engine) placeSponge(p Pos, _ block.ID) {
	r := e.tun.Liquids.SpongeRange
	for dy := -r; dy <= r; dy++ {
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				c := p.Add(dx, dy, dz)
				if e.in(c) && block.IsWater(e.grid.Block(c.X, c.Y, c.Z)) {
					e.set(c, block.Air)
				}
			}
		}
	}
}

// deleteSponge wakes the water sitting just outside the area the sponge kept
// dry.
func (e *Engine) deleteSponge(p Pos, _ block.ID) {
	r := e.tun.Liquids.SpongeRange + 1
	for dy := -r; dy <= r; dy++ {
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r && abs(dz) != r {
					continue
				}
				c := p.Add(dx, dy, dz)
				if e.in(c) && block.IsWater(e.grid.Block(c.X, c.Y, c.Z)) {
					e.water.Enqueue(c, 1)
				}
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
