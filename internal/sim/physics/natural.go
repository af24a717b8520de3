package physics

import "cubetick.dev/internal/sim/block"

// fall drops sand or gravel to the lowest cell of the air or liquid column
// directly beneath it.
func (e *Engine) fall(p Pos, b block.ID) {
	found, ok := p, false
	for q := p.Add(0, -1, 0); q.Y >= 0; q = q.Add(0, -1, 0) {
		other := e.grid.Block(q.X, q.Y, q.Z)
		if other != block.Air && !block.IsLiquid(other) {
			break
		}
		found, ok = q, true
	}
	if !ok {
		return
	}
	e.set(found, b)
	e.set(p, block.Air)
}

func (e *Engine) activateLadder(p Pos, _ block.ID) {
	for _, d := range h4 {
		if e.opaque(p.plus(d)) {
			return
		}
	}
	e.set(p, block.Air)
}

func (e *Engine) activateTorch(p Pos, _ block.ID) {
	if e.opaque(p.Add(0, -1, 0)) {
		return
	}
	for _, d := range h4 {
		if e.opaque(p.plus(d)) {
			return
		}
	}
	e.set(p, block.Air)
}

func (e *Engine) placeSlab(p Pos, _ block.ID) {
	if p.Y == 0 {
		return
	}
	below := p.Add(0, -1, 0)
	if e.grid.Block(below.X, below.Y, below.Z) != block.Slab {
		return
	}
	e.set(p, block.Air)
	e.set(below, block.DoubleSlab)
}

func (e *Engine) deleteDoubleChest(p Pos, b block.ID) {
	dx, dz := block.DoubleChestPartner(b)
	q := p.Add(dx, 0, dz)
	if e.in(q) && block.IsDoubleChest(e.grid.Block(q.X, q.Y, q.Z)) {
		e.set(q, block.Chest)
	}
}

func (e *Engine) below(p Pos, fallback block.ID) block.ID {
	if p.Y == 0 {
		return fallback
	}
	return e.grid.Block(p.X, p.Y-1, p.Z)
}

func (e *Engine) lit(p Pos) bool { return e.light.IsLit(p.X, p.Y, p.Z) }

// growSapling keeps a sapling on dirt, grows a tree on lit grass and
// removes it anywhere else.
func (e *Engine) growSapling(p Pos, _ block.ID) {
	below := e.below(p, block.Air)
	if below == block.Dirt {
		return
	}
	e.set(p, block.Air)
	if below != block.Grass || !e.lit(p) {
		return
	}
	height := 5 + e.rng.Intn(3)
	if e.trees == nil || !e.trees.CanGrow(p.X, p.Y, p.Z, height) {
		return
	}
	for _, tb := range e.trees.Grow(p.X, p.Y, p.Z, height) {
		e.set(Pos{X: tb.X, Y: tb.Y, Z: tb.Z}, tb.Block)
	}
}

func (e *Engine) spreadGrass(p Pos, _ block.ID) {
	if e.lit(p) {
		e.set(p, block.Grass)
	}
}

func (e *Engine) smotherGrass(p Pos, _ block.ID) {
	if p.Y+1 >= e.h {
		return
	}
	if e.info.Collide(e.grid.Block(p.X, p.Y+1, p.Z)) == block.CollideSolid {
		e.set(p, block.Dirt)
	}
}

func (e *Engine) checkFlower(p Pos, _ block.ID) {
	if !e.lit(p) {
		e.set(p, block.Air)
		return
	}
	if below := e.below(p, block.Dirt); below != block.Dirt && below != block.Grass {
		e.set(p, block.Air)
	}
}

func (e *Engine) checkMushroom(p Pos, _ block.ID) {
	if e.lit(p) {
		e.set(p, block.Air)
		return
	}
	if below := e.below(p, block.Stone); below != block.Stone && below != block.Cobble {
		e.set(p, block.Air)
	}
}
