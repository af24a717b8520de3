package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"cubetick.dev/internal/sim/block"
)

func (e *Engine) registerTNT(p Pos) {
	if !e.tnt.Put(p, struct{}{}) {
		e.dropped("tnt", p)
	}
}

func (e *Engine) placeTNT(p Pos, _ block.ID)  { e.registerTNT(p) }
func (e *Engine) deleteTNT(p Pos, _ block.ID) { e.tnt.Delete(p) }

// ScheduleFuse lights the TNT at (x,y,z). It explodes after the fuse runs
// out whether or not the block is still there. Lighting a lit fuse, or
// lighting one while physics is disabled, does nothing.
func (e *Engine) ScheduleFuse(x, y, z int) {
	if !e.enabled || !e.loaded {
		return
	}
	if e.scheduleFuse(Pos{X: x, Y: y, Z: z}, e.tun.TNT.FuseTicks) {
		e.sound(Pos{X: x, Y: y, Z: z}, CueFuse)
	}
}

// Explode detonates a TNT-sized blast at (x,y,z) at once.
func (e *Engine) Explode(x, y, z int) {
	if !e.enabled || !e.loaded {
		return
	}
	e.explode(Pos{X: x, Y: y, Z: z})
	e.drain()
}

// ExplodeRadius breaks a sphere of the given radius around (x,y,z) without
// the detonation sound.
func (e *Engine) ExplodeRadius(x, y, z, power int) {
	if !e.enabled || !e.loaded {
		return
	}
	e.explodeRadius(Pos{X: x, Y: y, Z: z}, power)
	e.drain()
}

func (e *Engine) scheduleFuse(p Pos, ticks int) bool {
	if e.fuses.Has(p) {
		return false
	}
	if !e.fuses.Put(p, ticks) {
		e.dropped("fuse", p)
		return false
	}
	return true
}

// tickTNT detonates every tracked TNT block that is powered directly or
// sits next to a strongly powered block.
func (e *Engine) tickTNT() {
	for i := 0; i < e.tnt.Len(); {
		p, _ := e.tnt.At(i)
		if e.at(p) != block.TNT {
			e.tnt.RemoveAt(i)
			continue
		}
		if e.receivesPower(p) || e.nextToStrongPower(p) {
			e.tnt.RemoveAt(i)
			e.explode(p)
			continue
		}
		i++
	}
}

func (e *Engine) nextToStrongPower(p Pos) bool {
	for _, d := range adj6 {
		if n := p.plus(d); e.in(n) && e.stronglyPowered(n) {
			return true
		}
	}
	return false
}

func (e *Engine) explode(p Pos) {
	e.sound(p, CueExplode)
	e.explodeRadius(p, e.tun.TNT.Power)
	e.stats.Detonations++
}

// resists reports whether b survives a blast: liquids and solid stone or
// metal blocks.
func (e *Engine) resists(b block.ID) bool {
	if block.IsLiquid(b) {
		return true
	}
	if e.info.Collide(b) != block.CollideSolid {
		return false
	}
	s := e.info.Sound(b)
	return s == block.SoundStone || s == block.SoundMetal
}

func (e *Engine) explodeRadius(c Pos, power int) {
	center := mgl64.Vec3{float64(c.X) + 0.5, float64(c.Y) + 0.5, float64(c.Z) + 0.5}
	e.emit(Effect{Kind: EffectParticles, Pos: c, At: center, Amount: power})
	e.set(c, block.Air)

	e.chain = e.chain[:0]
	limit := e.tun.TNT.ChainMax
	r2 := power * power
	for dy := -power; dy <= power; dy++ {
		for dz := -power; dz <= power; dz++ {
			for dx := -power; dx <= power; dx++ {
				if dx*dx+dy*dy+dz*dz > r2 {
					continue
				}
				q := c.Add(dx, dy, dz)
				if !e.in(q) {
					continue
				}
				b := e.grid.Block(q.X, q.Y, q.Z)
				if e.resists(b) {
					continue
				}
				// Chained TNT keeps its block; its own blast removes it.
				if b == block.TNT && len(e.chain) < limit {
					e.chain = append(e.chain, q)
					continue
				}
				e.set(q, block.Air)
			}
		}
	}
	for _, q := range e.chain {
		e.scheduleFuse(q, e.tun.TNT.ChainFuseTicks)
	}
	e.blastEntities(center, power)
}

// blastEntities damages mobs and pushes mobs and players away from center,
// scaled by how close they are.
func (e *Engine) blastEntities(center mgl64.Vec3, power int) {
	maxDistSq := float64(power*power + 4)
	reach := math.Sqrt(maxDistSq) + 0.01
	for _, ent := range e.ents.Entities() {
		off := ent.Pos.Sub(center)
		distSq := off.Dot(off)
		if distSq > maxDistSq {
			continue
		}
		dist := max(math.Sqrt(distSq), 0.5)
		s := max(0, 1-dist/reach)
		dir := off.Mul(1 / dist)

		switch ent.Kind {
		case EntityMob:
			e.emit(Effect{Kind: EffectDamage, Entity: ent.ID, At: ent.Pos, Amount: 5 + int(15*s)})
			if ent.Creeper {
				e.emit(Effect{Kind: EffectCreeperChain, Entity: ent.ID, At: ent.Pos})
			}
			push := 1.5*s + 0.3
			e.emit(Effect{Kind: EffectKnockback, Entity: ent.ID, At: ent.Pos,
				Velocity: mgl64.Vec3{dir.X() * push, 0.6*s + 0.2, dir.Z() * push}})
		case EntityPlayer:
			push := 2*s + 0.5
			e.emit(Effect{Kind: EffectKnockback, Entity: ent.ID, At: ent.Pos,
				Velocity: mgl64.Vec3{dir.X() * push, 1.2*s + 0.4, dir.Z() * push}})
		}
	}
}
