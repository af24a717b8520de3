package physics

import "cubetick.dev/internal/sim/block"

// Tick advances the simulation by one step. Every phase runs to completion,
// including the block changes it causes, before the next one starts.
func (e *Engine) Tick() {
	if !e.enabled || !e.loaded {
		return
	}
	if e.paused != nil && e.paused() {
		return
	}

	phases := [...]func(){
		func() { e.tickLiquid(e.lava, block.IsLava) },
		func() { e.tickLiquid(e.water, block.IsWater) },
		e.tickTorches,
		func() { e.countdown(e.buttons, e.releaseButton) },
		e.pollPlates,
		func() { e.countdown(e.plates, e.releasePlate) },
		e.tickDoors,
		e.tickTNT,
		func() { e.countdown(e.fuses, e.explode) },
	}
	for _, run := range phases {
		run()
		e.drain()
	}

	e.tick++
	e.stats.Ticks++
	e.randomTicks()
	e.drain()
}

// randomTicks gives a few random cells of every chunk a chance to run their
// random-tick behaviour.
func (e *Engine) randomTicks() {
	n := e.tun.RandomTicksPerChunk
	if n <= 0 {
		return
	}
	cs := e.tun.ChunkSize
	for y := 0; y < e.h; y += cs {
		y2 := min(y+cs-1, e.h-1)
		for z := 0; z < e.l; z += cs {
			z2 := min(z+cs-1, e.l-1)
			for x := 0; x < e.w; x += cs {
				x2 := min(x+cs-1, e.w-1)
				lo := e.pack(Pos{X: x, Y: y, Z: z})
				hi := e.pack(Pos{X: x2, Y: y2, Z: z2})
				for i := 0; i < n; i++ {
					idx := lo
					if hi > lo {
						idx += e.rng.Intn(hi - lo)
					}
					p := e.unpack(idx)
					b := e.grid.Block(p.X, p.Y, p.Z)
					if h := e.on.random[b]; h != nil {
						h(e, p, b)
					}
				}
			}
		}
	}
}
