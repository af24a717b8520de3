package physics

import "cubetick.dev/internal/sim/block"

// Redstone power is recomputed per network: a BFS collects every dust cell
// connected to the start, sources adjacent to the network seed power 15, and
// a bounded relaxation spreads it with a loss of one per hop. Torches react
// to the result through the toggle queue, never synchronously.

func (e *Engine) isAir(p Pos) bool {
	return e.in(p) && e.grid.Block(p.X, p.Y, p.Z) == block.Air
}

func (e *Engine) isDust(p Pos) bool {
	return e.in(p) && block.IsDust(e.grid.Block(p.X, p.Y, p.Z))
}

// mark sets p in the visited bitset and reports whether it was clear.
func (e *Engine) mark(p Pos) bool {
	i := e.pack(p)
	bit := uint64(1) << (i & 63)
	if e.visited[i>>6]&bit != 0 {
		return false
	}
	e.visited[i>>6] |= bit
	e.touched = append(e.touched, i)
	return true
}

func (e *Engine) clearVisited() {
	for _, i := range e.touched {
		e.visited[i>>6] &^= uint64(1) << (i & 63)
	}
	e.touched = e.touched[:0]
}

// torchAttach returns the block a redstone torch of type b at p hangs on.
func (e *Engine) torchAttach(p Pos, b block.ID) (Pos, bool) {
	dx, dy, dz, ok := block.TorchAttachDir(b)
	if !ok {
		return Pos{}, false
	}
	a := p.Add(dx, dy, dz)
	return a, e.in(a)
}

// switchAttach returns the block the button or lever at p hangs on.
func (e *Engine) switchAttach(p Pos) (Pos, bool) {
	var a Pos
	switch e.facings.Facing(p.X, p.Y, p.Z) {
	case 0:
		a = p.Add(0, 0, 1)
	case 1:
		a = p.Add(0, 0, -1)
	case 2:
		a = p.Add(1, 0, 0)
	case 3:
		a = p.Add(-1, 0, 0)
	default:
		return Pos{}, false
	}
	return a, e.in(a)
}

// dustLinks reports whether the dust at d visibly connects through side.
func (e *Engine) dustLinks(d, side Pos) bool {
	s := d.plus(side)
	sb := e.at(s)
	if block.IsDust(sb) || block.IsTorch(sb) {
		return true
	}
	if d.Y > 0 && sb == block.Air && block.IsDust(e.at(s.Add(0, -1, 0))) {
		return true
	}
	return d.Y < e.h-1 && block.IsDust(e.at(s.Add(0, 1, 0))) && e.at(d.Add(0, 1, 0)) == block.Air
}

// dustConnectsToward reports whether the dust at d points at the horizontal
// direction (dirX, dirZ). An isolated dot and a full cross point everywhere,
// a straight line points along its axis, corners and junctions only along
// their connected arms.
func (e *Engine) dustConnectsToward(d Pos, dirX, dirZ int) bool {
	north := e.dustLinks(d, Pos{Z: -1})
	south := e.dustLinks(d, Pos{Z: 1})
	east := e.dustLinks(d, Pos{X: 1})
	west := e.dustLinks(d, Pos{X: -1})

	switch {
	case !north && !south && !east && !west:
		return true
	case north && south && east && west:
		return true
	case (north || south) && !east && !west:
		return dirZ != 0
	case (east || west) && !north && !south:
		return dirX != 0
	}
	switch {
	case dirZ == -1:
		return north
	case dirZ == 1:
		return south
	case dirX == 1:
		return east
	case dirX == -1:
		return west
	}
	return false
}

// torchBelowPowers reports whether a lit torch under b powers it. decided is
// false when there is no lit torch below; a torch hanging on b itself
// decides the answer as false.
func (e *Engine) torchBelowPowers(b Pos) (powered, decided bool) {
	t := b.Add(0, -1, 0)
	tb := e.at(t)
	if !block.IsTorchOn(tb) {
		return false, false
	}
	if a, ok := e.torchAttach(t, tb); ok && a == b {
		return false, true
	}
	return true, true
}

// switchPowers reports whether a pressed button or an on lever hangs on b.
func (e *Engine) switchPowers(b Pos) bool {
	for _, d := range adj6 {
		n := b.plus(d)
		if !block.IsPoweringSwitch(e.at(n)) {
			continue
		}
		if a, ok := e.switchAttach(n); ok && a == b {
			return true
		}
	}
	return false
}

// receivesPower reports whether the block at b is powered at all, weakly by
// lit dust or strongly by a source. It decides torch and door state.
func (e *Engine) receivesPower(b Pos) bool {
	if e.at(b.Add(0, 1, 0)) == block.LitDust {
		return true
	}
	for _, d := range h4 {
		n := b.plus(d)
		if e.at(n) == block.LitDust && e.dustConnectsToward(n, -d.X, -d.Z) {
			return true
		}
	}
	if powered, decided := e.torchBelowPowers(b); decided {
		return powered
	}
	if e.switchPowers(b) {
		return true
	}
	if e.at(b.Add(0, 1, 0)) == block.PlatePressed {
		return true
	}
	for _, d := range h4 {
		if e.at(b.plus(d)) == block.PlatePressed {
			return true
		}
	}
	return false
}

// stronglyPowered reports whether b is powered by a source rather than by
// dust. Only strongly powered blocks feed dust on their other faces.
func (e *Engine) stronglyPowered(b Pos) bool {
	if powered, decided := e.torchBelowPowers(b); decided {
		return powered
	}
	if e.switchPowers(b) {
		return true
	}
	return e.at(b.Add(0, 1, 0)) == block.PlatePressed
}

// propagatePower recomputes the dust network containing start. A torch at
// start re-powers the dust around it instead.
func (e *Engine) propagatePower(start Pos) {
	if e.depth >= e.tun.Redstone.MaxDepth {
		return
	}
	e.depth++
	defer func() { e.depth-- }()

	sb := e.at(start)
	if block.IsTorch(sb) {
		e.powerFromTorch(start, sb)
		return
	}
	if !block.IsDust(sb) || e.visited == nil {
		return
	}
	e.stats.Propagations++

	e.collectDust(start)
	if len(e.dust) == 0 {
		return
	}
	e.seedSources()
	e.relax()
	e.applyPower()
	e.updateNetworkTorches()
}

func (e *Engine) collectDust(start Pos) {
	limit := e.tun.Redstone.MaxNetwork
	e.bfs = append(e.bfs[:0], start)
	e.dust = e.dust[:0]
	e.mark(start)

	for head := 0; head < len(e.bfs); head++ {
		p := e.bfs[head]
		if !block.IsDust(e.at(p)) {
			continue
		}
		if len(e.dust) >= limit {
			break
		}
		e.dust = append(e.dust, p)

		for _, d := range h4 {
			n := p.plus(d)
			if !e.in(n) {
				continue
			}
			nb := e.grid.Block(n.X, n.Y, n.Z)
			if block.IsDust(nb) {
				e.enqueueDust(n, limit)
			} else if nb == block.Air && p.Y > 0 {
				if below := n.Add(0, -1, 0); e.isDust(below) {
					e.enqueueDust(below, limit)
				}
			}
			if e.info.BlocksLight(nb) && p.Y < e.h-1 {
				if above := n.Add(0, 1, 0); e.isDust(above) {
					e.enqueueDust(above, limit)
				}
			}
		}
	}
	e.clearVisited()
}

func (e *Engine) enqueueDust(p Pos, limit int) {
	if len(e.bfs) >= limit || !e.mark(p) {
		return
	}
	e.bfs = append(e.bfs, p)
}

func (e *Engine) seedSources() {
	full := e.tun.Redstone.MaxPower
	e.dustPower = e.dustPower[:0]
	for _, p := range e.dust {
		power := 0
		for _, d := range adj6 {
			n := p.plus(d)
			if !e.in(n) {
				continue
			}
			nb := e.grid.Block(n.X, n.Y, n.Z)
			if block.IsTorchOn(nb) {
				// A torch feeds every face except the one it hangs from.
				dx, dy, dz, _ := block.TorchAttachDir(nb)
				if dx != -d.X || dy != -d.Y || dz != -d.Z {
					power = full
					continue
				}
			}
			switch {
			case e.info.BlocksLight(nb) && e.stronglyPowered(n):
				power = full
			case nb == block.PlatePressed, nb == block.ButtonPressed, nb == block.LeverOn:
				power = full
			}
		}
		e.dustPower = append(e.dustPower, power)
	}
}

// relax spreads power through the network, at most MaxPower passes.
// Networks with long chains fed from several sources can be left short of
// their fixed point; the next change to the network runs it again.
func (e *Engine) relax() {
	clear(e.dustIndex)
	for i, p := range e.dust {
		e.dustIndex[p] = i
	}

	changed := true
	for iter := 0; iter < e.tun.Redstone.MaxPower && changed; iter++ {
		changed = false
		for i, p := range e.dust {
			power := e.dustPower[i]
			if power <= 1 {
				continue
			}
			for _, d := range adj6 {
				if e.raise(p.plus(d), power) {
					changed = true
				}
			}
			// Pour-over links across a one block step.
			open := e.isAir(p.Add(0, 1, 0))
			for _, d := range h4 {
				side := p.plus(d)
				if e.isAir(side) && e.raise(side.Add(0, -1, 0), power) {
					changed = true
				}
				if open && e.raise(side.Add(0, 1, 0), power) {
					changed = true
				}
			}
		}
	}
}

func (e *Engine) raise(q Pos, from int) bool {
	j, ok := e.dustIndex[q]
	if !ok || e.dustPower[j] >= from-1 {
		return false
	}
	e.dustPower[j] = from - 1
	return true
}

// applyPower writes the settled levels back as lit or unlit dust. The writes
// are marked quiet so dust handlers do not recompute the same network.
func (e *Engine) applyPower() {
	was := e.propagating
	e.propagating = true
	for i, p := range e.dust {
		if e.dustPower[i] > 0 {
			e.set(p, block.LitDust)
			e.power[p] = e.dustPower[i]
		} else {
			e.set(p, block.Dust)
			delete(e.power, p)
		}
	}
	e.propagating = was
}

func (e *Engine) updateNetworkTorches() {
	limit := e.tun.Redstone.MaxOpaque
	e.opaqueCells = e.opaqueCells[:0]
	for _, p := range e.dust {
		for _, d := range adj6 {
			o := p.plus(d)
			if !e.opaque(o) || !e.mark(o) {
				continue
			}
			if len(e.opaqueCells) < limit {
				e.opaqueCells = append(e.opaqueCells, o)
			}
		}
	}
	e.clearVisited()

	for _, o := range e.opaqueCells {
		e.updateAttachedTorches(o)
	}
}

// updateAttachedTorches schedules a toggle for every torch hanging on o
// whose state disagrees with o's power.
func (e *Engine) updateAttachedTorches(o Pos) {
	powered := e.receivesPower(o)
	for _, d := range adj6 {
		t := o.plus(d)
		tb := e.at(t)
		if !block.IsTorch(tb) {
			continue
		}
		if a, ok := e.torchAttach(t, tb); !ok || a != o {
			continue
		}
		switch {
		case powered && block.IsTorchOn(tb):
			e.scheduleTorch(t, block.TorchOff(tb))
		case !powered && block.IsTorchOff(tb):
			e.scheduleTorch(t, block.TorchOn(tb))
		}
	}
}

func (e *Engine) evalNearbyTorches(c Pos) {
	for _, d := range adj6 {
		if o := c.plus(d); e.opaque(o) {
			e.updateAttachedTorches(o)
		}
	}
}

func (e *Engine) propagateDust(p Pos) {
	if e.isDust(p) {
		e.propagatePower(p)
	}
}

// powerDustAround recomputes every network touching a face of c.
func (e *Engine) powerDustAround(c Pos) {
	for _, d := range adj6 {
		e.propagateDust(c.plus(d))
	}
}

func (e *Engine) activateDust(p Pos, _ block.ID) {
	if p.Y > 0 && e.opaque(p.Add(0, -1, 0)) {
		if !e.quiet() {
			e.propagatePower(p)
		}
		return
	}
	e.set(p, block.Air)
}

func (e *Engine) placeDust(p Pos, _ block.ID) {
	if !e.quiet() {
		e.propagatePower(p)
	}
}

// deleteDust recomputes every network the removed dust may have joined.
func (e *Engine) deleteDust(p Pos, _ block.ID) {
	delete(e.power, p)
	if !e.quiet() {
		for _, d := range h4 {
			e.propagateDust(p.plus(d))
		}
		if p.Y > 0 {
			for _, d := range h4 {
				if n := p.plus(d); e.isAir(n) {
					e.propagateDust(n.Add(0, -1, 0))
				}
			}
		}
		if p.Y < e.h-1 {
			for _, d := range h4 {
				if n := p.plus(d); e.opaque(n) {
					e.propagateDust(n.Add(0, 1, 0))
				}
			}
		}
	}
	e.evalNearbyTorches(p)
}
