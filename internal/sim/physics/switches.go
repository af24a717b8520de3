package physics

import (
	"math"

	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics/registry"
)

// schedule arms or refreshes a release timer.
func (e *Engine) schedule(t *registry.Table[Pos, int], table string, p Pos, ticks int) {
	if !t.Put(p, ticks) {
		e.dropped(table, p)
	}
}

// countdown decrements every timer in t and fires the ones that ran out.
// Entries added while firing wait for the next tick.
func (e *Engine) countdown(t *registry.Table[Pos, int], fire func(Pos)) {
	for i := 0; i < t.Len(); i++ {
		_, n := t.At(i)
		t.SetAt(i, n-1)
	}
	for i := 0; i < t.Len(); {
		p, n := t.At(i)
		if n > 0 {
			i++
			continue
		}
		t.RemoveAt(i)
		fire(p)
	}
}

// powerAttached recomputes the dust around the block a switch at sw hangs
// on.
func (e *Engine) powerAttached(sw Pos) {
	if a, ok := e.switchAttach(sw); ok && e.opaque(a) {
		e.powerDustAround(a)
	}
}

// powerPlate recomputes the dust a plate at p reaches: around the block
// below it, next to it, and around opaque blocks beside it.
func (e *Engine) powerPlate(p Pos) {
	if below := p.Add(0, -1, 0); e.opaque(below) {
		e.powerDustAround(below)
	}
	for _, d := range h4 {
		n := p.plus(d)
		if !e.in(n) {
			continue
		}
		nb := e.grid.Block(n.X, n.Y, n.Z)
		if block.IsDust(nb) {
			e.propagatePower(n)
		}
		if e.info.BlocksLight(nb) {
			e.powerDustAround(n)
			e.evalNearbyTorches(n)
		}
	}
}

func (e *Engine) activateSwitch(p Pos, _ block.ID) {
	if a, ok := e.switchAttach(p); !ok || !e.opaque(a) {
		e.set(p, block.Air)
	}
}

func (e *Engine) placeButtonPressed(p Pos, _ block.ID) {
	e.schedule(e.buttons, "button", p, e.tun.Switches.ButtonReleaseTicks)
	e.powerAttached(p)
	e.evalNearbyTorches(p)
}

func (e *Engine) deleteButton(p Pos, b block.ID) {
	e.buttons.Delete(p)
	if b == block.ButtonPressed {
		e.powerAttached(p)
		e.evalNearbyTorches(p)
	}
}

func (e *Engine) releaseButton(p Pos) {
	if e.at(p) != block.ButtonPressed {
		return
	}
	e.set(p, block.Button)
	e.sound(p, CueButtonOff)
	e.powerAttached(p)
	e.evalNearbyTorches(p)
}

func (e *Engine) placeLever(p Pos, _ block.ID) {
	e.powerAttached(p)
	e.evalNearbyTorches(p)
}

func (e *Engine) deleteLever(p Pos, b block.ID) {
	if b == block.LeverOn {
		e.powerAttached(p)
		e.evalNearbyTorches(p)
	}
}

// pollPlates presses every plate an entity stands on and keeps already
// pressed plates from releasing.
func (e *Engine) pollPlates() {
	for _, ent := range e.ents.Entities() {
		p := Pos{
			X: int(math.Floor(ent.Pos.X())),
			Y: int(math.Floor(ent.Pos.Y())),
			Z: int(math.Floor(ent.Pos.Z())),
		}
		if !e.in(p) {
			continue
		}
		switch e.grid.Block(p.X, p.Y, p.Z) {
		case block.Plate:
			e.set(p, block.PlatePressed)
			e.sound(p, CueButtonOn)
			e.powerPlate(p)
			e.evalNearbyTorches(p)
			e.schedule(e.plates, "plate", p, e.tun.Switches.PlateReleaseTicks)
		case block.PlatePressed:
			e.schedule(e.plates, "plate", p, e.tun.Switches.PlateReleaseTicks)
		}
	}
}

func (e *Engine) releasePlate(p Pos) {
	if e.at(p) != block.PlatePressed {
		return
	}
	e.set(p, block.Plate)
	e.sound(p, CueButtonOff)
	e.powerPlate(p)
	e.evalNearbyTorches(p)
}

func (e *Engine) placePlatePressed(p Pos, _ block.ID) {
	e.powerPlate(p)
	e.evalNearbyTorches(p)
}

func (e *Engine) deletePlate(p Pos, b block.ID) {
	e.plates.Delete(p)
	if b == block.PlatePressed {
		e.powerPlate(p)
		e.evalNearbyTorches(p)
	}
}

func (e *Engine) activatePlate(p Pos, _ block.ID) {
	if p.Y > 0 && e.opaque(p.Add(0, -1, 0)) {
		return
	}
	e.plates.Delete(p)
	e.set(p, block.Air)
}
