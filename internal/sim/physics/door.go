package physics

import "cubetick.dev/internal/sim/block"

func (e *Engine) registerDoor(p Pos) {
	if !e.doors.Put(p, struct{}{}) {
		e.dropped("door", p)
	}
}

func (e *Engine) placeDoor(p Pos, _ block.ID)  { e.registerDoor(p) }
func (e *Engine) deleteDoor(p Pos, _ block.ID) { e.doors.Delete(p) }

// tickDoors opens every registered iron door whose bottom half, or the
// block under it, is powered, and closes the rest.
func (e *Engine) tickDoors() {
	for i := 0; i < e.doors.Len(); i++ {
		p, _ := e.doors.At(i)
		if !e.in(p) {
			continue
		}
		bottom := e.grid.Block(p.X, p.Y, p.Z)
		if !block.IsIronDoorBottom(bottom) {
			continue
		}
		powered := e.receivesPower(p) || p.Y > 0 && e.receivesPower(p.Add(0, -1, 0))
		nb, nt, ok := block.DoorToggle(bottom, powered)
		if !ok {
			continue
		}
		e.set(p, nb)
		if top := p.Add(0, 1, 0); e.in(top) {
			e.set(top, nt)
		}
		e.sound(p, CueDoor)
	}
}
