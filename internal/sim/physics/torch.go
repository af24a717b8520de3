package physics

import (
	"go.uber.org/zap"

	"cubetick.dev/internal/sim/block"
)

// Face is the face of the block a torch was placed against.
type Face uint8

const (
	FaceNegX Face = iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
)

// TorchForFace returns the lit redstone torch variant for a torch placed
// against face. The variant encodes which neighbour the torch hangs on.
func TorchForFace(f Face) block.ID {
	switch f {
	case FacePosY:
		return block.RedTorch
	case FaceNegY:
		return block.RedTorchFree
	case FacePosZ:
		return block.RedTorchOnN
	case FaceNegZ:
		return block.RedTorchOnS
	case FacePosX:
		return block.RedTorchOnW
	case FaceNegX:
		return block.RedTorchOnE
	}
	return block.RedTorch
}

// PlaceTorch puts a redstone torch at (x,y,z) facing away from the clicked
// face and runs the resulting physics. It returns the variant written.
func (e *Engine) PlaceTorch(x, y, z int, face Face) block.ID {
	b := TorchForFace(face)
	p := Pos{X: x, Y: y, Z: z}
	if !e.loaded || !e.in(p) {
		return b
	}
	old := e.grid.Block(x, y, z)
	e.grid.SetBlock(x, y, z, b)
	e.OnBlockChanged(x, y, z, old, b)
	return b
}

func (e *Engine) scheduleTorch(p Pos, target block.ID) {
	if !e.torches.Put(p, torchToggle{target: target, ticks: e.tun.Redstone.TorchDelay}) {
		e.dropped("torch", p)
	}
}

func (e *Engine) tickTorches() {
	for i := 0; i < e.torches.Len(); i++ {
		_, tt := e.torches.At(i)
		tt.ticks--
		e.torches.SetAt(i, tt)
	}

	limit := e.tun.Redstone.TorchQueueMax
	e.toggled = e.toggled[:0]
	for i := 0; i < e.torches.Len(); {
		p, tt := e.torches.At(i)
		if tt.ticks > 0 {
			i++
			continue
		}
		if cur := e.at(p); block.IsTorch(cur) {
			if e.checkBurnout(p) {
				if block.IsTorchOn(cur) {
					e.set(p, block.TorchOff(cur))
					e.stats.Burnouts++
					e.log.Info("torch burned out",
						zap.Int("x", p.X), zap.Int("y", p.Y), zap.Int("z", p.Z), zap.Int("tick", e.tick))
				}
			} else {
				e.applyTorchToggle(p, tt.target)
			}
			if len(e.toggled) < limit {
				e.toggled = append(e.toggled, p)
			}
		}
		e.torches.RemoveAt(i)
	}

	// Torches evaluated while neighbouring toggles were half applied get a
	// second look now that every toggle of this tick is in place.
	for _, p := range e.toggled {
		e.evalNearbyTorches(p)
	}
	for _, p := range e.toggled {
		e.propagateTorchPower(p)
	}
}

func (e *Engine) applyTorchToggle(p Pos, target block.ID) {
	e.set(p, target)
	e.stats.TorchToggles++
	e.propagateTorchPower(p)
	e.evalNearbyTorches(p)
}

// checkBurnout counts a toggle of the torch at p and reports whether it has
// toggled too often inside the burnout window.
func (e *Engine) checkBurnout(p Pos) bool {
	r := e.tun.Redstone
	if b, ok := e.burnouts.Get(p); ok {
		if e.tick-b.first > r.BurnoutWindow {
			e.burnouts.Put(p, burnout{count: 1, first: e.tick})
			return false
		}
		b.count++
		e.burnouts.Put(p, b)
		return b.count >= r.BurnoutThreshold
	}
	if !e.burnouts.Put(p, burnout{count: 1, first: e.tick}) {
		e.dropped("burnout", p)
	}
	return false
}

func (e *Engine) propagateTorchPower(p Pos) { e.powerFromTorch(p, e.at(p)) }

// powerFromTorch recomputes the dust a torch of type b at p feeds: its five
// free faces, and every face of an opaque block above it.
func (e *Engine) powerFromTorch(p Pos, b block.ID) {
	dx, dy, dz, ok := block.TorchAttachDir(b)
	if !ok {
		return
	}
	for _, d := range adj6 {
		if d.X == dx && d.Y == dy && d.Z == dz {
			continue
		}
		e.propagateDust(p.plus(d))
	}
	if above := p.Add(0, 1, 0); e.opaque(above) {
		e.powerDustAround(above)
	}
}

// placeRedTorch places a lit torch unlit when the block it hangs on is
// already powered.
func (e *Engine) placeRedTorch(p Pos, b block.ID) {
	if block.IsTorchOn(b) {
		if a, ok := e.torchAttach(p, b); ok {
			// Hide the torch so it cannot count as the power source.
			e.grid.SetBlock(p.X, p.Y, p.Z, block.Air)
			if e.receivesPower(a) {
				e.set(p, block.TorchOff(b))
				return
			}
			e.grid.SetBlock(p.X, p.Y, p.Z, b)
		}
	}
	e.propagateTorchPower(p)
}

func (e *Engine) deleteRedTorch(p Pos, b block.ID) {
	e.burnouts.Delete(p)
	e.powerFromTorch(p, b)
	e.evalNearbyTorches(p)
}

func (e *Engine) activateRedTorch(p Pos, b block.ID) {
	a, ok := e.torchAttach(p, b)
	if !ok || !e.opaque(a) {
		e.set(p, block.Air)
		return
	}
	powered := e.receivesPower(a)
	switch {
	case powered && block.IsTorchOn(b):
		e.scheduleTorch(p, block.TorchOff(b))
	case !powered && block.IsTorchOff(b):
		e.scheduleTorch(p, block.TorchOn(b))
	}
}
