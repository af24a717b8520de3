package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics"
	"cubetick.dev/internal/sim/world/terrain/store"
)

// editError carries a protocol error code back to the acking client.
type editError struct {
	code string
	msg  string
}

func (e *editError) Error() string { return e.code + ": " + e.msg }

func reject(code, format string, args ...any) error {
	return &editError{code: code, msg: fmt.Sprintf(format, args...)}
}

// errorCode maps an edit failure to its protocol code.
func errorCode(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	var ee *editError
	if errors.As(err, &ee) {
		return ee.code, ee.msg
	}
	if errors.Is(err, store.ErrOutOfBounds) {
		return protocol.ErrOutOfBounds, err.Error()
	}
	return protocol.ErrInternal, err.Error()
}

var faces = map[string]physics.Face{
	"":   physics.FacePosY,
	"+Y": physics.FacePosY,
	"-Y": physics.FaceNegY,
	"+X": physics.FacePosX,
	"-X": physics.FaceNegX,
	"+Z": physics.FacePosZ,
	"-Z": physics.FaceNegZ,
}

func gridEdit(op string) bool {
	switch op {
	case protocol.OpSet, protocol.OpTorch, protocol.OpSwitch, protocol.OpFuse, protocol.OpExplode:
		return true
	}
	return false
}

// applyEdit runs one client edit against the grid and engine. Block writes
// go through OnBlockChanged so physics reacts within the same tick.
func (w *World) applyEdit(nowTick uint64, clientID string, e protocol.EditMsg) error {
	if c := w.clients[clientID]; c != nil && c.observeOnly {
		return reject(protocol.ErrBadRequest, "observe-only client")
	}
	if w.paused && gridEdit(e.Op) {
		return reject(protocol.ErrWorldPaused, "world is paused")
	}
	x, y, z := e.Pos[0], e.Pos[1], e.Pos[2]

	switch e.Op {
	case protocol.OpSet:
		b, err := w.lookupBlock(e.Block)
		if err != nil {
			return err
		}
		return w.setBlock(nowTick, clientID, x, y, z, b, "SET_BLOCK")

	case protocol.OpTorch:
		f, ok := faces[e.Face]
		if !ok {
			return reject(protocol.ErrBadRequest, "bad face %q", e.Face)
		}
		if !w.store.InBounds(x, y, z) {
			return store.ErrOutOfBounds
		}
		old := w.store.Block(x, y, z)
		now := w.engine.PlaceTorch(x, y, z, f)
		w.audit(nowTick, clientID, "PLACE_TORCH", x, y, z, old, w.store.Block(x, y, z), block.Name(now))
		return nil

	case protocol.OpSwitch:
		b, err := w.lookupBlock(e.Block)
		if err != nil {
			return err
		}
		if !block.IsButton(b) && !block.IsLever(b) {
			return reject(protocol.ErrBadRequest, "%s is not a button or lever", e.Block)
		}
		if e.Facing < 0 || e.Facing > 3 {
			return reject(protocol.ErrBadRequest, "facing %d out of range", e.Facing)
		}
		if !w.store.InBounds(x, y, z) {
			return store.ErrOutOfBounds
		}
		w.facings[physics.Pos{X: x, Y: y, Z: z}] = e.Facing
		return w.setBlock(nowTick, clientID, x, y, z, b, "SWITCH")

	case protocol.OpFuse:
		if !w.store.InBounds(x, y, z) {
			return store.ErrOutOfBounds
		}
		if w.store.Block(x, y, z) != block.TNT {
			return reject(protocol.ErrBadRequest, "no TNT at %v", e.Pos)
		}
		w.engine.ScheduleFuse(x, y, z)
		return nil

	case protocol.OpExplode:
		if !w.store.InBounds(x, y, z) {
			return store.ErrOutOfBounds
		}
		if e.Power > 0 {
			w.engine.ExplodeRadius(x, y, z, e.Power)
		} else {
			w.engine.Explode(x, y, z)
		}
		w.audit(nowTick, clientID, "EXPLODE", x, y, z, block.Air, block.Air, fmt.Sprintf("power=%d", e.Power))
		return nil

	case protocol.OpPause:
		w.paused = e.On
		w.log.Info("pause toggled", zap.Bool("paused", w.paused), zap.String("client", clientID))
		return nil

	case protocol.OpEnable:
		w.engine.SetEnabled(e.On)
		w.log.Info("physics toggled", zap.Bool("enabled", e.On), zap.String("client", clientID))
		return nil

	case protocol.OpSpawn:
		pos := vec(e.To)
		if !w.inside(pos) {
			return store.ErrOutOfBounds
		}
		ent := physics.Entity{ID: e.Entity, Kind: parseKind(e.Kind), Creeper: e.Creeper, Pos: pos}
		if !w.ents.spawn(ent, w.cfg.EntityHP) {
			return reject(protocol.ErrBadRequest, "entity %d already exists", e.Entity)
		}
		return nil

	case protocol.OpMove:
		pos := vec(e.To)
		if !w.inside(pos) {
			return store.ErrOutOfBounds
		}
		if !w.ents.move(e.Entity, pos) {
			return reject(protocol.ErrNoEntity, "no entity %d", e.Entity)
		}
		return nil

	case protocol.OpDespawn:
		if !w.ents.remove(e.Entity) {
			return reject(protocol.ErrNoEntity, "no entity %d", e.Entity)
		}
		return nil
	}
	return reject(protocol.ErrUnknownOp, "unknown op %q", e.Op)
}

func (w *World) lookupBlock(name string) (block.ID, error) {
	b, ok := block.ByName(name)
	if !ok || !w.cat.Defined(b) {
		return block.Air, reject(protocol.ErrUnknownBlock, "unknown block %q", name)
	}
	return b, nil
}

func (w *World) setBlock(nowTick uint64, actor string, x, y, z int, b block.ID, action string) error {
	old, err := w.grid.edit(x, y, z, b)
	if err != nil {
		return err
	}
	if !block.IsButton(b) && !block.IsLever(b) {
		delete(w.facings, physics.Pos{X: x, Y: y, Z: z})
	}
	w.engine.OnBlockChanged(x, y, z, old, b)
	w.audit(nowTick, actor, action, x, y, z, old, b, "")
	return nil
}

func (w *World) inside(p mgl64.Vec3) bool {
	return p.X() >= 0 && p.Y() >= 0 && p.Z() >= 0 &&
		p.X() < float64(w.cfg.Width) && p.Y() < float64(w.cfg.Height) && p.Z() < float64(w.cfg.Length)
}

func (w *World) audit(nowTick uint64, actor, action string, x, y, z int, from, to block.ID, reason string) {
	if w.auditLogger == nil {
		return
	}
	err := w.auditLogger.WriteAudit(AuditEntry{
		Tick:   nowTick,
		Actor:  actor,
		Action: action,
		Pos:    [3]int{x, y, z},
		From:   uint16(from),
		To:     uint16(to),
		Reason: reason,
	})
	if err != nil {
		w.log.Warn("audit write failed", zap.Error(err))
	}
}
