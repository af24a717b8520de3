package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/physics"
)

// entitySet is the host's list of mobs and players. Physics only reads
// positions; damage and knockback come back as effects and are applied here.
type entitySet struct {
	list []physics.Entity
	hp   map[int]int
}

func newEntitySet() *entitySet {
	return &entitySet{hp: map[int]int{}}
}

func (s *entitySet) Entities() []physics.Entity { return s.list }

func (s *entitySet) find(id int) int {
	for i := range s.list {
		if s.list[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *entitySet) spawn(e physics.Entity, hp int) bool {
	if s.find(e.ID) >= 0 {
		return false
	}
	s.list = append(s.list, e)
	s.hp[e.ID] = hp
	return true
}

func (s *entitySet) move(id int, pos mgl64.Vec3) bool {
	i := s.find(id)
	if i < 0 {
		return false
	}
	s.list[i].Pos = pos
	return true
}

func (s *entitySet) remove(id int) bool {
	i := s.find(id)
	if i < 0 {
		return false
	}
	s.list = append(s.list[:i], s.list[i+1:]...)
	delete(s.hp, id)
	return true
}

func kindName(k physics.EntityKind) string {
	if k == physics.EntityPlayer {
		return "player"
	}
	return "mob"
}

func parseKind(s string) physics.EntityKind {
	if s == "player" {
		return physics.EntityPlayer
	}
	return physics.EntityMob
}

func (s *entitySet) messages() []protocol.EntityMsg {
	out := make([]protocol.EntityMsg, 0, len(s.list))
	for _, e := range s.list {
		out = append(out, protocol.EntityMsg{
			ID:      e.ID,
			Kind:    kindName(e.Kind),
			Creeper: e.Creeper,
			HP:      s.hp[e.ID],
			Pos:     [3]float64{e.Pos.X(), e.Pos.Y(), e.Pos.Z()},
		})
	}
	return out
}

func vec(a [3]float64) mgl64.Vec3 { return mgl64.Vec3{a[0], a[1], a[2]} }

// clampInto keeps p inside the w×h×l box.
func clampInto(p mgl64.Vec3, w, h, l int) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Max(0, math.Min(p.X(), float64(w)-0.001)),
		math.Max(0, math.Min(p.Y(), float64(h)-0.001)),
		math.Max(0, math.Min(p.Z(), float64(l)-0.001)),
	}
}

// applyEffects consumes entity-directed effects emitted during this tick.
// A creeper caught in a blast detonates where it stood, even when the same
// blast killed it; its own blast effects are appended to w.fx and handled by
// the same loop.
func (w *World) applyEffects(from int) {
	chained := map[int]bool{}
	for i := from; i < len(w.fx); i++ {
		fx := w.fx[i]
		switch fx.Kind {
		case physics.EffectDamage:
			if _, ok := w.ents.hp[fx.Entity]; !ok {
				continue
			}
			w.ents.hp[fx.Entity] -= fx.Amount
			if w.ents.hp[fx.Entity] <= 0 {
				w.ents.remove(fx.Entity)
				w.log.Debug("entity killed", zap.Int("entity", fx.Entity))
			}
		case physics.EffectKnockback:
			j := w.ents.find(fx.Entity)
			if j < 0 {
				continue
			}
			w.ents.list[j].Pos = clampInto(w.ents.list[j].Pos.Add(fx.Velocity), w.cfg.Width, w.cfg.Height, w.cfg.Length)
		case physics.EffectCreeperChain:
			if chained[fx.Entity] || len(chained) >= w.tun.TNT.ChainMax {
				continue
			}
			chained[fx.Entity] = true
			w.ents.remove(fx.Entity)
			w.engine.Explode(int(math.Floor(fx.At.X())), int(math.Floor(fx.At.Y())), int(math.Floor(fx.At.Z())))
		}
	}
}
