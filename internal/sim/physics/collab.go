package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"cubetick.dev/internal/sim/block"
)

type Pos struct {
	X int
	Y int
	Z int
}

func (p Pos) Add(dx, dy, dz int) Pos { return Pos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz} }

// Grid is the block storage the engine reads and mutates. SetBlock must only
// store the value; the engine raises its own change events for writes it makes.
type Grid interface {
	Dims() (w, h, l int)
	Block(x, y, z int) block.ID
	SetBlock(x, y, z int, b block.ID)
}

type BlockInfo interface {
	BlocksLight(b block.ID) bool
	Collide(b block.ID) block.Collide
	Sound(b block.ID) block.Sound
}

type Lighting interface {
	IsLit(x, y, z int) bool
}

// Facings reports which neighbour a button or lever hangs on:
// 0 = z+1, 1 = z-1, 2 = x+1, 3 = x-1.
type Facings interface {
	Facing(x, y, z int) int
}

type EntityKind uint8

const (
	EntityMob EntityKind = iota
	EntityPlayer
)

type Entity struct {
	ID      int
	Kind    EntityKind
	Creeper bool
	Pos     mgl64.Vec3
}

type Entities interface {
	Entities() []Entity
}

type TreeBlock struct {
	X, Y, Z int
	Block   block.ID
}

type TreeGrower interface {
	CanGrow(x, y, z, height int) bool
	Grow(x, y, z, height int) []TreeBlock
}

type EffectKind uint8

const (
	EffectSound EffectKind = iota + 1
	EffectParticles
	EffectDamage
	EffectKnockback
	EffectCreeperChain
	EffectWarning
)

func (k EffectKind) String() string {
	switch k {
	case EffectSound:
		return "sound"
	case EffectParticles:
		return "particles"
	case EffectDamage:
		return "damage"
	case EffectKnockback:
		return "knockback"
	case EffectCreeperChain:
		return "creeper_chain"
	case EffectWarning:
		return "warning"
	}
	return "unknown"
}

// Cue names a one-shot sound.
type Cue string

const (
	CueButtonOn  Cue = "button_on"
	CueButtonOff Cue = "button_off"
	CueDoor      Cue = "door"
	CueExplode   Cue = "explode"
	CueFuse      Cue = "fuse"
)

// Effect is a fire-and-forget request for the host: audio, particles or an
// impulse applied to an entity. Only the fields relevant to Kind are set.
type Effect struct {
	Kind EffectKind
	Tick int

	Pos Pos
	At  mgl64.Vec3

	Cue      Cue
	Entity   int
	Amount   int
	Velocity mgl64.Vec3
	Message  string
}

type EffectSink interface {
	Emit(Effect)
}

type skyLit struct{}

func (skyLit) IsLit(x, y, z int) bool { return true }

type noFacings struct{}

func (noFacings) Facing(x, y, z int) int { return 0 }

type noEntities struct{}

func (noEntities) Entities() []Entity { return nil }

type discard struct{}

func (discard) Emit(Effect) {}
