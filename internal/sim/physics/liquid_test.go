package physics_test

import (
	"testing"

	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics"
)

func TestWater_SpreadsAfterDelay(t *testing.T) {
	h := floored(t, 5, 2, 1)
	h.Start()

	h.Place(2, 1, 0, block.Water)
	h.Ticks(5)
	h.Expect(1, 1, 0, block.Air)
	h.Expect(3, 1, 0, block.Air)

	h.Ticks(1)
	h.Expect(1, 1, 0, block.Water)
	h.Expect(3, 1, 0, block.Water)
	h.Expect(2, 0, 0, block.Stone)
}

func TestWater_TurnsLavaToStone(t *testing.T) {
	h := floored(t, 5, 2, 1)
	h.Start()

	h.Place(1, 1, 0, block.Lava)
	h.Place(3, 1, 0, block.Water)

	h.Ticks(11)
	h.Expect(2, 1, 0, block.Water)
	h.Expect(1, 1, 0, block.Lava)

	h.Ticks(1)
	h.Expect(1, 1, 0, block.Stone)
}

func TestSponge_BlocksAndAbsorbsWater(t *testing.T) {
	h := floored(t, 7, 2, 1)
	h.Start()

	h.Place(4, 1, 0, block.Sponge)
	h.Place(1, 1, 0, block.Water)
	h.Ticks(6)
	h.Expect(0, 1, 0, block.Water)
	h.Expect(2, 1, 0, block.Air)

	h.Place(2, 1, 0, block.Sponge)
	h.Expect(1, 1, 0, block.Air)
	h.Expect(0, 1, 0, block.Air)
}

func TestLiquidQueue_ClearsAtCeiling(t *testing.T) {
	h := floored(t, 8, 2, 8)
	h.Options.Tuning.Liquids.QueueCeiling = 32
	e := h.Start()

	for x := 0; x < 8; x++ {
		for z := 0; z < 8; z++ {
			h.Place(x, 1, z, block.Water)
		}
	}
	if e.Stats().QueueClears == 0 {
		t.Fatalf("expected the water queue to clear at its ceiling")
	}
	if h.Sink.Count(physics.EffectWarning) == 0 {
		t.Fatalf("expected a warning effect when the queue cleared")
	}
}
