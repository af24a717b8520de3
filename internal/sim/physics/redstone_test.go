package physics_test

import (
	"testing"

	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics"
)

func TestButton_PowersDustLineWithFalloff(t *testing.T) {
	h := floored(t, 14, 3, 2)
	h.Grid.Fill(1, 1, 0, 1, 1, 0, block.Stone)
	h.Grid.Fill(2, 1, 0, 11, 1, 0, block.Dust)
	e := h.Start()

	h.Switch(0, 1, 0, 2, block.ButtonPressed)
	for x := 2; x <= 11; x++ {
		h.Expect(x, 1, 0, block.LitDust)
		if got, want := e.Power(x, 1, 0), 17-x; got != want {
			t.Fatalf("power at x=%d = %d, want %d", x, got, want)
		}
	}

	h.Ticks(19)
	h.Expect(0, 1, 0, block.ButtonPressed)
	h.Expect(11, 1, 0, block.LitDust)

	h.Ticks(1)
	h.Expect(0, 1, 0, block.Button)
	for x := 2; x <= 11; x++ {
		h.Expect(x, 1, 0, block.Dust)
		if e.Power(x, 1, 0) != 0 {
			t.Fatalf("power at x=%d = %d after release", x, e.Power(x, 1, 0))
		}
	}
	if got := h.Sink.Sounds(physics.CueButtonOff); got != 1 {
		t.Fatalf("button_off sounds = %d, want 1", got)
	}
}

// hopPower returns 15 minus the shortest hop count from any seeded cell,
// floored at zero, for a flat network of cells.
func hopPower(cells map[[2]int]bool, seeds ...[2]int) map[[2]int]int {
	dist := map[[2]int]int{}
	queue := append([][2]int(nil), seeds...)
	for _, s := range seeds {
		dist[s] = 0
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			q := [2]int{p[0] + d[0], p[1] + d[1]}
			if _, seen := dist[q]; seen || !cells[q] {
				continue
			}
			dist[q] = dist[p] + 1
			queue = append(queue, q)
		}
	}
	out := map[[2]int]int{}
	for c := range cells {
		if d, ok := dist[c]; ok && d < 15 {
			out[c] = 15 - d
		}
	}
	return out
}

func TestDust_TwoSourcesWithBranch(t *testing.T) {
	h := floored(t, 13, 3, 7)
	cells := map[[2]int]bool{}
	for x := 1; x <= 11; x++ {
		cells[[2]int{x, 1}] = true
	}
	for z := 2; z <= 5; z++ {
		cells[[2]int{6, z}] = true
	}
	for c := range cells {
		h.Grid.Fill(c[0], 1, c[1], c[0], 1, c[1], block.Dust)
	}
	h.Grid.Fill(0, 1, 0, 0, 1, 0, block.Stone)
	h.Grid.Fill(12, 1, 0, 12, 1, 0, block.Stone)
	e := h.Start()

	check := func(stage string, want map[[2]int]int) {
		t.Helper()
		for c := range cells {
			if got := e.Power(c[0], 1, c[1]); got != want[c] {
				t.Fatalf("%s: power at (%d,1,%d) = %d, want %d", stage, c[0], c[1], got, want[c])
			}
			lit := block.Dust
			if want[c] > 0 {
				lit = block.LitDust
			}
			h.Expect(c[0], 1, c[1], lit)
		}
	}

	h.Switch(0, 1, 1, 1, block.LeverOn)
	h.Switch(12, 1, 1, 1, block.LeverOn)
	check("both on", hopPower(cells, [2]int{1, 1}, [2]int{11, 1}))

	h.Place(12, 1, 1, block.Lever)
	check("one on", hopPower(cells, [2]int{1, 1}))
}

func TestDust_RepropagationWritesNothing(t *testing.T) {
	h := floored(t, 14, 3, 2)
	h.Grid.Fill(1, 1, 0, 1, 1, 0, block.Stone)
	h.Grid.Fill(2, 1, 0, 11, 1, 0, block.Dust)
	e := h.Start()
	h.Switch(0, 1, 0, 2, block.ButtonPressed)

	writes := h.Grid.Writes
	before := e.Stats().Propagations
	e.OnBlockChanged(1, 1, 0, block.Stone, block.Stone)
	if h.Grid.Writes != writes {
		t.Fatalf("settled network rewrote %d cells", h.Grid.Writes-writes)
	}
	if e.Stats().Propagations <= before {
		t.Fatalf("expected the network to be recomputed")
	}
}

func TestDust_ClimbsOverBlock(t *testing.T) {
	h := floored(t, 6, 4, 3)
	h.Grid.Fill(0, 1, 1, 0, 1, 1, block.Stone)
	h.Grid.Fill(2, 1, 1, 2, 1, 1, block.Dust)
	h.Grid.Fill(3, 1, 1, 3, 1, 1, block.Stone)
	h.Grid.Fill(3, 2, 1, 3, 2, 1, block.Dust)
	h.Grid.Fill(4, 1, 1, 4, 1, 1, block.Dust)
	e := h.Start()

	h.Switch(1, 1, 1, 3, block.LeverOn)

	cases := []struct {
		x, y, power int
	}{
		{2, 1, 15},
		{3, 2, 14},
		{4, 1, 13},
	}
	for _, tc := range cases {
		if got := e.Power(tc.x, tc.y, 1); got != tc.power {
			t.Fatalf("power at (%d,%d,1) = %d, want %d", tc.x, tc.y, got, tc.power)
		}
	}

	h.Place(1, 1, 1, block.Lever)
	for _, tc := range cases {
		h.Expect(tc.x, tc.y, 1, block.Dust)
	}
}

func TestDust_FallsWithoutSupport(t *testing.T) {
	h := floored(t, 5, 3, 5)
	h.Grid.Fill(2, 1, 2, 2, 1, 2, block.Stone)
	h.Grid.Fill(2, 2, 2, 2, 2, 2, block.Dust)
	h.Start()

	h.Place(2, 1, 2, block.Air)
	h.Expect(2, 2, 2, block.Air)
}

func TestTorch_TurnsOffTwoTicksAfterPower(t *testing.T) {
	h := floored(t, 8, 4, 8)
	h.Grid.Fill(5, 1, 5, 5, 1, 5, block.Stone)
	h.Grid.Fill(5, 2, 5, 5, 2, 5, block.RedTorch)
	h.Grid.Fill(4, 1, 5, 4, 1, 5, block.Dust)
	h.Grid.Fill(2, 1, 5, 2, 1, 5, block.Stone)
	e := h.Start()

	h.Switch(3, 1, 5, 3, block.LeverOn)
	h.Expect(4, 1, 5, block.LitDust)
	h.Expect(5, 2, 5, block.RedTorch)

	h.Ticks(1)
	h.Expect(5, 2, 5, block.RedTorch)

	h.Ticks(1)
	h.Expect(5, 2, 5, block.RedTorchOff)
	if e.Stats().TorchToggles != 1 {
		t.Fatalf("torch toggles = %d, want 1", e.Stats().TorchToggles)
	}
}

func TestTorch_PlacedOnPoweredBlockStartsOff(t *testing.T) {
	h := floored(t, 5, 4, 5)
	h.Grid.Fill(2, 1, 2, 2, 1, 2, block.Stone)
	h.Grid.Fill(1, 1, 2, 1, 1, 2, block.LeverOn)
	h.Facings[physics.Pos{X: 1, Y: 1, Z: 2}] = 2
	e := h.Start()

	if got := e.PlaceTorch(2, 2, 2, physics.FacePosY); got != block.RedTorch {
		t.Fatalf("PlaceTorch returned %s", block.Name(got))
	}
	h.Expect(2, 2, 2, block.RedTorchOff)
}

func TestTorch_PowersDustAndDropsWithSupport(t *testing.T) {
	h := floored(t, 6, 4, 5)
	h.Grid.Fill(2, 1, 2, 3, 1, 2, block.Stone)
	h.Grid.Fill(3, 2, 2, 3, 2, 2, block.Dust)
	e := h.Start()

	e.PlaceTorch(2, 2, 2, physics.FacePosY)
	h.Expect(2, 2, 2, block.RedTorch)
	h.Expect(3, 2, 2, block.LitDust)
	if got := e.Power(3, 2, 2); got != 15 {
		t.Fatalf("power next to torch = %d, want 15", got)
	}

	h.Place(2, 1, 2, block.Air)
	h.Expect(2, 2, 2, block.Air)
	h.Expect(3, 2, 2, block.Dust)
}

func TestTorchForFace(t *testing.T) {
	cases := []struct {
		face physics.Face
		want block.ID
	}{
		{physics.FacePosY, block.RedTorch},
		{physics.FaceNegY, block.RedTorchFree},
		{physics.FacePosZ, block.RedTorchOnN},
		{physics.FaceNegZ, block.RedTorchOnS},
		{physics.FacePosX, block.RedTorchOnW},
		{physics.FaceNegX, block.RedTorchOnE},
	}
	for _, tc := range cases {
		if got := physics.TorchForFace(tc.face); got != tc.want {
			t.Fatalf("TorchForFace(%d) = %s, want %s", tc.face, block.Name(got), block.Name(tc.want))
		}
	}
}

func TestPlate_PressedWhileOccupied(t *testing.T) {
	h := floored(t, 6, 3, 5)
	h.Grid.Fill(2, 1, 2, 2, 1, 2, block.Plate)
	h.Grid.Fill(3, 1, 2, 3, 1, 2, block.Dust)
	h.Start()

	h.Entities.Put(1, physics.EntityMob, 2.5, 1.1, 2.5)
	h.Ticks(5)
	h.Expect(2, 1, 2, block.PlatePressed)
	h.Expect(3, 1, 2, block.LitDust)
	if got := h.Sink.Sounds(physics.CueButtonOn); got != 1 {
		t.Fatalf("button_on sounds = %d, want 1", got)
	}

	h.Entities.Remove(1)
	h.Ticks(18)
	h.Expect(2, 1, 2, block.PlatePressed)

	h.Ticks(1)
	h.Expect(2, 1, 2, block.Plate)
	h.Expect(3, 1, 2, block.Dust)
}

func TestDoor_FollowsPower(t *testing.T) {
	h := floored(t, 5, 5, 5)
	h.Grid.Fill(2, 1, 2, 2, 1, 2, block.Stone)
	h.Grid.Fill(2, 2, 2, 2, 2, 2, block.IronDoor)
	h.Grid.Fill(2, 3, 2, 2, 3, 2, block.IronDoorNSTop)
	e := h.Start()
	if e.Stats().Doors != 1 {
		t.Fatalf("doors registered = %d, want 1", e.Stats().Doors)
	}

	h.Switch(1, 1, 2, 2, block.LeverOn)
	h.Ticks(1)
	h.Expect(2, 2, 2, block.IronDoorNSOpenBottom)
	h.Expect(2, 3, 2, block.IronDoorNSOpenTop)

	h.Place(1, 1, 2, block.Lever)
	h.Ticks(1)
	h.Expect(2, 2, 2, block.IronDoor)
	h.Expect(2, 3, 2, block.IronDoorNSTop)
	if got := h.Sink.Sounds(physics.CueDoor); got != 2 {
		t.Fatalf("door sounds = %d, want 2", got)
	}
}

func TestSwitch_DropsWhenAttachmentRemoved(t *testing.T) {
	h := floored(t, 5, 3, 5)
	h.Grid.Fill(2, 1, 2, 2, 1, 2, block.Stone)
	h.Start()
	h.Switch(1, 1, 2, 2, block.Lever)

	h.Place(2, 1, 2, block.Air)
	h.Expect(1, 1, 2, block.Air)
}
