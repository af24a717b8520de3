package main

import (
	"fmt"

	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/world"
)

// Scenarios run on a 16x6x4 flat world: bedrock at y=0, stone at y=1 and
// the build layer at y=2, z=1.
const (
	layer  = 2
	row    = 1
	width  = 16
	height = 6
	length = 4
)

type checkpoint struct {
	tick  int
	label string
	check func(w *world.World) error
}

type scenario struct {
	name        string
	desc        string
	ticks       int
	edits       map[int][]protocol.EditMsg
	checkpoints []checkpoint
}

func set(x, y, z int, b block.ID) protocol.EditMsg {
	return protocol.EditMsg{Op: protocol.OpSet, Pos: [3]int{x, y, z}, Block: block.Name(b)}
}

func line(x0, x1 int, b block.ID) []protocol.EditMsg {
	var out []protocol.EditMsg
	for x := x0; x <= x1; x++ {
		out = append(out, set(x, layer, row, b))
	}
	return out
}

func expectBlock(x, y, z int, want block.ID) func(*world.World) error {
	return func(w *world.World) error {
		if got := w.Store().Block(x, y, z); got != want {
			return fmt.Errorf("(%d,%d,%d) = %s, want %s", x, y, z, block.Name(got), block.Name(want))
		}
		return nil
	}
}

var scenarios = []scenario{
	{
		name:  "button-line",
		desc:  "a pressed button drives ten dust cells; power falls off by one per cell and drops after release",
		ticks: 22,
		edits: map[int][]protocol.EditMsg{
			0: append(append([]protocol.EditMsg{set(1, layer, row, block.Stone)}, line(2, 11, block.Dust)...),
				protocol.EditMsg{Op: protocol.OpSwitch, Pos: [3]int{0, layer, row}, Block: block.Name(block.ButtonPressed), Facing: 2}),
		},
		checkpoints: []checkpoint{
			{tick: 0, label: "power 15..6 along the line", check: func(w *world.World) error {
				for x := 2; x <= 11; x++ {
					if got, want := w.Engine().Power(x, layer, row), 17-x; got != want {
						return fmt.Errorf("power at x=%d = %d, want %d", x, got, want)
					}
				}
				return nil
			}},
			{tick: 21, label: "button released", check: expectBlock(0, layer, row, block.Button)},
			{tick: 21, label: "line unpowered", check: expectBlock(11, layer, row, block.Dust)},
		},
	},
	{
		name:  "inverter",
		desc:  "a lever powers dust into a block carrying a torch; the torch goes out two ticks later and relights when the lever is thrown back",
		ticks: 30,
		edits: map[int][]protocol.EditMsg{
			0: append(append([]protocol.EditMsg{set(1, layer, row, block.Stone), set(6, layer, row, block.Stone)}, line(2, 5, block.Dust)...),
				protocol.EditMsg{Op: protocol.OpTorch, Pos: [3]int{6, layer + 1, row}, Face: "+Y"}),
			5:  {{Op: protocol.OpSwitch, Pos: [3]int{0, layer, row}, Block: block.Name(block.LeverOn), Facing: 2}},
			15: {{Op: protocol.OpSwitch, Pos: [3]int{0, layer, row}, Block: block.Name(block.Lever), Facing: 2}},
		},
		checkpoints: []checkpoint{
			{tick: 4, label: "torch lit", check: expectBlock(6, layer+1, row, block.RedTorch)},
			{tick: 10, label: "torch out", check: expectBlock(6, layer+1, row, block.RedTorchOff)},
			{tick: 25, label: "torch relit", check: expectBlock(6, layer+1, row, block.RedTorch)},
		},
	},
	{
		name:  "tnt",
		desc:  "a fused charge in a stone pocket detonates and clears a sphere",
		ticks: 70,
		edits: map[int][]protocol.EditMsg{
			0: {
				set(8, layer, row, block.TNT),
				{Op: protocol.OpFuse, Pos: [3]int{8, layer, row}},
			},
		},
		checkpoints: []checkpoint{
			{tick: 30, label: "charge still armed", check: expectBlock(8, layer, row, block.TNT)},
			{tick: 69, label: "charge gone", check: expectBlock(8, layer, row, block.Air)},
			{tick: 69, label: "detonation counted", check: func(w *world.World) error {
				if n := w.Metrics().Totals.Detonations; n < 1 {
					return fmt.Errorf("detonations = %d", n)
				}
				return nil
			}},
		},
	},
	{
		name:  "liquids",
		desc:  "water and lava spread across the floor and turn to stone where they meet",
		ticks: 120,
		edits: map[int][]protocol.EditMsg{
			0: {set(2, layer, row, block.Lava), set(13, layer, row, block.Water)},
		},
		checkpoints: []checkpoint{
			{tick: 119, label: "stone formed on the build layer", check: func(w *world.World) error {
				for z := 0; z < length; z++ {
					for x := 0; x < width; x++ {
						if w.Store().Block(x, layer, z) == block.Stone {
							return nil
						}
					}
				}
				return fmt.Errorf("no stone at y=%d", layer)
			}},
		},
	},
}

func find(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}
