package physics

import "cubetick.dev/internal/sim/block"

type handler func(e *Engine, p Pos, b block.ID)

// handlers maps each block type to its lifecycle callbacks. A nil entry
// means the type has no behaviour for that event.
type handlers struct {
	place    [block.Count]handler
	delete   [block.Count]handler
	activate [block.Count]handler
	random   [block.Count]handler
}

func newHandlers() handlers {
	var h handlers

	h.place[block.Water] = (*Engine).placeWater
	h.place[block.Lava] = (*Engine).placeLava
	for _, b := range []block.ID{block.Water, block.StillWater} {
		h.activate[b] = (*Engine).placeWater
		h.random[b] = (*Engine).spreadLiquid
	}
	for _, b := range []block.ID{block.Lava, block.StillLava} {
		h.activate[b] = (*Engine).placeLava
		h.random[b] = (*Engine).spreadLiquid
	}
	h.place[block.Sponge] = (*Engine).placeSponge
	h.delete[block.Sponge] = (*Engine).deleteSponge

	for _, b := range []block.ID{block.Sand, block.Gravel} {
		h.place[b] = (*Engine).fall
		h.activate[b] = (*Engine).fall
		h.random[b] = (*Engine).fall
	}
	h.activate[block.Ladder] = (*Engine).activateLadder
	h.activate[block.Torch] = (*Engine).activateTorch
	h.place[block.Slab] = (*Engine).placeSlab
	for b := block.DoubleChestSL; b <= block.DoubleChestWR; b++ {
		h.delete[b] = (*Engine).deleteDoubleChest
	}

	h.random[block.Sapling] = (*Engine).growSapling
	h.random[block.Dirt] = (*Engine).spreadGrass
	h.random[block.Grass] = (*Engine).smotherGrass
	h.random[block.Dandelion] = (*Engine).checkFlower
	h.random[block.Rose] = (*Engine).checkFlower
	h.random[block.BrownShroom] = (*Engine).checkMushroom
	h.random[block.RedShroom] = (*Engine).checkMushroom

	for _, b := range []block.ID{block.Dust, block.LitDust} {
		h.place[b] = (*Engine).placeDust
		h.delete[b] = (*Engine).deleteDust
		h.activate[b] = (*Engine).activateDust
	}
	for b := 0; b < block.Count; b++ {
		if block.IsTorch(block.ID(b)) {
			h.place[b] = (*Engine).placeRedTorch
			h.delete[b] = (*Engine).deleteRedTorch
			h.activate[b] = (*Engine).activateRedTorch
		}
	}

	h.activate[block.Button] = (*Engine).activateSwitch
	h.activate[block.ButtonPressed] = (*Engine).activateSwitch
	h.activate[block.Lever] = (*Engine).activateSwitch
	h.activate[block.LeverOn] = (*Engine).activateSwitch
	h.place[block.ButtonPressed] = (*Engine).placeButtonPressed
	h.delete[block.Button] = (*Engine).deleteButton
	h.delete[block.ButtonPressed] = (*Engine).deleteButton
	h.place[block.Lever] = (*Engine).placeLever
	h.place[block.LeverOn] = (*Engine).placeLever
	h.delete[block.LeverOn] = (*Engine).deleteLever

	h.place[block.PlatePressed] = (*Engine).placePlatePressed
	h.delete[block.Plate] = (*Engine).deletePlate
	h.delete[block.PlatePressed] = (*Engine).deletePlate
	h.activate[block.Plate] = (*Engine).activatePlate
	h.activate[block.PlatePressed] = (*Engine).activatePlate

	h.place[block.IronDoor] = (*Engine).placeDoor
	h.place[block.IronDoorEWBottom] = (*Engine).placeDoor
	for b := 0; b < block.Count; b++ {
		if block.IsIronDoor(block.ID(b)) {
			h.delete[b] = (*Engine).deleteDoor
		}
	}

	h.place[block.TNT] = (*Engine).placeTNT
	h.delete[block.TNT] = (*Engine).deleteTNT

	return h
}
