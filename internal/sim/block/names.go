package block

import "strconv"

var names = map[ID]string{
	Air:         "AIR",
	Stone:       "STONE",
	Grass:       "GRASS",
	Dirt:        "DIRT",
	Cobble:      "COBBLE",
	Wood:        "WOOD",
	Sapling:     "SAPLING",
	Bedrock:     "BEDROCK",
	Water:       "WATER",
	StillWater:  "STILL_WATER",
	Lava:        "LAVA",
	StillLava:   "STILL_LAVA",
	Sand:        "SAND",
	Gravel:      "GRAVEL",
	GoldOre:     "GOLD_ORE",
	IronOre:     "IRON_ORE",
	CoalOre:     "COAL_ORE",
	Log:         "LOG",
	Leaves:      "LEAVES",
	Sponge:      "SPONGE",
	Glass:       "GLASS",
	Dandelion:   "DANDELION",
	Rose:        "ROSE",
	BrownShroom: "BROWN_SHROOM",
	RedShroom:   "RED_SHROOM",
	Gold:        "GOLD",
	Iron:        "IRON",
	DoubleSlab:  "DOUBLE_SLAB",
	Slab:        "SLAB",
	Brick:       "BRICK",
	TNT:         "TNT",
	Bookshelf:   "BOOKSHELF",
	MossyRocks:  "MOSSY_ROCKS",
	Obsidian:    "OBSIDIAN",
	Chest:       "CHEST",
	Ladder:      "LADDER",
	Dust:        "DUST",
	Torch:       "TORCH",
	RedTorch:    "RED_TORCH",
	Button:      "BUTTON",
	Lever:       "LEVER",
	Plate:       "PLATE",
	IronDoor:    "IRON_DOOR",

	LitDust:         "LIT_DUST",
	RedTorchOff:     "RED_TORCH_OFF",
	RedTorchOnS:     "RED_TORCH_ON_S",
	RedTorchOnN:     "RED_TORCH_ON_N",
	RedTorchOnE:     "RED_TORCH_ON_E",
	RedTorchOnW:     "RED_TORCH_ON_W",
	RedTorchOffS:    "RED_TORCH_OFF_S",
	RedTorchOffN:    "RED_TORCH_OFF_N",
	RedTorchOffE:    "RED_TORCH_OFF_E",
	RedTorchOffW:    "RED_TORCH_OFF_W",
	RedTorchFree:    "RED_TORCH_FREE",
	RedTorchFreeOff: "RED_TORCH_FREE_OFF",
	ButtonPressed:   "BUTTON_PRESSED",
	LeverOn:         "LEVER_ON",
	PlatePressed:    "PLATE_PRESSED",

	IronDoorNSTop:        "IRON_DOOR_NS_TOP",
	IronDoorEWBottom:     "IRON_DOOR_EW_BOTTOM",
	IronDoorEWTop:        "IRON_DOOR_EW_TOP",
	IronDoorNSOpenBottom: "IRON_DOOR_NS_OPEN_BOTTOM",
	IronDoorNSOpenTop:    "IRON_DOOR_NS_OPEN_TOP",
	IronDoorEWOpenBottom: "IRON_DOOR_EW_OPEN_BOTTOM",
	IronDoorEWOpenTop:    "IRON_DOOR_EW_OPEN_TOP",

	DoubleChestSL: "DOUBLE_CHEST_S_L",
	DoubleChestSR: "DOUBLE_CHEST_S_R",
	DoubleChestNL: "DOUBLE_CHEST_N_L",
	DoubleChestNR: "DOUBLE_CHEST_N_R",
	DoubleChestEL: "DOUBLE_CHEST_E_L",
	DoubleChestER: "DOUBLE_CHEST_E_R",
	DoubleChestWL: "DOUBLE_CHEST_W_L",
	DoubleChestWR: "DOUBLE_CHEST_W_R",
}

var byName = func() map[string]ID {
	m := make(map[string]ID, len(names))
	for id, n := range names {
		m[n] = id
	}
	return m
}()

// Name returns the catalog name for b, or its decimal ID when b is unnamed.
func Name(b ID) string {
	if n, ok := names[b]; ok {
		return n
	}
	return strconv.Itoa(int(b))
}

// ByName resolves a catalog name to its block ID.
func ByName(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// Names returns every named block ID.
func Names() map[ID]string {
	out := make(map[ID]string, len(names))
	for id, n := range names {
		out[id] = n
	}
	return out
}
