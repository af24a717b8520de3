package block

// ID is a grid cell's block type.
type ID uint16

const (
	Air         ID = 0
	Stone       ID = 1
	Grass       ID = 2
	Dirt        ID = 3
	Cobble      ID = 4
	Wood        ID = 5
	Sapling     ID = 6
	Bedrock     ID = 7
	Water       ID = 8
	StillWater  ID = 9
	Lava        ID = 10
	StillLava   ID = 11
	Sand        ID = 12
	Gravel      ID = 13
	GoldOre     ID = 14
	IronOre     ID = 15
	CoalOre     ID = 16
	Log         ID = 17
	Leaves      ID = 18
	Sponge      ID = 19
	Glass       ID = 20
	Dandelion   ID = 37
	Rose        ID = 38
	BrownShroom ID = 39
	RedShroom   ID = 40
	Gold        ID = 41
	Iron        ID = 42
	DoubleSlab  ID = 43
	Slab        ID = 44
	Brick       ID = 45
	TNT         ID = 46
	Bookshelf   ID = 47
	MossyRocks  ID = 48
	Obsidian    ID = 49
	Chest       ID = 56
	Ladder      ID = 58
	Dust        ID = 60
	Torch       ID = 61
	RedTorch    ID = 62 // ground-mounted, lit
	Button      ID = 63
	Lever       ID = 64
	Plate       ID = 65
	IronDoor    ID = 66 // north/south closed bottom

	LitDust         ID = 203
	RedTorchOff     ID = 204
	RedTorchOnS     ID = 205
	RedTorchOnN     ID = 206
	RedTorchOnE     ID = 207
	RedTorchOnW     ID = 208
	RedTorchOffS    ID = 209
	RedTorchOffN    ID = 210
	RedTorchOffE    ID = 211
	RedTorchOffW    ID = 212
	RedTorchFree    ID = 213
	RedTorchFreeOff ID = 214
	ButtonPressed   ID = 215
	LeverOn         ID = 216
	PlatePressed    ID = 217

	IronDoorNSTop        ID = 218
	IronDoorEWBottom     ID = 219
	IronDoorEWTop        ID = 220
	IronDoorNSOpenBottom ID = 221
	IronDoorNSOpenTop    ID = 222
	IronDoorEWOpenBottom ID = 223
	IronDoorEWOpenTop    ID = 224

	DoubleChestSL ID = 225
	DoubleChestSR ID = 226
	DoubleChestNL ID = 227
	DoubleChestNR ID = 228
	DoubleChestEL ID = 229
	DoubleChestER ID = 230
	DoubleChestWL ID = 231
	DoubleChestWR ID = 232

	// Count bounds the dispatch tables indexed by ID.
	Count = 256
)
