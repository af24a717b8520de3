package block

// Collide is a block's collision class.
type Collide uint8

const (
	CollideNone Collide = iota
	CollideLiquid
	CollideSolid
	CollideClimb
)

// Sound is a block's dig/step sound class.
type Sound uint8

const (
	SoundNone Sound = iota
	SoundWood
	SoundGravel
	SoundGrass
	SoundStone
	SoundMetal
	SoundGlass
	SoundCloth
	SoundSand
)

func IsWater(b ID) bool { return b == Water || b == StillWater }
func IsLava(b ID) bool  { return b == Lava || b == StillLava }

// IsLiquid reports whether b is any water or lava variant.
func IsLiquid(b ID) bool { return b >= Water && b <= StillLava }

func IsDust(b ID) bool { return b == Dust || b == LitDust }

func IsTorchOn(b ID) bool {
	switch b {
	case RedTorch, RedTorchOnS, RedTorchOnN, RedTorchOnE, RedTorchOnW, RedTorchFree:
		return true
	}
	return false
}

func IsTorchOff(b ID) bool {
	switch b {
	case RedTorchOff, RedTorchOffS, RedTorchOffN, RedTorchOffE, RedTorchOffW, RedTorchFreeOff:
		return true
	}
	return false
}

func IsTorch(b ID) bool { return IsTorchOn(b) || IsTorchOff(b) }

// TorchOff maps a lit redstone torch to its unlit variant with the same mounting.
func TorchOff(on ID) ID {
	switch on {
	case RedTorchOnS:
		return RedTorchOffS
	case RedTorchOnN:
		return RedTorchOffN
	case RedTorchOnE:
		return RedTorchOffE
	case RedTorchOnW:
		return RedTorchOffW
	case RedTorchFree:
		return RedTorchFreeOff
	}
	return RedTorchOff
}

// TorchOn maps an unlit redstone torch to its lit variant with the same mounting.
func TorchOn(off ID) ID {
	switch off {
	case RedTorchOffS:
		return RedTorchOnS
	case RedTorchOffN:
		return RedTorchOnN
	case RedTorchOffE:
		return RedTorchOnE
	case RedTorchOffW:
		return RedTorchOnW
	case RedTorchFreeOff:
		return RedTorchFree
	}
	return RedTorch
}

// TorchAttachDir returns the offset from a redstone torch to the block it
// hangs on. The offset is derived from the block type alone so it stays
// valid after the torch has been removed from the grid.
func TorchAttachDir(b ID) (dx, dy, dz int, ok bool) {
	switch b {
	case RedTorchOnS, RedTorchOffS:
		return 0, 0, 1, true
	case RedTorchOnN, RedTorchOffN:
		return 0, 0, -1, true
	case RedTorchOnE, RedTorchOffE:
		return 1, 0, 0, true
	case RedTorchOnW, RedTorchOffW:
		return -1, 0, 0, true
	case RedTorch, RedTorchOff, RedTorchFree, RedTorchFreeOff:
		return 0, -1, 0, true
	}
	return 0, 0, 0, false
}

func IsButton(b ID) bool         { return b == Button || b == ButtonPressed }
func IsLever(b ID) bool          { return b == Lever || b == LeverOn }
func IsPlate(b ID) bool          { return b == Plate || b == PlatePressed }
func IsPoweringSwitch(b ID) bool { return b == ButtonPressed || b == LeverOn }

func IsIronDoor(b ID) bool {
	switch b {
	case IronDoor, IronDoorNSTop, IronDoorEWBottom, IronDoorEWTop,
		IronDoorNSOpenBottom, IronDoorNSOpenTop, IronDoorEWOpenBottom, IronDoorEWOpenTop:
		return true
	}
	return false
}

func IsIronDoorBottom(b ID) bool {
	switch b {
	case IronDoor, IronDoorEWBottom, IronDoorNSOpenBottom, IronDoorEWOpenBottom:
		return true
	}
	return false
}

// DoorToggle returns the bottom and top types a door bottom takes for the
// given power state. ok is false when the door already matches it.
func DoorToggle(bottom ID, powered bool) (newBottom, newTop ID, ok bool) {
	switch {
	case bottom == IronDoor && powered:
		return IronDoorNSOpenBottom, IronDoorNSOpenTop, true
	case bottom == IronDoorEWBottom && powered:
		return IronDoorEWOpenBottom, IronDoorEWOpenTop, true
	case bottom == IronDoorNSOpenBottom && !powered:
		return IronDoor, IronDoorNSTop, true
	case bottom == IronDoorEWOpenBottom && !powered:
		return IronDoorEWBottom, IronDoorEWTop, true
	}
	return bottom, Air, false
}

func IsDoubleChest(b ID) bool { return b >= DoubleChestSL && b <= DoubleChestWR }

// DoubleChestPartner returns the offset from one half of a double chest to
// the other half.
func DoubleChestPartner(b ID) (dx, dz int) {
	switch b {
	case DoubleChestSL, DoubleChestNR:
		return -1, 0
	case DoubleChestSR, DoubleChestNL:
		return 1, 0
	case DoubleChestEL, DoubleChestWR:
		return 0, 1
	case DoubleChestER, DoubleChestWL:
		return 0, -1
	}
	return 0, 0
}

func IsFlower(b ID) bool   { return b == Dandelion || b == Rose }
func IsMushroom(b ID) bool { return b == BrownShroom || b == RedShroom }
func IsFalling(b ID) bool  { return b == Sand || b == Gravel }
