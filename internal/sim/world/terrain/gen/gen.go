package gen

import "cubetick.dev/internal/sim/block"

// Params drives column generation. All randomness is derived from Seed so
// the same parameters always produce the same grid.
type Params struct {
	Seed     int64
	Height   int
	SeaLevel int

	// Relief is the maximum distance of the surface above or below its base.
	Relief int

	OreClusterProbScalePermille int
	SaplingPermille             int
	FlowerPermille              int
}

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func Hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func ClampPermille(v int) int {
	if v < 0 {
		return 0
	}
	if v > 1000 {
		return 1000
	}
	return v
}

func ScalePermille(base uint64, scalePermille int) uint64 {
	if scalePermille <= 0 {
		scalePermille = 1000
	}
	scaled := (base*uint64(scalePermille) + 500) / 1000
	if scaled > 1000 {
		return 1000
	}
	return scaled
}

// InCluster reports whether (x,y,z) falls inside a spherical cluster. Cluster
// centres are placed at most one per grid³ cell with probability
// probPermille/1000.
func InCluster(seed int64, x, y, z, grid, radius int, probPermille uint64) bool {
	if grid <= 0 || radius <= 0 || probPermille == 0 {
		return false
	}
	gx := FloorDiv(x, grid)
	gy := FloorDiv(y, grid)
	gz := FloorDiv(z, grid)
	r2 := radius * radius

	for dy := -1; dy <= 1; dy++ {
		for dz := -1; dz <= 1; dz++ {
			for dx := -1; dx <= 1; dx++ {
				cgx, cgy, cgz := gx+dx, gy+dy, gz+dz
				h := Hash3(seed, cgx, cgy, cgz)
				if h%1000 >= probPermille {
					continue
				}

				cx := cgx*grid + int((h>>10)%uint64(grid))
				cy := cgy*grid + int((h>>20)%uint64(grid))
				cz := cgz*grid + int((h>>30)%uint64(grid))

				ddx, ddy, ddz := x-cx, y-cy, z-cz
				if ddx*ddx+ddy*ddy+ddz*ddz <= r2 {
					return true
				}
			}
		}
	}
	return false
}

const lattice = 8

// SurfaceAt returns the y of the topmost terrain block of column (x,z):
// value noise on an 8-block lattice, interpolated bilinearly.
func SurfaceAt(p Params, x, z int) int {
	base := p.SeaLevel + 1
	if p.Relief <= 0 {
		return clampY(base, p.Height)
	}
	gx, gz := FloorDiv(x, lattice), FloorDiv(z, lattice)
	fx, fz := Mod(x, lattice), Mod(z, lattice)

	corner := func(cx, cz int) int {
		return int(Hash2(p.Seed, cx, cz)%uint64(2*p.Relief+1)) - p.Relief
	}
	v00 := corner(gx, gz)
	v10 := corner(gx+1, gz)
	v01 := corner(gx, gz+1)
	v11 := corner(gx+1, gz+1)

	top := v00*(lattice-fx) + v10*fx
	bot := v01*(lattice-fx) + v11*fx
	v := top*(lattice-fz) + bot*fz
	off := v / (lattice * lattice)
	return clampY(base+off, p.Height)
}

func clampY(y, height int) int {
	return max(1, min(y, height-2))
}

// Column fills out[0:p.Height] with the blocks of column (x,z): bedrock at
// the bottom, stone with ore clusters, a dirt layer capped with grass or
// sand, and still water up to the sea level.
func Column(p Params, x, z int, out []block.ID) {
	surface := SurfaceAt(p, x, z)
	shore := surface <= p.SeaLevel+1

	for y := 0; y < p.Height; y++ {
		b := block.Air
		switch {
		case y == 0:
			b = block.Bedrock
		case y < surface-3:
			b = ore(p, x, y, z)
		case y < surface:
			b = block.Dirt
			if shore {
				b = block.Sand
			}
		case y == surface:
			b = block.Grass
			if shore {
				b = block.Sand
			}
		case y <= p.SeaLevel:
			b = block.StillWater
		}
		out[y] = b
	}

	above := surface + 1
	if shore || above >= p.Height {
		return
	}
	roll := Hash2(p.Seed+999, x, z) % 1000
	sapling := uint64(ClampPermille(p.SaplingPermille))
	flower := uint64(ClampPermille(p.FlowerPermille))
	switch {
	case roll < sapling:
		out[above] = block.Sapling
	case roll < sapling+flower:
		out[above] = block.Dandelion
		if roll%2 == 1 {
			out[above] = block.Rose
		}
	}
}

func ore(p Params, x, y, z int) block.ID {
	scale := p.OreClusterProbScalePermille
	switch {
	case InCluster(p.Seed+101, x, y, z, 24, 2, ScalePermille(200, scale)):
		return block.GoldOre
	case InCluster(p.Seed+102, x, y, z, 16, 2, ScalePermille(350, scale)):
		return block.IronOre
	case InCluster(p.Seed+103, x, y, z, 12, 2, ScalePermille(450, scale)):
		return block.CoalOre
	case InCluster(p.Seed+104, x, y, z, 16, 3, ScalePermille(250, scale)):
		return block.Gravel
	}
	return block.Stone
}
