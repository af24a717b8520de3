package store

import (
	"cubetick.dev/internal/sim/block"
	"cubetick.dev/internal/sim/physics"
)

// Trees grows saplings into a log trunk with a leaf canopy over the store.
type Trees struct{ s *Store }

func (s *Store) Trees() Trees { return Trees{s: s} }

// CanGrow reports whether a tree of the given trunk height fits at (x,y,z):
// the trunk column must be air and the crown must stay below the grid top.
func (t Trees) CanGrow(x, y, z, height int) bool {
	if height <= 0 || !t.s.InBounds(x, y, z) || y+height >= t.s.H {
		return false
	}
	for dy := 0; dy < height; dy++ {
		if t.s.Block(x, y+dy, z) != block.Air {
			return false
		}
	}
	return true
}

// Grow lists the blocks of the tree, trunk first. Leaves only replace air
// and are clipped at the grid edge.
func (t Trees) Grow(x, y, z, height int) []physics.TreeBlock {
	out := make([]physics.TreeBlock, 0, height+48)
	for dy := 0; dy < height; dy++ {
		out = append(out, physics.TreeBlock{X: x, Y: y + dy, Z: z, Block: block.Log})
	}
	for ly := height - 3; ly <= height; ly++ {
		r := 2
		if ly >= height-1 {
			r = 1
		}
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if dx == 0 && dz == 0 && ly < height {
					continue
				}
				if r == 1 && ly == height && dx != 0 && dz != 0 {
					continue
				}
				lx, lyy, lz := x+dx, y+ly, z+dz
				if !t.s.InBounds(lx, lyy, lz) || t.s.Block(lx, lyy, lz) != block.Air {
					continue
				}
				out = append(out, physics.TreeBlock{X: lx, Y: lyy, Z: lz, Block: block.Leaves})
			}
		}
	}
	return out
}
