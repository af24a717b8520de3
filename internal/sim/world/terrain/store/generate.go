package store

import (
	"cubetick.dev/internal/sim/block"
	genpkg "cubetick.dev/internal/sim/world/terrain/gen"
)

// Generate overwrites the whole grid with terrain from p. p.Height is taken
// from the store.
func (s *Store) Generate(p genpkg.Params) {
	p.Height = s.H
	col := make([]block.ID, s.H)
	for z := 0; z < s.L; z++ {
		for x := 0; x < s.W; x++ {
			genpkg.Column(p, x, z, col)
			ch := s.chunkAt(x, z)
			lx, lz := x%ChunkSize, z%ChunkSize
			for y, b := range col {
				ch.Set(lx, y, lz, b)
			}
		}
	}
	s.rebuildHeightmap()
}

// Flatten overwrites the grid with bedrock at y=0, stone below floor and air
// above it.
func (s *Store) Flatten(floor int) {
	for z := 0; z < s.L; z++ {
		for x := 0; x < s.W; x++ {
			ch := s.chunkAt(x, z)
			lx, lz := x%ChunkSize, z%ChunkSize
			for y := 0; y < s.H; y++ {
				b := block.Air
				switch {
				case y == 0:
					b = block.Bedrock
				case y < floor:
					b = block.Stone
				}
				ch.Set(lx, y, lz, b)
			}
		}
	}
	s.rebuildHeightmap()
}
