package store

import (
	"crypto/sha256"
	"encoding/hex"

	"cubetick.dev/internal/sim/block"
)

func (s *Store) Dims() (int, int, int) { return s.W, s.H, s.L }

func (s *Store) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < s.W && y < s.H && z < s.L
}

func (s *Store) chunkAt(x, z int) *Chunk {
	return s.chunks[x/ChunkSize+(z/ChunkSize)*s.cw]
}

// Block returns the block at (x,y,z); cells outside the grid read as air.
func (s *Store) Block(x, y, z int) block.ID {
	if !s.InBounds(x, y, z) {
		return block.Air
	}
	return s.chunkAt(x, z).Get(x%ChunkSize, y, z%ChunkSize)
}

// SetBlock stores b and updates the heightmap. Writes outside the grid are
// ignored.
func (s *Store) SetBlock(x, y, z int, b block.ID) {
	if !s.InBounds(x, y, z) {
		return
	}
	s.chunkAt(x, z).Set(x%ChunkSize, y, z%ChunkSize, b)
	s.relight(x, y, z, b)
}

// Edit is SetBlock with bounds checking. It returns the block it replaced.
func (s *Store) Edit(x, y, z int, b block.ID) (block.ID, error) {
	if !s.InBounds(x, y, z) {
		return block.Air, ErrOutOfBounds
	}
	old := s.Block(x, y, z)
	s.SetBlock(x, y, z, b)
	return old, nil
}

// IsLit reports whether skylight reaches the top face of (x,y,z): nothing
// above it in the column blocks light.
func (s *Store) IsLit(x, y, z int) bool {
	if x < 0 || z < 0 || x >= s.W || z >= s.L {
		return true
	}
	return y+1 >= s.tops[x+z*s.W]
}

func (s *Store) relight(x, y, z int, b block.ID) {
	i := x + z*s.W
	switch {
	case s.opacity.BlocksLight(b):
		if y+1 > s.tops[i] {
			s.tops[i] = y + 1
		}
	case y+1 == s.tops[i]:
		s.tops[i] = s.scanTop(x, y-1, z)
	}
}

func (s *Store) scanTop(x, from, z int) int {
	ch := s.chunkAt(x, z)
	lx, lz := x%ChunkSize, z%ChunkSize
	for y := from; y >= 0; y-- {
		if s.opacity.BlocksLight(ch.Get(lx, y, lz)) {
			return y + 1
		}
	}
	return 0
}

func (s *Store) rebuildHeightmap() {
	for z := 0; z < s.L; z++ {
		for x := 0; x < s.W; x++ {
			s.tops[x+z*s.W] = s.scanTop(x, s.H-1, z)
		}
	}
}

// Top returns one above the highest light-blocking y of column (x,z).
func (s *Store) Top(x, z int) int {
	if x < 0 || z < 0 || x >= s.W || z >= s.L {
		return 0
	}
	return s.tops[x+z*s.W]
}

func (s *Store) ChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for cz := 0; cz < s.cl; cz++ {
		for cx := 0; cx < s.cw; cx++ {
			keys = append(keys, ChunkKey{CX: cx, CZ: cz})
		}
	}
	return keys
}

func (s *Store) Chunk(k ChunkKey) *Chunk {
	if k.CX < 0 || k.CZ < 0 || k.CX >= s.cw || k.CZ >= s.cl {
		return nil
	}
	return s.chunks[k.CX+k.CZ*s.cw]
}

// ChunkOf returns the key of the chunk holding column (x,z).
func ChunkOf(x, z int) ChunkKey {
	return ChunkKey{CX: x / ChunkSize, CZ: z / ChunkSize}
}

// Digest hashes every chunk digest in key order.
func (s *Store) Digest() string {
	h := sha256.New()
	for _, ch := range s.chunks {
		d := ch.Digest()
		h.Write(d[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
