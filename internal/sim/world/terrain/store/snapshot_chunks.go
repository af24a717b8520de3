package store

import (
	"fmt"

	"cubetick.dev/internal/persistence/snapshot"
	"cubetick.dev/internal/sim/block"
)

// ExportChunks converts every chunk into snapshot chunks, in key order.
func (s *Store) ExportChunks() []snapshot.ChunkV1 {
	out := make([]snapshot.ChunkV1, 0, len(s.chunks))
	for _, ch := range s.chunks {
		blocks := make([]uint16, len(ch.Blocks))
		for i, b := range ch.Blocks {
			blocks[i] = uint16(b)
		}
		out = append(out, snapshot.ChunkV1{
			CX:     ch.CX,
			CZ:     ch.CZ,
			Height: ch.Height,
			Blocks: blocks,
		})
	}
	return out
}

// ImportChunks rebuilds a w×h×l store from snapshot chunks. Chunks missing
// from the snapshot stay air.
func ImportChunks(w, h, l int, opacity Opacity, chunks []snapshot.ChunkV1) (*Store, error) {
	s := New(w, h, l, opacity)
	for _, ch := range chunks {
		if ch.Height != h {
			return nil, fmt.Errorf("snapshot chunk height mismatch: got %d want %d", ch.Height, h)
		}
		if len(ch.Blocks) != ChunkSize*ChunkSize*h {
			return nil, fmt.Errorf("snapshot chunk blocks length mismatch: got %d want %d", len(ch.Blocks), ChunkSize*ChunkSize*h)
		}
		dst := s.Chunk(ChunkKey{CX: ch.CX, CZ: ch.CZ})
		if dst == nil {
			return nil, fmt.Errorf("snapshot chunk (%d,%d): %w", ch.CX, ch.CZ, ErrOutOfBounds)
		}
		for i, v := range ch.Blocks {
			dst.Blocks[i] = block.ID(v)
		}
		dst.dirty = true
	}
	s.rebuildHeightmap()
	return s, nil
}
