package store

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"cubetick.dev/internal/sim/block"
)

// ChunkSize is the x/z edge of a chunk. Chunks span the full grid height.
const ChunkSize = 16

var ErrOutOfBounds = errors.New("position out of bounds")

type ChunkKey struct {
	CX int
	CZ int
}

type Chunk struct {
	CX, CZ int
	Height int
	Blocks []block.ID // len = 16*16*Height, index x + z*16 + y*256

	dirty bool
	hash  [32]byte
}

func newChunk(cx, cz, height int) *Chunk {
	return &Chunk{
		CX:     cx,
		CZ:     cz,
		Height: height,
		Blocks: make([]block.ID, ChunkSize*ChunkSize*height),
		dirty:  true,
	}
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*ChunkSize + y*ChunkSize*ChunkSize
}

func (c *Chunk) Get(x, y, z int) block.ID {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b block.ID) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], uint16(v))
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

// Opacity tells the store which blocks stop skylight.
type Opacity interface {
	BlocksLight(b block.ID) bool
}

// Store is a bounded W×H×L block grid split into 16-wide chunk columns. It
// keeps a per-column heightmap of the highest light-blocking block so
// skylight queries are O(1).
type Store struct {
	W, H, L int

	cw, cl int
	chunks []*Chunk
	// tops[x+z*W] is one above the highest light-blocking y, 0 when the
	// column is open to the sky all the way down.
	tops []int

	opacity Opacity
}

func New(w, h, l int, opacity Opacity) *Store {
	s := &Store{
		W: w, H: h, L: l,
		cw:      (w + ChunkSize - 1) / ChunkSize,
		cl:      (l + ChunkSize - 1) / ChunkSize,
		tops:    make([]int, w*l),
		opacity: opacity,
	}
	s.chunks = make([]*Chunk, s.cw*s.cl)
	for cz := 0; cz < s.cl; cz++ {
		for cx := 0; cx < s.cw; cx++ {
			s.chunks[cx+cz*s.cw] = newChunk(cx, cz, h)
		}
	}
	return s
}
