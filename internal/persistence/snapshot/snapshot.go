package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

var ErrBadShape = errors.New("snapshot shape mismatch")

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 captures a grid and the host state around it. Physics timers
// are not stored: the engine reloads from the blocks alone.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed     int64 `json:"seed"`
	TickRate int   `json:"tick_rate_hz"`
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	Length   int   `json:"length"`
	SeaLevel int   `json:"sea_level"`
	Paused   bool  `json:"paused,omitempty"`

	CatalogDigest string `json:"catalog_digest,omitempty"`
	TuningDigest  string `json:"tuning_digest,omitempty"`

	Chunks   []ChunkV1  `json:"chunks"`
	Facings  []FacingV1 `json:"facings,omitempty"`
	Entities []EntityV1 `json:"entities,omitempty"`

	Stats *StatsV1 `json:"stats,omitempty"`
}

type ChunkV1 struct {
	CX     int      `json:"cx"`
	CZ     int      `json:"cz"`
	Height int      `json:"height"`
	Blocks []uint16 `json:"blocks"`
}

// FacingV1 records which neighbour a button or lever hangs on.
type FacingV1 struct {
	Pos    [3]int `json:"pos"`
	Facing int    `json:"facing"`
}

type EntityV1 struct {
	ID      int        `json:"id"`
	Kind    string     `json:"kind"`
	Creeper bool       `json:"creeper,omitempty"`
	HP      int        `json:"hp"`
	Pos     [3]float64 `json:"pos"`
}

type StatsV1 struct {
	Ticks        int `json:"ticks"`
	TorchToggles int `json:"torch_toggles"`
	Burnouts     int `json:"burnouts"`
	Detonations  int `json:"detonations"`
	Dropped      int `json:"dropped"`
	QueueClears  int `json:"queue_clears"`
}

// Validate checks that the chunk list covers a Width×Height×Length grid.
func (s SnapshotV1) Validate() error {
	if s.Header.Version != Version {
		return fmt.Errorf("%w: version %d", ErrBadShape, s.Header.Version)
	}
	if s.Width <= 0 || s.Height <= 0 || s.Length <= 0 {
		return fmt.Errorf("%w: dims %dx%dx%d", ErrBadShape, s.Width, s.Height, s.Length)
	}
	want := ((s.Width + 15) / 16) * ((s.Length + 15) / 16)
	if len(s.Chunks) != want {
		return fmt.Errorf("%w: %d chunks, want %d", ErrBadShape, len(s.Chunks), want)
	}
	return nil
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The header line is for tools that only need the tick; gob repeats it.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// ReadHeader decodes only the JSON header line of a snapshot file.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
