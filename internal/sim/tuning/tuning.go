package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`
	ChunkSize  int `yaml:"chunk_size"`

	RandomTicksPerChunk int `yaml:"random_ticks_per_chunk"`

	Liquids  Liquids  `yaml:"liquids"`
	Redstone Redstone `yaml:"redstone"`
	Switches Switches `yaml:"switches"`
	TNT      TNT      `yaml:"tnt"`
	Events   Events   `yaml:"events"`
	Edge     Edge     `yaml:"edge"`
}

type Liquids struct {
	LavaDelay   int `yaml:"lava_delay"`
	WaterDelay  int `yaml:"water_delay"`
	SpongeRange int `yaml:"sponge_range"`
	// QueueCeiling is the capacity at which a delay queue gives up and clears.
	QueueCeiling int `yaml:"queue_ceiling"`
}

type Redstone struct {
	MaxPower         int `yaml:"max_power"`
	MaxNetwork       int `yaml:"max_network"`
	MaxOpaque        int `yaml:"max_opaque"`
	MaxDepth         int `yaml:"max_depth"`
	TorchDelay       int `yaml:"torch_delay"`
	TorchQueueMax    int `yaml:"torch_queue_max"`
	BurnoutThreshold int `yaml:"burnout_threshold"`
	BurnoutWindow    int `yaml:"burnout_window"`
	BurnoutMax       int `yaml:"burnout_max"`
	IronDoorMax      int `yaml:"iron_door_max"`
}

type Switches struct {
	ButtonReleaseTicks int `yaml:"button_release_ticks"`
	ButtonQueueMax     int `yaml:"button_queue_max"`
	PlateReleaseTicks  int `yaml:"plate_release_ticks"`
	PlateQueueMax      int `yaml:"plate_queue_max"`
}

type TNT struct {
	Power          int `yaml:"power"`
	FuseTicks      int `yaml:"fuse_ticks"`
	ChainFuseTicks int `yaml:"chain_fuse_ticks"`
	ChainMax       int `yaml:"chain_max"`
	TrackMax       int `yaml:"track_max"`
	FuseMax        int `yaml:"fuse_max"`
}

type Events struct {
	// MaxChainDepth bounds how many generations of block-change events a
	// single external change may cause.
	MaxChainDepth int `yaml:"max_chain_depth"`
}

// Edge describes the liquid that refills cleared cells on the outer x/z
// border between MinY (inclusive) and MaxY (exclusive). An empty Liquid
// disables it.
type Edge struct {
	Liquid string `yaml:"liquid"`
	MinY   int    `yaml:"min_y"`
	MaxY   int    `yaml:"max_y"`
}

// Default returns the stock physics constants.
func Default() Tuning {
	return Tuning{
		TickRateHz:          20,
		ChunkSize:           16,
		RandomTicksPerChunk: 3,
		Liquids: Liquids{
			LavaDelay:    30,
			WaterDelay:   5,
			SpongeRange:  2,
			QueueCeiling: math.MaxInt32 / 4,
		},
		Redstone: Redstone{
			MaxPower:         15,
			MaxNetwork:       4096,
			MaxOpaque:        2048,
			MaxDepth:         3,
			TorchDelay:       2,
			TorchQueueMax:    256,
			BurnoutThreshold: 8,
			BurnoutWindow:    100,
			BurnoutMax:       256,
			IronDoorMax:      64,
		},
		Switches: Switches{
			ButtonReleaseTicks: 20,
			ButtonQueueMax:     64,
			PlateReleaseTicks:  20,
			PlateQueueMax:      64,
		},
		TNT: TNT{
			Power:          4,
			FuseTicks:      60,
			ChainFuseTicks: 4,
			ChainMax:       32,
			TrackMax:       64,
			FuseMax:        64,
		},
		Events: Events{
			MaxChainDepth: 256,
		},
	}
}

// Load reads a tuning file. Keys missing from the file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"tick_rate_hz", t.TickRateHz},
		{"chunk_size", t.ChunkSize},
		{"liquids.queue_ceiling", t.Liquids.QueueCeiling},
		{"redstone.max_power", t.Redstone.MaxPower},
		{"redstone.max_network", t.Redstone.MaxNetwork},
		{"redstone.max_opaque", t.Redstone.MaxOpaque},
		{"redstone.max_depth", t.Redstone.MaxDepth},
		{"redstone.torch_delay", t.Redstone.TorchDelay},
		{"redstone.torch_queue_max", t.Redstone.TorchQueueMax},
		{"redstone.burnout_threshold", t.Redstone.BurnoutThreshold},
		{"redstone.burnout_max", t.Redstone.BurnoutMax},
		{"redstone.iron_door_max", t.Redstone.IronDoorMax},
		{"switches.button_queue_max", t.Switches.ButtonQueueMax},
		{"switches.plate_queue_max", t.Switches.PlateQueueMax},
		{"tnt.track_max", t.TNT.TrackMax},
		{"tnt.fuse_max", t.TNT.FuseMax},
		{"events.max_chain_depth", t.Events.MaxChainDepth},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%s must be > 0 (got %d)", p.name, p.v)
		}
	}
	nonNegative := []struct {
		name string
		v    int
	}{
		{"random_ticks_per_chunk", t.RandomTicksPerChunk},
		{"liquids.lava_delay", t.Liquids.LavaDelay},
		{"liquids.water_delay", t.Liquids.WaterDelay},
		{"liquids.sponge_range", t.Liquids.SpongeRange},
		{"redstone.burnout_window", t.Redstone.BurnoutWindow},
		{"switches.button_release_ticks", t.Switches.ButtonReleaseTicks},
		{"switches.plate_release_ticks", t.Switches.PlateReleaseTicks},
		{"tnt.power", t.TNT.Power},
		{"tnt.fuse_ticks", t.TNT.FuseTicks},
		{"tnt.chain_fuse_ticks", t.TNT.ChainFuseTicks},
		{"tnt.chain_max", t.TNT.ChainMax},
	}
	for _, p := range nonNegative {
		if p.v < 0 {
			return fmt.Errorf("%s must be >= 0 (got %d)", p.name, p.v)
		}
	}
	switch t.Edge.Liquid {
	case "", "water", "lava":
	default:
		return fmt.Errorf("edge.liquid must be water, lava or empty (got %q)", t.Edge.Liquid)
	}
	if t.Edge.Liquid != "" && t.Edge.MaxY < t.Edge.MinY {
		return fmt.Errorf("edge.max_y must be >= edge.min_y")
	}
	return nil
}

// Digest identifies a tuning set: the sha256 of its canonical YAML form.
func (t Tuning) Digest() string {
	raw, err := yaml.Marshal(t)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
