package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"cubetick.dev/internal/sim/world"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	World   WorldConfig   `toml:"world"`
	Paths   PathsConfig   `toml:"paths"`
	Logging LoggingConfig `toml:"logging"`
	Index   IndexConfig   `toml:"index"`
}

type ServerConfig struct {
	BindAddress     string        `toml:"bind_address"`
	TickRateHz      int           `toml:"tick_rate_hz"`
	ClientQueue     int           `toml:"client_queue"`
	MaxEditsPerTick int           `toml:"max_edits_per_tick"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type WorldConfig struct {
	ID       string `toml:"id"`
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	Length   int    `toml:"length"`
	Seed     int64  `toml:"seed"`
	SeaLevel int    `toml:"sea_level"`
	Relief   int    `toml:"relief"`

	// FlatFloor > 0 builds a flat stone world instead of generated terrain.
	FlatFloor int `toml:"flat_floor"`

	SaplingPermille int `toml:"sapling_permille"`
	FlowerPermille  int `toml:"flower_permille"`
	EntityHP        int `toml:"entity_hp"`

	SnapshotEveryTicks int `toml:"snapshot_every_ticks"`
	// Resume loads the newest snapshot under the data dir instead of generating.
	Resume bool `toml:"resume"`
}

type PathsConfig struct {
	Tuning     string `toml:"tuning"`      // empty: built-in defaults
	CatalogDir string `toml:"catalog_dir"` // empty: embedded blocks.json
	DataDir    string `toml:"data_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type IndexConfig struct {
	Enabled    bool   `toml:"enabled"`
	SQLitePath string `toml:"sqlite_path"` // relative paths live under the world dir
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config { return defaults() }

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress:     "127.0.0.1:8080",
			TickRateHz:      20,
			ClientQueue:     64,
			MaxEditsPerTick: 256,
			ShutdownTimeout: 5 * time.Second,
		},
		World: WorldConfig{
			ID:                 "world_1",
			Width:              64,
			Height:             64,
			Length:             64,
			Seed:               1,
			SeaLevel:           32,
			Relief:             6,
			SaplingPermille:    4,
			FlowerPermille:     8,
			EntityHP:           20,
			SnapshotEveryTicks: 3000,
		},
		Paths: PathsConfig{
			DataDir: "data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Index: IndexConfig{
			Enabled:    true,
			SQLitePath: "index/world.sqlite",
		},
	}
}

func (c *Config) validate() error {
	if c.Server.TickRateHz <= 0 || c.Server.TickRateHz > 1000 {
		return fmt.Errorf("server.tick_rate_hz %d out of range", c.Server.TickRateHz)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 || c.World.Length <= 0 {
		return fmt.Errorf("world dims %dx%dx%d must be positive", c.World.Width, c.World.Height, c.World.Length)
	}
	if c.World.SnapshotEveryTicks < 0 {
		return fmt.Errorf("world.snapshot_every_ticks must be >= 0")
	}
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir is required")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q: want json or console", c.Logging.Format)
	}
	return nil
}

// WorldParams maps the file onto the world's runtime parameters.
func (c *Config) WorldParams() world.WorldConfig {
	return world.WorldConfig{
		ID:                 c.World.ID,
		TickRateHz:         c.Server.TickRateHz,
		Width:              c.World.Width,
		Height:             c.World.Height,
		Length:             c.World.Length,
		Seed:               c.World.Seed,
		SeaLevel:           c.World.SeaLevel,
		Relief:             c.World.Relief,
		FlatFloor:          c.World.FlatFloor,
		SaplingPermille:    c.World.SaplingPermille,
		FlowerPermille:     c.World.FlowerPermille,
		SnapshotEveryTicks: c.World.SnapshotEveryTicks,
		MaxEditsPerTick:    c.Server.MaxEditsPerTick,
		EntityHP:           c.World.EntityHP,
		ClientQueue:        c.Server.ClientQueue,
	}
}
