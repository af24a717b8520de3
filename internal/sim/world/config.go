package world

type WorldConfig struct {
	ID         string
	TickRateHz int

	Width  int
	Height int
	Length int

	// Worldgen.
	Seed                        int64
	SeaLevel                    int
	Relief                      int
	OreClusterProbScalePermille int
	SaplingPermille             int
	FlowerPermille              int
	// FlatFloor > 0 replaces generated terrain with stone below this height.
	FlatFloor int

	// Operational parameters. These are included in snapshots for deterministic replay/resume.
	SnapshotEveryTicks int
	MaxEditsPerTick    int
	EntityHP           int
	ClientQueue        int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.Width <= 0 {
		c.Width = 64
	}
	if c.Height <= 0 {
		c.Height = 64
	}
	if c.Length <= 0 {
		c.Length = 64
	}
	if c.SeaLevel <= 0 || c.SeaLevel >= c.Height-2 {
		c.SeaLevel = c.Height / 2
	}
	if c.FlatFloor >= c.Height {
		c.FlatFloor = c.Height - 1
	}
	if c.Relief < 0 {
		c.Relief = 0
	}
	if c.SnapshotEveryTicks < 0 {
		c.SnapshotEveryTicks = 0
	}
	if c.MaxEditsPerTick <= 0 {
		c.MaxEditsPerTick = 256
	}
	if c.EntityHP <= 0 {
		c.EntityHP = 20
	}
	if c.ClientQueue <= 0 {
		c.ClientQueue = 64
	}
}
