package catalogs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"cubetick.dev/internal/sim/block"
)

//go:embed data/blocks.json
var defaultBlocksJSON []byte

//go:embed data/blocks.schema.json
var blocksSchemaJSON []byte

var ErrUnknownBlock = errors.New("unknown block")

// Draw is how a block is rendered; only DrawOpaque matters to physics.
type Draw string

const (
	DrawGas         Draw = "gas"
	DrawOpaque      Draw = "opaque"
	DrawTransparent Draw = "transparent"
	DrawTranslucent Draw = "translucent"
	DrawSprite      Draw = "sprite"
)

type BlockDef struct {
	ID      string `json:"id"`
	Draw    Draw   `json:"draw"`
	Collide string `json:"collide"`
	Sound   string `json:"sound"`
}

type entry struct {
	defined bool
	opaque  bool
	collide block.Collide
	sound   block.Sound
}

// BlockCatalog answers the per-type geometry queries the physics engine
// needs. Undefined types behave like air.
type BlockCatalog struct {
	Defs       map[string]BlockDef
	DefsDigest string

	table [block.Count]entry
}

var collideNames = map[string]block.Collide{
	"none":   block.CollideNone,
	"liquid": block.CollideLiquid,
	"solid":  block.CollideSolid,
	"climb":  block.CollideClimb,
}

var soundNames = map[string]block.Sound{
	"none":   block.SoundNone,
	"wood":   block.SoundWood,
	"gravel": block.SoundGravel,
	"grass":  block.SoundGrass,
	"stone":  block.SoundStone,
	"metal":  block.SoundMetal,
	"glass":  block.SoundGlass,
	"cloth":  block.SoundCloth,
	"sand":   block.SoundSand,
}

// Load reads blocks.json from configDir.
func Load(configDir string) (*BlockCatalog, error) {
	raw, err := os.ReadFile(filepath.Join(configDir, "blocks.json"))
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Default returns the catalog compiled into the binary.
func Default() *BlockCatalog {
	c, err := Parse(defaultBlocksJSON)
	if err != nil {
		panic(fmt.Sprintf("catalogs: embedded blocks.json: %v", err))
	}
	return c
}

func Parse(raw []byte) (*BlockCatalog, error) {
	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}

	c := &BlockCatalog{
		Defs:       make(map[string]BlockDef, len(defs)),
		DefsDigest: sha256Hex(raw),
	}
	for _, d := range defs {
		id, ok := block.ByName(d.ID)
		if !ok {
			return nil, fmt.Errorf("blocks.json: %w: %s", ErrUnknownBlock, d.ID)
		}
		if _, dup := c.Defs[d.ID]; dup {
			return nil, fmt.Errorf("blocks.json: duplicate id %s", d.ID)
		}
		c.Defs[d.ID] = d
		c.table[id] = entry{
			defined: true,
			opaque:  d.Draw == DrawOpaque,
			collide: collideNames[d.Collide],
			sound:   soundNames[d.Sound],
		}
	}
	if _, ok := c.Defs["AIR"]; !ok {
		return nil, fmt.Errorf("blocks.json: missing AIR")
	}
	return c, nil
}

func validate(raw []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("blocks.schema.json", bytes.NewReader(blocksSchemaJSON)); err != nil {
		return err
	}
	schema, err := compiler.Compile("blocks.schema.json")
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}

// BlocksLight reports whether b is drawn as a full opaque cube.
func (c *BlockCatalog) BlocksLight(b block.ID) bool {
	if int(b) >= len(c.table) {
		return false
	}
	return c.table[b].opaque
}

func (c *BlockCatalog) Collide(b block.ID) block.Collide {
	if int(b) >= len(c.table) {
		return block.CollideNone
	}
	return c.table[b].collide
}

func (c *BlockCatalog) Sound(b block.ID) block.Sound {
	if int(b) >= len(c.table) {
		return block.SoundNone
	}
	return c.table[b].sound
}

// Defined reports whether b has an entry in the catalog.
func (c *BlockCatalog) Defined(b block.ID) bool {
	return int(b) < len(c.table) && c.table[b].defined
}

// Palette returns the defined block names, sorted, with AIR first.
func (c *BlockCatalog) Palette() []string {
	ids := make([]string, 0, len(c.Defs))
	for id := range c.Defs {
		if id != "AIR" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return append([]string{"AIR"}, ids...)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
