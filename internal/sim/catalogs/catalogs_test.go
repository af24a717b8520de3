package catalogs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cubetick.dev/internal/sim/block"
)

func TestDefaultCatalogCoversEveryNamedBlock(t *testing.T) {
	c := Default()
	for id, name := range block.Names() {
		if !c.Defined(id) {
			t.Fatalf("%s (%d) missing from default catalog", name, id)
		}
	}
	if pal := c.Palette(); len(pal) == 0 || pal[0] != "AIR" {
		t.Fatalf("palette must start with AIR: %v", pal)
	}
}

func TestDefaultCatalogClasses(t *testing.T) {
	c := Default()
	cases := []struct {
		b       block.ID
		opaque  bool
		collide block.Collide
		sound   block.Sound
	}{
		{block.Air, false, block.CollideNone, block.SoundNone},
		{block.Stone, true, block.CollideSolid, block.SoundStone},
		{block.Dirt, true, block.CollideSolid, block.SoundGravel},
		{block.Water, false, block.CollideLiquid, block.SoundNone},
		{block.Glass, false, block.CollideSolid, block.SoundGlass},
		{block.Iron, true, block.CollideSolid, block.SoundMetal},
		{block.LitDust, false, block.CollideNone, block.SoundNone},
		{block.RedTorchOnS, false, block.CollideNone, block.SoundWood},
		{block.TNT, true, block.CollideSolid, block.SoundGrass},
	}
	for _, tc := range cases {
		if got := c.BlocksLight(tc.b); got != tc.opaque {
			t.Fatalf("%s opaque=%v want %v", block.Name(tc.b), got, tc.opaque)
		}
		if got := c.Collide(tc.b); got != tc.collide {
			t.Fatalf("%s collide=%d want %d", block.Name(tc.b), got, tc.collide)
		}
		if got := c.Sound(tc.b); got != tc.sound {
			t.Fatalf("%s sound=%d want %d", block.Name(tc.b), got, tc.sound)
		}
	}
}

func TestParseRejectsSchemaViolation(t *testing.T) {
	raw := []byte(`[{"id":"AIR","draw":"gas","collide":"none","sound":"none"},{"id":"STONE","draw":"shiny","collide":"solid","sound":"stone"}]`)
	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected schema error for unknown draw mode")
	}
}

func TestParseRejectsUnknownBlock(t *testing.T) {
	raw := []byte(`[{"id":"AIR","draw":"gas","collide":"none","sound":"none"},{"id":"UNOBTAINIUM","draw":"opaque","collide":"solid","sound":"metal"}]`)
	_, err := Parse(raw)
	if !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("expected ErrUnknownBlock, got %v", err)
	}
}

func TestParseRequiresAir(t *testing.T) {
	raw := []byte(`[{"id":"STONE","draw":"opaque","collide":"solid","sound":"stone"}]`)
	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected missing AIR error")
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`[{"id":"AIR","draw":"gas","collide":"none","sound":"none"},{"id":"GLASS","draw":"opaque","collide":"solid","sound":"glass"}]`)
	if err := os.WriteFile(filepath.Join(dir, "blocks.json"), raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.BlocksLight(block.Glass) {
		t.Fatalf("override should make glass opaque")
	}
	if c.Defined(block.Stone) || c.BlocksLight(block.Stone) {
		t.Fatalf("stone is not in this catalog and should behave like air")
	}
	if c.DefsDigest == "" {
		t.Fatalf("digest not set")
	}
}
