package sdf

import (
	"bytes"
	"testing"
)

// testAtlas returns a small atlas: 64-texel texture, 8-texel cells,
// so one row holds 8 glyphs.
func testAtlas(t *testing.T) *Atlas {
	t.Helper()
	gen := NewGenerator(Config{Size: 8, Margin: 1.0 / 16.0, Exponent: 9})
	a, err := NewAtlas(AtlasConfig{TextureWidth: 64, GlyphSize: 8}, gen)
	if err != nil {
		t.Fatalf("NewAtlas() error = %v", err)
	}
	return a
}

func outlineFor(side float64) func() (*Outline, error) {
	return func() (*Outline, error) {
		return squareOutline(side), nil
	}
}

func TestAtlasConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*AtlasConfig)
		wantErr bool
	}{
		{"default", func(c *AtlasConfig) {}, false},
		{"width too small", func(c *AtlasConfig) { c.TextureWidth = 32 }, true},
		{"width not power of 2", func(c *AtlasConfig) { c.TextureWidth = 1000 }, true},
		{"glyph size too small", func(c *AtlasConfig) { c.GlyphSize = 4 }, true},
		{"glyph size exceeds width", func(c *AtlasConfig) { c.TextureWidth = 64; c.GlyphSize = 128 }, true},
		{"glyph size does not divide width", func(c *AtlasConfig) { c.GlyphSize = 48 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultAtlasConfig()
			tt.modify(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAtlasGeneratorSizeMismatch(t *testing.T) {
	gen := NewGenerator(Config{Size: 32, Margin: 1.0 / 16.0, Exponent: 9})
	if _, err := NewAtlas(AtlasConfig{TextureWidth: 2048, GlyphSize: 64}, gen); err == nil {
		t.Error("NewAtlas() with mismatched generator size succeeded, want error")
	}
}

func TestAtlasMonotonicIndices(t *testing.T) {
	a := testAtlas(t)

	for i, gid := range []uint32{30, 10, 20} {
		entry, err := a.GetOrCreate(gid, outlineFor(100))
		if err != nil {
			t.Fatalf("GetOrCreate(%d) error = %v", gid, err)
		}
		if entry.Index != i {
			t.Errorf("GetOrCreate(%d).Index = %d, want %d", gid, entry.Index, i)
		}
	}

	// A repeat lookup keeps the original index and never regenerates.
	entry, err := a.GetOrCreate(10, func() (*Outline, error) {
		t.Fatal("outline callback invoked on cache hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("GetOrCreate(10) error = %v", err)
	}
	if entry.Index != 1 {
		t.Errorf("repeat GetOrCreate(10).Index = %d, want 1", entry.Index)
	}

	if got := a.GlyphCount(); got != 3 {
		t.Errorf("GlyphCount() = %d, want 3", got)
	}
	hits, misses := a.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 3", hits, misses)
	}
}

func TestAtlasGet(t *testing.T) {
	a := testAtlas(t)
	if _, ok := a.Get(42); ok {
		t.Error("Get(42) found entry before insertion")
	}
	want, err := a.GetOrCreate(42, outlineFor(100))
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	got, ok := a.Get(42)
	if !ok || got != want {
		t.Errorf("Get(42) = %+v, %v; want %+v, true", got, ok, want)
	}
}

func TestAtlasGrowthPreservesData(t *testing.T) {
	a := testAtlas(t)

	first, err := a.GetOrCreate(0, outlineFor(100))
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	pending := a.DrainNew()
	if len(pending) != 1 {
		t.Fatalf("DrainNew() returned %d glyphs, want 1", len(pending))
	}
	firstField := pending[0].Field

	_, _, h0 := a.Texture()
	if h0 != 8 {
		t.Fatalf("initial texture height = %d, want 8", h0)
	}

	// Fill past the first row (8 cells) to force a growth.
	for gid := uint32(1); gid < 9; gid++ {
		if _, err := a.GetOrCreate(gid, outlineFor(float64(100+gid))); err != nil {
			t.Fatalf("GetOrCreate(%d) error = %v", gid, err)
		}
	}

	data, width, height := a.Texture()
	if height != 16 {
		t.Errorf("texture height after growth = %d, want 16", height)
	}

	// Slot 0 sits at texel (0, 0); its rows must still hold the first
	// glyph's bitmap byte for byte.
	gs := a.Config().GlyphSize
	for y := 0; y < gs; y++ {
		row := data[y*width : y*width+gs]
		want := firstField.Data[y*gs : (y+1)*gs]
		if !bytes.Equal(row, want) {
			t.Fatalf("texture row %d of slot %d changed after growth", y, first.Index)
		}
	}
}

func TestAtlasDrainNew(t *testing.T) {
	a := testAtlas(t)

	if _, err := a.GetOrCreate(1, outlineFor(100)); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if _, err := a.GetOrCreate(2, outlineFor(50)); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	// A cache hit adds nothing to the pending list.
	if _, err := a.GetOrCreate(1, outlineFor(100)); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	pending := a.DrainNew()
	if len(pending) != 2 {
		t.Fatalf("DrainNew() returned %d glyphs, want 2", len(pending))
	}
	if pending[0].Index != 0 || pending[1].Index != 1 {
		t.Errorf("DrainNew() indices = %d, %d; want 0, 1", pending[0].Index, pending[1].Index)
	}
	for _, ng := range pending {
		if ng.Field == nil || len(ng.Field.Data) != 8*8 {
			t.Errorf("DrainNew() glyph %d has malformed field", ng.Index)
		}
	}

	if again := a.DrainNew(); len(again) != 0 {
		t.Errorf("second DrainNew() returned %d glyphs, want 0", len(again))
	}
}

func TestAtlasEmptyGlyph(t *testing.T) {
	a := testAtlas(t)
	entry, err := a.GetOrCreate(5, func() (*Outline, error) {
		return &Outline{GID: 5, Advance: 250}, nil
	})
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if entry.Index != 0 {
		t.Errorf("entry.Index = %d, want 0", entry.Index)
	}
	pending := a.DrainNew()
	if len(pending) != 1 {
		t.Fatalf("DrainNew() returned %d glyphs, want 1", len(pending))
	}
	for i, b := range pending[0].Field.Data {
		if b != 0 {
			t.Fatalf("empty glyph bitmap byte %d = %d, want 0", i, b)
		}
	}
}
