package sdf

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// AtlasConfig holds atlas configuration.
type AtlasConfig struct {
	// TextureWidth is the backing texture width in texels.
	// Must be a power of 2. Default: 2048
	TextureWidth int

	// GlyphSize is the size of each glyph cell.
	// Must divide TextureWidth. Default: 64
	GlyphSize int
}

// DefaultAtlasConfig returns default configuration.
func DefaultAtlasConfig() AtlasConfig {
	return AtlasConfig{
		TextureWidth: 2048,
		GlyphSize:    64,
	}
}

// Validate checks if the configuration is valid.
func (c *AtlasConfig) Validate() error {
	if c.TextureWidth < 64 {
		return &AtlasConfigError{Field: "TextureWidth", Reason: "must be at least 64"}
	}
	if c.TextureWidth > 16384 {
		return &AtlasConfigError{Field: "TextureWidth", Reason: "must be at most 16384"}
	}
	if c.TextureWidth&(c.TextureWidth-1) != 0 {
		return &AtlasConfigError{Field: "TextureWidth", Reason: "must be power of 2"}
	}
	if c.GlyphSize < 8 {
		return &AtlasConfigError{Field: "GlyphSize", Reason: "must be at least 8"}
	}
	if c.GlyphSize > c.TextureWidth {
		return &AtlasConfigError{Field: "GlyphSize", Reason: "must be at most TextureWidth"}
	}
	if c.TextureWidth%c.GlyphSize != 0 {
		return &AtlasConfigError{Field: "GlyphSize", Reason: "must divide TextureWidth"}
	}
	return nil
}

// AtlasConfigError represents a configuration validation error.
type AtlasConfigError struct {
	Field  string
	Reason string
}

func (e *AtlasConfigError) Error() string {
	return "sdf: invalid atlas config." + e.Field + ": " + e.Reason
}

// Entry describes one glyph's permanent slot in the atlas.
type Entry struct {
	// Index is the glyph's slot index. Indices are assigned in
	// insertion order and never change or get reused; the texel
	// position of slot i is (i%cols*GlyphSize, i/cols*GlyphSize).
	Index int

	// RenderingBounds is the font-unit region the glyph's bitmap covers.
	RenderingBounds Rect
}

// NewGlyph is one freshly generated bitmap awaiting GPU upload.
type NewGlyph struct {
	Index int
	Field *Field
}

// Atlas caches generated distance fields per glyph in a single growable
// backing texture. Glyphs are never evicted: an Entry handed out once
// stays valid for the lifetime of the atlas.
type Atlas struct {
	mu        sync.RWMutex
	config    AtlasConfig
	generator *Generator
	entries   map[uint32]Entry
	data      []byte
	rows      int
	newGlyphs []NewGlyph

	// Statistics (atomic for lock-free reads)
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewAtlas creates an atlas whose fields are generated by the given
// generator. The generator's Size must equal the atlas GlyphSize.
func NewAtlas(config AtlasConfig, generator *Generator) (*Atlas, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if generator == nil {
		genConfig := DefaultConfig()
		genConfig.Size = config.GlyphSize
		generator = NewGenerator(genConfig)
	}
	if generator.Config().Size != config.GlyphSize {
		return nil, &AtlasConfigError{Field: "GlyphSize", Reason: "must match generator Size"}
	}
	return &Atlas{
		config:    config,
		generator: generator,
		entries:   make(map[uint32]Entry),
	}, nil
}

// NewAtlasDefault creates an atlas with default configuration.
func NewAtlasDefault() *Atlas {
	a, _ := NewAtlas(DefaultAtlasConfig(), nil)
	return a
}

// cols returns the number of glyph cells per texture row.
func (a *Atlas) cols() int {
	return a.config.TextureWidth / a.config.GlyphSize
}

// GetOrCreate returns the atlas entry for a glyph, generating and
// inserting its distance field on first request. The outline callback
// is only invoked on a miss; concurrent requests for the same glyph
// generate at most once.
func (a *Atlas) GetOrCreate(gid uint32, outline func() (*Outline, error)) (Entry, error) {
	a.mu.RLock()
	if entry, ok := a.entries[gid]; ok {
		a.mu.RUnlock()
		a.hits.Add(1)
		return entry, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if entry, ok := a.entries[gid]; ok {
		a.hits.Add(1)
		return entry, nil
	}
	a.misses.Add(1)

	ol, err := outline()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load outline for glyph %d: %w", gid, err)
	}

	field, err := a.generator.Generate(ol)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to generate field for glyph %d: %w", gid, err)
	}

	index := len(a.entries)
	a.ensureCapacity(index + 1)
	a.copyField(field, index)

	entry := Entry{Index: index, RenderingBounds: field.RenderingBounds}
	a.entries[gid] = entry
	a.newGlyphs = append(a.newGlyphs, NewGlyph{Index: index, Field: field})

	return entry, nil
}

// Get returns the entry for an already cached glyph.
func (a *Atlas) Get(gid uint32) (Entry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.entries[gid]
	return entry, ok
}

// ensureCapacity grows the backing texture to hold at least n glyph
// slots. Growth doubles the row count; existing data is preserved
// verbatim since rows are appended below the current content.
// Must be called with write lock held.
func (a *Atlas) ensureCapacity(n int) {
	cols := a.cols()
	neededRows := (n + cols - 1) / cols
	if neededRows <= a.rows {
		return
	}
	rows := a.rows
	if rows == 0 {
		rows = 1
	}
	for rows < neededRows {
		rows *= 2
	}
	data := make([]byte, a.config.TextureWidth*rows*a.config.GlyphSize)
	copy(data, a.data)
	a.data = data
	a.rows = rows
}

// copyField blits one glyph bitmap into its slot.
// Must be called with write lock held.
func (a *Atlas) copyField(field *Field, index int) {
	cols := a.cols()
	gs := a.config.GlyphSize
	x0 := (index % cols) * gs
	y0 := (index / cols) * gs
	for y := 0; y < gs; y++ {
		dst := (y0+y)*a.config.TextureWidth + x0
		src := y * gs
		copy(a.data[dst:dst+gs], field.Data[src:src+gs])
	}
}

// DrainNew returns the bitmaps generated since the previous drain and
// clears the pending list. The caller uploads them to the GPU texture
// at the slot positions implied by their indices.
func (a *Atlas) DrainNew() []NewGlyph {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.newGlyphs
	a.newGlyphs = nil
	return out
}

// Texture returns the backing texture data and its dimensions in
// texels. The returned slice aliases internal storage until the next
// growth; callers that hold it across GetOrCreate calls must copy.
func (a *Atlas) Texture() (data []byte, width, height int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.data, a.config.TextureWidth, a.rows * a.config.GlyphSize
}

// GlyphCount returns the number of cached glyphs.
func (a *Atlas) GlyphCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Stats returns cache statistics.
func (a *Atlas) Stats() (hits, misses uint64) {
	return a.hits.Load(), a.misses.Load()
}

// Config returns the atlas configuration.
func (a *Atlas) Config() AtlasConfig { return a.config }

// Generator returns the generator used by this atlas.
func (a *Atlas) Generator() *Generator { return a.generator }
