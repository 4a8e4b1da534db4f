package sdftext

import (
	"time"

	"github.com/gogpu/sdftext/sdf"
)

// chunkSize is the number of renderable glyphs covered by one entry of
// Result.ChunkedBounds. Consumers use the per-chunk rectangles for
// coarse frustum culling of long texts.
const chunkSize = 8192

// ChunkBounds is the bounding rectangle of one run of consecutive
// renderable glyphs.
type ChunkBounds struct {
	// Start and End delimit the glyph range [Start, End).
	Start, End int

	// Rect is [minX, minY, maxX, maxY] in anchored layout units.
	Rect [4]float64
}

// Timings breaks down where a layout request spent its time.
type Timings struct {
	// FontLoad covers fetching and parsing the font (zero on cache hits).
	FontLoad time.Duration

	// Typeset covers bidi resolution, shaping, wrapping and positioning.
	Typeset time.Duration

	// SDF covers distance-field generation for previously unseen glyphs.
	SDF time.Duration

	// Total is the full Process duration.
	Total time.Duration
}

// Result is the output of one layout request. All slices are freshly
// allocated per request; a Result is immutable once returned and safe
// to hand to another goroutine.
//
// Coordinates have their origin at the anchor point, x rightward,
// y upward. The first line's top edge sits at the anchored top; text
// flows into negative y.
type Result struct {
	// GlyphBounds holds one [minX, minY, maxX, maxY] quad per
	// renderable glyph (whitespace produces no quad). The quad covers
	// the glyph's SDF rendering bounds, so adjacent quads overlap by
	// the distance-field margin.
	GlyphBounds []float32

	// GlyphAtlasIndices holds one atlas slot index per renderable
	// glyph, as float32 for direct vertex-attribute upload.
	GlyphAtlasIndices []float32

	// GlyphColors holds one RGB triple per renderable glyph. Empty
	// unless Params.ColorRanges was set.
	GlyphColors []uint8

	// CaretPositions holds three float32 per rune of the input text:
	// the caret x before the rune, the caret x after the rune, and the
	// bottom y of the caret on that rune's line. For runes covered by a
	// ligature the advance is split evenly. Empty unless
	// Params.IncludeCaretPositions was set.
	CaretPositions []float32

	// CaretHeight is the caret extent above its bottom coordinate.
	CaretHeight float64

	// Font metrics scaled to the request's font size.
	Ascender   float64
	Descender  float64
	CapHeight  float64
	XHeight    float64
	LineHeight float64

	// TopBaseline is the y of the first line's baseline.
	TopBaseline float64

	// BlockBounds is [minX, minY, maxX, maxY] of the laid-out block
	// including every line box.
	BlockBounds [4]float64

	// VisibleBounds is the union of all glyph quads; empty text or
	// whitespace-only text leaves it equal to BlockBounds.
	VisibleBounds [4]float64

	// ChunkedBounds partitions the glyphs into runs of chunkSize with a
	// bounding rect each.
	ChunkedBounds []ChunkBounds

	// NewGlyphs are the SDF bitmaps generated by this request, to be
	// uploaded into the atlas texture by the consumer.
	NewGlyphs []sdf.NewGlyph

	// Timings is the per-phase duration breakdown.
	Timings Timings
}

// GlyphCount returns the number of renderable glyphs in the result.
func (r *Result) GlyphCount() int {
	return len(r.GlyphAtlasIndices)
}
