package sdftext

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"

	"github.com/gogpu/sdftext/sdf"
)

// Font is a parsed font plus the caches the engine needs: font-unit
// metrics, a rune→glyph lookup, and glyph outlines extracted once and
// kept for the lifetime of the font.
//
// Font is safe for concurrent use. The underlying typesetting
// font.Face is not, so the one held for metrics and outline queries is
// guarded by a mutex; shaping creates lightweight per-call faces.
type Font struct {
	key string
	fnt *font.Font

	upem      float64
	ascender  float64 // font units, positive up
	descender float64 // font units, typically negative
	lineGap   float64
	capHeight float64
	xHeight   float64

	mu       sync.RWMutex
	face     *font.Face
	outlines map[uint32]*sdf.Outline
}

// newFont parses TTF/OTF bytes and derives the metrics the layout
// engine uses.
func newFont(key string, data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	f := &Font{
		key:      key,
		fnt:      face.Font,
		face:     face,
		upem:     float64(face.Upem()),
		outlines: make(map[uint32]*sdf.Outline),
	}

	if ext, ok := face.FontHExtents(); ok {
		f.ascender = float64(ext.Ascender)
		f.descender = float64(ext.Descender)
		f.lineGap = float64(ext.LineGap)
	} else {
		// hhea absent; fall back to typographic convention.
		f.ascender = f.upem * 0.8
		f.descender = -f.upem * 0.2
	}

	// Cap and x heights from the ink bounds of H and x, the same glyphs
	// the metrics are defined by. Missing glyphs fall back to ascender
	// ratios.
	f.capHeight = f.glyphTop('H', f.ascender*0.7)
	f.xHeight = f.glyphTop('x', f.ascender*0.5)

	return f, nil
}

// glyphTop returns the top of a reference glyph's ink bounds, or
// fallback when the glyph is absent or has no outline.
func (f *Font) glyphTop(r rune, fallback float64) float64 {
	gid, ok := f.GlyphForRune(r)
	if !ok {
		return fallback
	}
	outline, err := f.Outline(gid)
	if err != nil || outline.IsEmpty() {
		return fallback
	}
	return outline.Bounds.MaxY
}

// Key identifies the font source (URL or path) this font was loaded from.
func (f *Font) Key() string { return f.key }

// UnitsPerEm returns the font's design grid size.
func (f *Font) UnitsPerEm() float64 { return f.upem }

// Ascender returns the ascent above the baseline, in font units.
func (f *Font) Ascender() float64 { return f.ascender }

// Descender returns the descent below the baseline, in font units
// (typically negative).
func (f *Font) Descender() float64 { return f.descender }

// LineGap returns the recommended extra spacing between lines, in font
// units.
func (f *Font) LineGap() float64 { return f.lineGap }

// CapHeight returns the height of uppercase letters, in font units.
func (f *Font) CapHeight() float64 { return f.capHeight }

// XHeight returns the height of lowercase letters, in font units.
func (f *Font) XHeight() float64 { return f.xHeight }

// GlyphForRune returns the glyph ID mapped to a rune by the font's
// character map.
func (f *Font) GlyphForRune(r rune) (uint32, bool) {
	f.mu.Lock()
	gid, ok := f.face.NominalGlyph(r)
	f.mu.Unlock()
	return uint32(gid), ok
}

// Outline returns the vector outline of a glyph in font units. Outlines
// are extracted once and cached for the lifetime of the font. Glyphs
// without vector data (bitmap or SVG color glyphs) return ErrNoOutline.
func (f *Font) Outline(gid uint32) (*sdf.Outline, error) {
	f.mu.RLock()
	if o, ok := f.outlines[gid]; ok {
		f.mu.RUnlock()
		return o, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if o, ok := f.outlines[gid]; ok {
		return o, nil
	}

	o, err := f.extractOutline(gid)
	if err != nil {
		return nil, err
	}
	f.outlines[gid] = o
	return o, nil
}

// extractOutline converts typesetting glyph data into an sdf.Outline.
// Must be called with the write lock held (font.Face is not safe for
// concurrent use).
func (f *Font) extractOutline(gid uint32) (*sdf.Outline, error) {
	advance := float64(f.face.HorizontalAdvance(font.GID(gid)))

	data := f.face.GlyphData(font.GID(gid))
	glyphOutline, ok := data.(font.GlyphOutline)
	if !ok {
		return nil, ErrNoOutline
	}

	return outlineFromSegments(gid, advance, glyphOutline.Segments), nil
}

// outlineFromSegments converts opentype path segments into an
// sdf.Outline with a tight bounding box.
func outlineFromSegments(gid uint32, advance float64, segs []ot.Segment) *sdf.Outline {
	if len(segs) == 0 {
		// Whitespace and other blank glyphs keep their advance.
		return &sdf.Outline{GID: gid, Advance: advance}
	}

	out := &sdf.Outline{
		GID:      gid,
		Segments: make([]sdf.PathSegment, 0, len(segs)),
		Advance:  advance,
	}

	minX, minY := 1e30, 1e30
	maxX, maxY := -1e30, -1e30
	grow := func(p sdf.Point) {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	for _, seg := range segs {
		var ps sdf.PathSegment
		var nargs int
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			ps.Op = sdf.OpMoveTo
			nargs = 1
		case ot.SegmentOpLineTo:
			ps.Op = sdf.OpLineTo
			nargs = 1
		case ot.SegmentOpQuadTo:
			ps.Op = sdf.OpQuadTo
			nargs = 2
		case ot.SegmentOpCubeTo:
			ps.Op = sdf.OpCubicTo
			nargs = 3
		default:
			continue
		}
		for i := 0; i < nargs; i++ {
			p := sdf.Point{X: float64(seg.Args[i].X), Y: float64(seg.Args[i].Y)}
			ps.Points[i] = p
			grow(p)
		}
		out.Segments = append(out.Segments, ps)
	}

	out.Bounds = sdf.Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	return out
}
