package sdftext

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// shaperPool pools HarfbuzzShaper instances. HarfbuzzShaper has internal
// mutable state and is NOT safe for concurrent use, but reusing across
// sequential calls avoids reallocating its buffers.
var shaperPool = sync.Pool{
	New: func() any {
		return &shaping.HarfbuzzShaper{}
	},
}

// ShapedGlyph is one positioned glyph produced by shaping, in logical
// (memory) order. X is the pen position before the glyph, relative to
// the start of the whole text, ignoring line breaking.
type ShapedGlyph struct {
	// GID is the glyph index in the font.
	GID uint32

	// X is the cumulative pen position in layout units.
	X float64

	// Advance is the glyph's horizontal advance including letter spacing.
	Advance float64

	// RuneIndex is the index of the first rune of the cluster this glyph
	// belongs to.
	RuneIndex int

	// RuneCount is the number of runes in the cluster. A ligature glyph
	// covers several runes; combining marks may yield clusters with more
	// glyphs than runes.
	RuneCount int
}

// ForEachGlyph shapes text through HarfBuzz and invokes fn once per
// glyph in logical order. Shaping runs are split at bidi level changes
// (levels holds one resolved level per rune, as produced by
// bidi.Resolve); each run is shaped in its level's direction, with
// ligatures, kerning and contextual forms applied, and RTL runs are
// restored to logical order so the caller sees monotonically advancing
// pen positions.
//
// fontSize is the em size in layout units; letterSpacing is in ems and
// is added to every glyph advance.
func (f *Font) ForEachGlyph(text string, fontSize, letterSpacing float64, levels []uint8, fn func(g ShapedGlyph)) {
	if text == "" {
		return
	}
	runes := []rune(text)
	spacing := letterSpacing * fontSize

	// Each shaping call gets its own lightweight face; font.Face is not
	// safe for concurrent use but font.Font is.
	face := font.NewFace(f.fnt)

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	defer shaperPool.Put(hb)

	var penX float64
	for start := 0; start < len(runes); {
		end := start + 1
		for end < len(runes) && runLevel(levels, end) == runLevel(levels, start) {
			end++
		}

		dir := di.DirectionLTR
		if runLevel(levels, start)&1 == 1 {
			dir = di.DirectionRTL
		}

		output := hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  start,
			RunEnd:    end,
			Direction: dir,
			Face:      face,
			Size:      floatToFixed(fontSize),
			Script:    detectScript(runes[start:end]),
			Language:  language.NewLanguage("en"),
		})

		glyphs := output.Glyphs
		if dir == di.DirectionRTL {
			// HarfBuzz emits RTL runs in visual order; walk them
			// backwards to restore logical order.
			for i := len(glyphs) - 1; i >= 0; i-- {
				penX = emitGlyph(glyphs[i], penX, spacing, fn)
			}
		} else {
			for i := range glyphs {
				penX = emitGlyph(glyphs[i], penX, spacing, fn)
			}
		}

		start = end
	}
}

// emitGlyph converts one shaped glyph, invokes fn, and returns the
// advanced pen position.
func emitGlyph(g shaping.Glyph, penX, spacing float64, fn func(ShapedGlyph)) float64 {
	advance := fixedToFloat(g.XAdvance) + spacing
	fn(ShapedGlyph{
		GID:       uint32(g.GlyphID),
		X:         penX + fixedToFloat(g.XOffset),
		Advance:   advance,
		RuneIndex: g.TextIndex(),
		RuneCount: g.RuneCount,
	})
	return penX + advance
}

// runLevel returns the bidi level of a rune, treating missing level
// data as level 0 (pure LTR).
func runLevel(levels []uint8, i int) uint8 {
	if i < len(levels) {
		return levels[i]
	}
	return 0
}

// detectScript inspects the runes and returns the script of the first
// non-space character. Runs are already split by bidi level, which
// separates the script mixes that matter for shaping.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a float64 value to fixed.Int26_6.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
