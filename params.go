package sdftext

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/sdftext/bidi"
)

// Align specifies horizontal alignment of lines within the block.
type Align uint8

const (
	// AlignLeft aligns lines to the block's left edge.
	AlignLeft Align = iota
	// AlignRight aligns lines to the block's right edge.
	AlignRight
	// AlignCenter centers lines within the block.
	AlignCenter
	// AlignJustify stretches soft-wrapped lines to the block width by
	// widening whitespace. Hard-broken and final lines stay left-aligned.
	AlignJustify
)

// String returns the string representation of the alignment.
func (a Align) String() string {
	switch a {
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// WhiteSpace controls soft wrapping.
type WhiteSpace uint8

const (
	// WhiteSpaceNormal wraps lines at soft break opportunities when they
	// exceed MaxWidth.
	WhiteSpaceNormal WhiteSpace = iota
	// WhiteSpaceNoWrap disables soft wrapping; only newline characters
	// break lines.
	WhiteSpaceNoWrap
)

// OverflowWrap controls breaking of words longer than MaxWidth.
type OverflowWrap uint8

const (
	// OverflowWrapNormal lets an unbreakable word overflow the block.
	OverflowWrapNormal OverflowWrap = iota
	// OverflowWrapBreakWord breaks inside a word when no earlier soft
	// break fits.
	OverflowWrapBreakWord
)

// LineHeight is either the font's natural line height or an explicit
// multiplier of the font size. The zero value means normal.
type LineHeight struct {
	// Multiplier scales the font size when Normal is false.
	Multiplier float64

	set bool
}

// LineHeightNormal derives line height from the font's ascender,
// descender and line gap.
func LineHeightNormal() LineHeight { return LineHeight{} }

// LineHeightMultiple sets line height to m times the font size.
func LineHeightMultiple(m float64) LineHeight {
	return LineHeight{Multiplier: m, set: true}
}

// IsNormal reports whether the font's natural line height is used.
func (lh LineHeight) IsNormal() bool { return !lh.set }

// AnchorKeyword is a named anchor position.
type AnchorKeyword uint8

const (
	anchorNone AnchorKeyword = iota
	// AnchorLeft anchors at the block's left edge (AnchorX only).
	AnchorLeft
	// AnchorCenter anchors at the horizontal center (AnchorX only).
	AnchorCenter
	// AnchorRight anchors at the block's right edge (AnchorX only).
	AnchorRight
	// AnchorTop anchors at the block's top edge (AnchorY only).
	AnchorTop
	// AnchorTopBaseline anchors at the first line's baseline (AnchorY only).
	AnchorTopBaseline
	// AnchorTopCap anchors at the first line's cap height (AnchorY only).
	AnchorTopCap
	// AnchorTopEx anchors at the first line's x-height (AnchorY only).
	AnchorTopEx
	// AnchorMiddle anchors at the vertical center (AnchorY only).
	AnchorMiddle
	// AnchorBottom anchors at the block's bottom edge (AnchorY only).
	AnchorBottom
)

// Anchor positions the layout origin relative to the text block. The
// zero value anchors at the block's top-left corner.
type Anchor struct {
	value   float64
	percent bool
	keyword AnchorKeyword
}

// AnchorValue anchors at an absolute offset in layout units from the
// block's left (AnchorX) or top (AnchorY) edge.
func AnchorValue(v float64) Anchor { return Anchor{value: v} }

// AnchorPercent anchors at a percentage of the block width or height.
// AnchorPercent(50) is equivalent to AnchorCenter / AnchorMiddle.
func AnchorPercent(p float64) Anchor { return Anchor{value: p, percent: true} }

// AnchorAt anchors at a named position.
func AnchorAt(k AnchorKeyword) Anchor { return Anchor{keyword: k} }

// ParseAnchor parses an anchor expression: a number ("12.5"), a
// percentage ("50%"), or a keyword ("center", "top-baseline", ...).
func ParseAnchor(s string) (Anchor, error) {
	switch strings.TrimSpace(s) {
	case "left":
		return AnchorAt(AnchorLeft), nil
	case "center":
		return AnchorAt(AnchorCenter), nil
	case "right":
		return AnchorAt(AnchorRight), nil
	case "top":
		return AnchorAt(AnchorTop), nil
	case "top-baseline":
		return AnchorAt(AnchorTopBaseline), nil
	case "top-cap":
		return AnchorAt(AnchorTopCap), nil
	case "top-ex":
		return AnchorAt(AnchorTopEx), nil
	case "middle":
		return AnchorAt(AnchorMiddle), nil
	case "bottom":
		return AnchorAt(AnchorBottom), nil
	}
	t := strings.TrimSpace(s)
	if strings.HasSuffix(t, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(t, "%"), 64)
		if err != nil {
			return Anchor{}, &ParamsError{Field: "Anchor", Reason: "invalid percentage " + strconv.Quote(s)}
		}
		return AnchorPercent(p), nil
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return Anchor{}, &ParamsError{Field: "Anchor", Reason: "invalid anchor " + strconv.Quote(s)}
	}
	return AnchorValue(v), nil
}

// Color is an sRGB triple attached to glyphs via Params.ColorRanges.
type Color struct {
	R, G, B uint8
}

// ColorRange colors all runes from Start (inclusive) to the next
// range's start, or to the end of the text for the last range.
type ColorRange struct {
	// Start is the rune index where this color begins.
	Start int
	Color Color
}

// Params describes one layout request.
type Params struct {
	// Text is the string to lay out. CR and CRLF are normalized to LF.
	Text string

	// Font is a URL (http/https) or local file path of a TTF/OTF font.
	// Empty selects the engine's default font.
	Font string

	// FontSize is the em size in layout units. Default: 400 (font units
	// scale, matching an unscaled em when UnitsPerEm is 400).
	FontSize float64

	// LetterSpacing is extra advance per glyph, in ems.
	LetterSpacing float64

	// LineHeight selects the line height. Zero value: normal.
	LineHeight LineHeight

	// MaxWidth constrains soft wrapping. Zero or infinite disables it.
	MaxWidth float64

	// Direction is the base paragraph direction. Default: auto-detect
	// per UAX#9 P2/P3.
	Direction bidi.Direction

	// TextAlign aligns lines within the block.
	TextAlign Align

	// TextIndent indents the first line of each block, in layout units.
	TextIndent float64

	// WhiteSpace enables or disables soft wrapping.
	WhiteSpace WhiteSpace

	// OverflowWrap controls mid-word breaking of overlong words.
	OverflowWrap OverflowWrap

	// AnchorX positions the horizontal origin. Zero value: left edge.
	AnchorX Anchor

	// AnchorY positions the vertical origin. Zero value: top edge.
	AnchorY Anchor

	// IncludeCaretPositions adds per-rune caret geometry to the result.
	IncludeCaretPositions bool

	// ColorRanges assigns per-glyph colors. Must be sorted by Start;
	// the first range should start at 0.
	ColorRanges []ColorRange

	// SDFGlyphSize overrides the per-glyph bitmap size for this request.
	// Zero uses the engine default. Distinct sizes use distinct atlases.
	SDFGlyphSize int
}

// withDefaults returns a copy with unset fields replaced by defaults.
func (p Params) withDefaults(c Config) Params {
	if p.FontSize <= 0 {
		p.FontSize = defaultFontSize
	}
	if p.MaxWidth <= 0 || math.IsInf(p.MaxWidth, 1) {
		p.MaxWidth = math.Inf(1)
	}
	if p.SDFGlyphSize <= 0 {
		p.SDFGlyphSize = c.SDFGlyphSize
	}
	if p.Font == "" {
		p.Font = c.DefaultFontURL
	}
	return p
}

// validate checks params that defaulting cannot repair.
func (p Params) validate() error {
	if math.IsNaN(p.FontSize) || math.IsInf(p.FontSize, 0) {
		return &ParamsError{Field: "FontSize", Reason: "must be finite"}
	}
	if math.IsNaN(p.MaxWidth) {
		return &ParamsError{Field: "MaxWidth", Reason: "must not be NaN"}
	}
	if !p.LineHeight.IsNormal() && p.LineHeight.Multiplier <= 0 {
		return &ParamsError{Field: "LineHeight", Reason: "multiplier must be positive"}
	}
	if p.SDFGlyphSize < 0 {
		return &ParamsError{Field: "SDFGlyphSize", Reason: "must be non-negative"}
	}
	for i := 1; i < len(p.ColorRanges); i++ {
		if p.ColorRanges[i].Start <= p.ColorRanges[i-1].Start {
			return &ParamsError{Field: "ColorRanges", Reason: "starts must be strictly increasing"}
		}
	}
	return nil
}
