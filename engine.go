package sdftext

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/sdftext/bidi"
	"github.com/gogpu/sdftext/sdf"
)

// layoutFont is the view of a font the typesetting pipeline needs.
// *Font implements it; tests substitute deterministic fakes.
type layoutFont interface {
	Key() string
	UnitsPerEm() float64
	Ascender() float64
	Descender() float64
	LineGap() float64
	CapHeight() float64
	XHeight() float64
	GlyphForRune(r rune) (uint32, bool)
	Outline(gid uint32) (*sdf.Outline, error)
	ForEachGlyph(text string, fontSize, letterSpacing float64, levels []uint8, fn func(g ShapedGlyph))
}

// Engine is the text layout engine. It owns the font loader cache and
// one glyph atlas per (font, SDF size) pair.
//
// Engine is safe for concurrent use.
type Engine struct {
	config Config
	loader *fontLoader

	mu      sync.Mutex
	atlases map[atlasKey]*sdf.Atlas
}

type atlasKey struct {
	font      string
	glyphSize int
}

// NewEngine creates an engine with the given configuration. Invalid
// fields are replaced by defaults; use Config.Validate to check first.
func NewEngine(config Config) *Engine {
	if config.Validate() != nil {
		def := DefaultConfig()
		if config.DefaultFontURL == "" {
			config.DefaultFontURL = def.DefaultFontURL
		}
		if config.SDFGlyphSize < 8 || config.SDFGlyphSize > 1024 {
			config.SDFGlyphSize = def.SDFGlyphSize
		}
		if config.SDFExponent < 1 {
			config.SDFExponent = def.SDFExponent
		}
		if config.TextureWidth < 64 || config.TextureWidth&(config.TextureWidth-1) != 0 {
			config.TextureWidth = def.TextureWidth
		}
		if config.TextureWidth%config.SDFGlyphSize != 0 {
			config.SDFGlyphSize = def.SDFGlyphSize
			config.TextureWidth = def.TextureWidth
		}
	}
	return &Engine{
		config:  config,
		loader:  newFontLoader(config.DefaultFontURL),
		atlases: make(map[atlasKey]*sdf.Atlas),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Process lays out text per the given parameters and returns the glyph
// geometry, atlas references and freshly generated SDF bitmaps.
func (e *Engine) Process(ctx context.Context, p Params) (*Result, error) {
	return e.run(ctx, p, false)
}

// Measure computes metrics and bounds only: no atlas entries, caret
// positions or colors are produced. It is cheaper than Process when the
// caller only needs the block size.
func (e *Engine) Measure(ctx context.Context, p Params) (*Result, error) {
	return e.run(ctx, p, true)
}

func (e *Engine) run(ctx context.Context, p Params, measureOnly bool) (*Result, error) {
	start := time.Now()

	p = p.withDefaults(e.config)
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	fnt, err := e.loader.Load(ctx, p.Font)
	if err != nil {
		return nil, err
	}
	fontLoad := time.Since(loadStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := e.typeset(p, fnt, measureOnly)
	if err != nil {
		return nil, err
	}
	res.Timings.FontLoad = fontLoad
	res.Timings.Total = time.Since(start)

	Logger().Debug("layout complete",
		"runes", len([]rune(p.Text)),
		"glyphs", res.GlyphCount(),
		"newGlyphs", len(res.NewGlyphs),
		"elapsed", res.Timings.Total)
	return res, nil
}

// glyphInfo is one shaped glyph plus the layout state attached to it as
// the pipeline progresses.
type glyphInfo struct {
	ShapedGlyph

	penX float64 // pen position ignoring line breaking
	x    float64 // final visual x, line-relative then anchored
	adv  float64 // advance after justification widening
	line int

	whitespace bool
	newline    bool
}

// lineInfo is one laid-out line.
type lineInfo struct {
	glyphStart, glyphEnd int // glyph index range [start, end)
	runeStart, runeEnd   int // rune index range [start, end)
	originX              float64
	width                float64 // excluding trailing whitespace
	softWrapped          bool
}

func (e *Engine) typeset(p Params, fnt layoutFont, measureOnly bool) (*Result, error) {
	typesetStart := time.Now()

	text := normalizeNewlines(p.Text)
	runes := []rune(text)

	bidiRes := bidi.Resolve(text, p.Direction)

	// Scaled metrics.
	fsMult := p.FontSize / fnt.UnitsPerEm()
	ascender := fnt.Ascender() * fsMult
	descender := fnt.Descender() * fsMult
	var lineHeight float64
	if p.LineHeight.IsNormal() {
		lineHeight = (fnt.Ascender() - fnt.Descender() + fnt.LineGap()) * fsMult
	} else {
		lineHeight = p.LineHeight.Multiplier * p.FontSize
	}
	halfLeading := (lineHeight - (ascender - descender)) / 2
	topBaseline := -(halfLeading + ascender)
	caretHeight := math.Min(lineHeight, ascender-descender)
	caretBottom := (ascender+descender)/2 - caretHeight/2

	// Shape the whole text in logical order.
	glyphs := make([]glyphInfo, 0, len(runes))
	var pen float64
	fnt.ForEachGlyph(text, p.FontSize, p.LetterSpacing, bidiRes.Levels, func(g ShapedGlyph) {
		gi := glyphInfo{ShapedGlyph: g, penX: pen, adv: g.Advance}
		if g.RuneIndex < len(runes) {
			switch runes[g.RuneIndex] {
			case '\n':
				gi.newline = true
			case ' ', '\t':
				gi.whitespace = true
			}
		}
		pen += g.Advance
		glyphs = append(glyphs, gi)
	})

	lines := e.breakLines(p, glyphs)

	// Block extent. The block hugs the longest natural line until a soft
	// wrap occurs; from then on it is the wrap width.
	blockWidth := 0.0
	wrapped := false
	for i, ln := range lines {
		w := ln.width
		if i == 0 {
			w += p.TextIndent
		}
		if w > blockWidth {
			blockWidth = w
		}
		if ln.softWrapped {
			wrapped = true
		}
	}
	if wrapped && !math.IsInf(p.MaxWidth, 1) {
		blockWidth = p.MaxWidth
	}
	blockHeight := float64(len(lines)) * lineHeight

	anchorX := resolveAnchorX(p.AnchorX, blockWidth)
	anchorY := resolveAnchorY(p.AnchorY, blockHeight, topBaseline, fnt.CapHeight()*fsMult, fnt.XHeight()*fsMult)

	// Position glyphs line by line: alignment, justification, bidi
	// reordering and mirrored-form substitution.
	for li := range lines {
		e.positionLine(p, glyphs, &lines[li], li, blockWidth, anchorX, bidiRes, runes, fnt, text)
	}

	result := &Result{
		CaretHeight: caretHeight,
		Ascender:    ascender,
		Descender:   descender,
		CapHeight:   fnt.CapHeight() * fsMult,
		XHeight:     fnt.XHeight() * fsMult,
		LineHeight:  lineHeight,
		TopBaseline: topBaseline + anchorY,
		BlockBounds: [4]float64{
			-anchorX, -blockHeight + anchorY,
			blockWidth - anchorX, anchorY,
		},
	}
	result.VisibleBounds = result.BlockBounds

	if p.IncludeCaretPositions {
		result.CaretPositions = caretPositions(glyphs, lines, runes, bidiRes,
			topBaseline, lineHeight, caretBottom, caretHeight, anchorY)
	}

	result.Timings.Typeset = time.Since(typesetStart)

	if measureOnly {
		return result, nil
	}

	sdfStart := time.Now()
	if err := e.fillGlyphOutput(p, fnt, glyphs, result,
		topBaseline, lineHeight, fsMult, anchorY); err != nil {
		return nil, err
	}
	result.Timings.SDF = time.Since(sdfStart)

	return result, nil
}

// breakLines splits the shaped glyphs into lines: hard breaks at
// newlines, soft wraps at the last whitespace that fits, mid-word when
// OverflowWrapBreakWord allows it.
func (e *Engine) breakLines(p Params, glyphs []glyphInfo) []lineInfo {
	softWrap := p.WhiteSpace == WhiteSpaceNormal && !math.IsInf(p.MaxWidth, 1)

	var lines []lineInfo
	lineStart := 0
	originX := 0.0
	runeStart := 0
	lastBreak := -1 // glyph index a soft break may occur before

	endLine := func(end int, soft bool) {
		ln := lineInfo{
			glyphStart:  lineStart,
			glyphEnd:    end,
			runeStart:   runeStart,
			runeEnd:     runeStart,
			originX:     originX,
			softWrapped: soft,
		}
		if end > lineStart {
			last := glyphs[end-1]
			ln.runeEnd = last.RuneIndex + last.RuneCount
			// Trailing whitespace does not count toward line width.
			w := end - 1
			for w >= lineStart && (glyphs[w].whitespace || glyphs[w].newline) {
				w--
			}
			if w >= lineStart {
				ln.width = glyphs[w].penX + glyphs[w].adv - originX
			}
		}
		lines = append(lines, ln)
		runeStart = ln.runeEnd
	}

	i := 0
	for i < len(glyphs) {
		g := glyphs[i]

		if g.newline {
			endLine(i+1, false)
			lineStart = i + 1
			originX = g.penX + g.adv
			lastBreak = -1
			i++
			continue
		}

		// Whitespace never forces a wrap; it hangs past the edge.
		if softWrap && i > lineStart && !g.whitespace {
			indent := 0.0
			if len(lines) == 0 {
				indent = p.TextIndent
			}
			if g.penX+g.Advance-originX+indent > p.MaxWidth {
				breakAt := -1
				switch {
				case lastBreak > lineStart:
					breakAt = lastBreak
				case p.OverflowWrap == OverflowWrapBreakWord:
					breakAt = i
				}
				if breakAt > lineStart {
					endLine(breakAt, true)
					lineStart = breakAt
					originX = glyphs[breakAt].penX
					lastBreak = -1
					i = breakAt
					continue
				}
			}
		}

		if g.whitespace {
			lastBreak = i + 1
		}
		i++
	}
	endLine(len(glyphs), false)
	return lines
}

// positionLine computes final visual x positions for one line.
func (e *Engine) positionLine(p Params, glyphs []glyphInfo, ln *lineInfo, lineIdx int,
	blockWidth, anchorX float64, bidiRes bidi.Result, runes []rune, fnt layoutFont, text string) {

	indent := 0.0
	if lineIdx == 0 {
		indent = p.TextIndent
	}

	// Alignment offset; justification widens whitespace instead.
	align := indent
	justifyExtra := 0.0
	switch p.TextAlign {
	case AlignRight:
		align = blockWidth - ln.width
	case AlignCenter:
		align = (blockWidth - ln.width) / 2
	case AlignJustify:
		if ln.softWrapped {
			n := 0
			for i := ln.glyphStart; i < ln.glyphEnd; i++ {
				if glyphs[i].whitespace && glyphs[i].penX-ln.originX < ln.width {
					n++
				}
			}
			if n > 0 {
				justifyExtra = (blockWidth - indent - ln.width) / float64(n)
			}
		}
	}

	shift := 0.0
	for i := ln.glyphStart; i < ln.glyphEnd; i++ {
		g := &glyphs[i]
		g.line = lineIdx
		// g.X carries the shaper's x offset on top of the pen position;
		// pen positions stay the basis for widths and wrapping.
		g.x = g.X - ln.originX + align + shift - anchorX
		g.adv = g.Advance
		if justifyExtra > 0 && g.whitespace && g.penX-ln.originX < ln.width {
			g.adv += justifyExtra
			shift += justifyExtra
		}
	}

	if ln.runeEnd <= ln.runeStart {
		return
	}

	// Bidi reordering: mirror x positions inside each L2 segment, then
	// substitute mirrored glyph forms on right-to-left characters.
	segments := bidi.ReorderSegments(text, bidiRes, ln.runeStart, ln.runeEnd-1)
	for _, seg := range segments {
		first, last := -1, -1
		segMin, segMax := math.Inf(1), math.Inf(-1)
		for i := ln.glyphStart; i < ln.glyphEnd; i++ {
			g := &glyphs[i]
			if g.RuneIndex < seg.Start || g.RuneIndex > seg.End {
				continue
			}
			// Trailing whitespace hangs past the line width and stays
			// out of the flip span.
			if g.whitespace && g.penX-ln.originX >= ln.width {
				continue
			}
			if first < 0 {
				first = i
			}
			last = i
			segMin = math.Min(segMin, g.x)
			segMax = math.Max(segMax, g.x+g.adv)
		}
		for i := first; i >= 0 && i <= last; i++ {
			g := &glyphs[i]
			if g.RuneIndex < seg.Start || g.RuneIndex > seg.End {
				continue
			}
			if g.whitespace && g.penX-ln.originX >= ln.width {
				continue
			}
			g.x = segMin + segMax - g.x - g.adv
		}
	}

	for i := ln.glyphStart; i < ln.glyphEnd; i++ {
		g := &glyphs[i]
		if g.RuneIndex >= len(bidiRes.Levels) || bidiRes.Levels[g.RuneIndex]&1 == 0 {
			continue
		}
		if m, ok := bidi.Mirrored(runes[g.RuneIndex]); ok {
			if gid, found := fnt.GlyphForRune(m); found {
				g.GID = gid
			}
		}
	}
}

// caretPositions builds the 3-per-rune caret array: left x, right x and
// caret bottom y. Ligature advances are split evenly across their
// runes; runes without glyph coverage carry the previous caret forward.
func caretPositions(glyphs []glyphInfo, lines []lineInfo, runes []rune, bidiRes bidi.Result,
	topBaseline, lineHeight, caretBottom, caretHeight, anchorY float64) []float32 {

	carets := make([]float32, 3*len(runes))
	seen := make([]bool, len(runes))

	for _, g := range glyphs {
		baseline := topBaseline - float64(g.line)*lineHeight + anchorY
		y := float32(baseline + caretBottom)
		n := g.RuneCount
		if n <= 0 {
			n = 1
		}
		slice := g.adv / float64(n)
		rtl := g.RuneIndex < len(bidiRes.Levels) && bidiRes.Levels[g.RuneIndex]&1 == 1
		for k := 0; k < n; k++ {
			ri := g.RuneIndex + k
			if ri >= len(runes) || seen[ri] {
				continue
			}
			seen[ri] = true
			left := g.x + float64(k)*slice
			right := left + slice
			if rtl {
				// Logical order runs right to left within the glyph.
				left = g.x + g.adv - float64(k)*slice
				right = left - slice
			}
			carets[ri*3] = float32(left)
			carets[ri*3+1] = float32(right)
			carets[ri*3+2] = y
		}
	}

	// Carry forward over runes no glyph covered (collapsed marks,
	// newline characters).
	for ri := 1; ri < len(runes); ri++ {
		if !seen[ri] && seen[ri-1] {
			carets[ri*3] = carets[(ri-1)*3+1]
			carets[ri*3+1] = carets[(ri-1)*3+1]
			carets[ri*3+2] = carets[(ri-1)*3+2]
			seen[ri] = true
		}
	}
	return carets
}

// fillGlyphOutput creates atlas entries and emits per-glyph quads,
// atlas indices, colors, visible bounds and chunked bounds.
func (e *Engine) fillGlyphOutput(p Params, fnt layoutFont, glyphs []glyphInfo,
	result *Result, topBaseline, lineHeight, fsMult, anchorY float64) error {

	atlas, err := e.atlasFor(fnt.Key(), p.SDFGlyphSize)
	if err != nil {
		return err
	}

	var (
		visMin = [2]float64{math.Inf(1), math.Inf(1)}
		visMax = [2]float64{math.Inf(-1), math.Inf(-1)}

		chunkRect  = [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
		chunkStart = 0
		count      = 0

		colors   = p.ColorRanges
		colorIdx = 0
	)

	flushChunk := func() {
		if count > chunkStart {
			result.ChunkedBounds = append(result.ChunkedBounds, ChunkBounds{
				Start: chunkStart, End: count, Rect: chunkRect,
			})
			chunkStart = count
			chunkRect = [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
		}
	}

	for i := range glyphs {
		g := &glyphs[i]
		if g.whitespace || g.newline {
			continue
		}

		outline, err := fnt.Outline(g.GID)
		if err != nil {
			Logger().Debug("skipping glyph without outline", "gid", g.GID, "error", err)
			continue
		}
		if outline.IsEmpty() {
			continue
		}

		entry, err := atlas.GetOrCreate(g.GID, func() (*sdf.Outline, error) {
			return fnt.Outline(g.GID)
		})
		if err != nil {
			return err
		}

		baseline := topBaseline - float64(g.line)*lineHeight + anchorY
		rb := entry.RenderingBounds
		minX := g.x + rb.MinX*fsMult
		minY := baseline + rb.MinY*fsMult
		maxX := g.x + rb.MaxX*fsMult
		maxY := baseline + rb.MaxY*fsMult

		result.GlyphBounds = append(result.GlyphBounds,
			float32(minX), float32(minY), float32(maxX), float32(maxY))
		result.GlyphAtlasIndices = append(result.GlyphAtlasIndices, float32(entry.Index))

		if len(colors) > 0 {
			for colorIdx+1 < len(colors) && colors[colorIdx+1].Start <= g.RuneIndex {
				colorIdx++
			}
			c := colors[colorIdx].Color
			result.GlyphColors = append(result.GlyphColors, c.R, c.G, c.B)
		}

		visMin[0] = math.Min(visMin[0], minX)
		visMin[1] = math.Min(visMin[1], minY)
		visMax[0] = math.Max(visMax[0], maxX)
		visMax[1] = math.Max(visMax[1], maxY)

		chunkRect[0] = math.Min(chunkRect[0], minX)
		chunkRect[1] = math.Min(chunkRect[1], minY)
		chunkRect[2] = math.Max(chunkRect[2], maxX)
		chunkRect[3] = math.Max(chunkRect[3], maxY)

		count++
		if count-chunkStart == chunkSize {
			flushChunk()
		}
	}
	flushChunk()

	if count > 0 {
		result.VisibleBounds = [4]float64{visMin[0], visMin[1], visMax[0], visMax[1]}
	}
	result.NewGlyphs = atlas.DrainNew()
	return nil
}

// atlasFor returns the atlas for a (font, glyph size) pair, creating it
// on first use.
func (e *Engine) atlasFor(fontKey string, glyphSize int) (*sdf.Atlas, error) {
	key := atlasKey{font: fontKey, glyphSize: glyphSize}

	e.mu.Lock()
	defer e.mu.Unlock()

	if a, ok := e.atlases[key]; ok {
		return a, nil
	}

	genConfig := sdf.DefaultConfig()
	genConfig.Size = glyphSize
	genConfig.Exponent = e.config.SDFExponent

	a, err := sdf.NewAtlas(sdf.AtlasConfig{
		TextureWidth: e.config.TextureWidth,
		GlyphSize:    glyphSize,
	}, sdf.NewGenerator(genConfig))
	if err != nil {
		return nil, err
	}
	e.atlases[key] = a
	return a, nil
}

// normalizeNewlines rewrites CRLF and lone CR to LF so the rest of the
// pipeline sees a single line separator.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// resolveAnchorX maps an AnchorX to the x offset of the anchor point
// from the block's left edge.
func resolveAnchorX(a Anchor, blockWidth float64) float64 {
	switch a.keyword {
	case AnchorLeft:
		return 0
	case AnchorCenter:
		return blockWidth / 2
	case AnchorRight:
		return blockWidth
	}
	if a.percent {
		return a.value / 100 * blockWidth
	}
	return a.value
}

// resolveAnchorY maps an AnchorY to the distance of the anchor point
// below the block's top edge.
func resolveAnchorY(a Anchor, blockHeight, topBaseline, capHeight, xHeight float64) float64 {
	switch a.keyword {
	case AnchorTop:
		return 0
	case AnchorTopBaseline:
		return -topBaseline
	case AnchorTopCap:
		return -topBaseline - capHeight
	case AnchorTopEx:
		return -topBaseline - xHeight
	case AnchorMiddle:
		return blockHeight / 2
	case AnchorBottom:
		return blockHeight
	}
	if a.percent {
		return a.value / 100 * blockHeight
	}
	return a.value
}
