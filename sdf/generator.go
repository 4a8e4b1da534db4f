package sdf

import (
	"math"
)

// curveSteps is the number of fixed parametric samples used to flatten
// quadratic and cubic béziers into a line strip.
const curveSteps = 16

// Config holds SDF generation parameters.
type Config struct {
	// Size is the output bitmap size (width = height) in texels.
	// Typical values: 32, 64, 128. Default: 64
	Size int

	// Margin is the fraction of the bitmap reserved as distance-field
	// falloff beyond the glyph's ink bounds. Default: 1/16
	Margin float64

	// Exponent shapes the distance-to-alpha encoding curve. Higher
	// values concentrate more of the 8-bit range near the glyph edge.
	// Default: 9
	Exponent float64
}

// DefaultConfig returns the default SDF configuration.
func DefaultConfig() Config {
	return Config{
		Size:     64,
		Margin:   1.0 / 16.0,
		Exponent: 9,
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Size < 8 {
		return &ConfigError{Field: "Size", Reason: "must be at least 8"}
	}
	if c.Size > 1024 {
		return &ConfigError{Field: "Size", Reason: "must be at most 1024"}
	}
	if c.Margin < 0 || c.Margin >= 0.5 {
		return &ConfigError{Field: "Margin", Reason: "must be in [0, 0.5)"}
	}
	if c.Exponent < 1 {
		return &ConfigError{Field: "Exponent", Reason: "must be at least 1"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "sdf: invalid config." + e.Field + ": " + e.Reason
}

// Generator creates signed-distance-field bitmaps from glyph outlines.
// Generation is a pure function of the outline and configuration:
// generating the same glyph twice produces byte-identical output.
type Generator struct {
	config Config
}

// NewGenerator creates a new generator with the given configuration.
func NewGenerator(config Config) *Generator {
	return &Generator{config: config}
}

// DefaultGenerator creates a new generator with default configuration.
func DefaultGenerator() *Generator {
	return NewGenerator(DefaultConfig())
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config { return g.config }

// Generate creates a distance-field bitmap for a glyph outline.
// Empty outlines (whitespace glyphs) produce an all-zero bitmap without
// running the sampling loop.
func (g *Generator) Generate(outline *Outline) (*Field, error) {
	if err := g.config.Validate(); err != nil {
		return nil, err
	}

	size := g.config.Size
	field := &Field{
		Data: make([]byte, size*size),
		Size: size,
	}
	if outline.IsEmpty() {
		return field, nil
	}

	index := NewSegmentIndex()
	tessellate(outline, index)
	if index.Len() == 0 {
		return field, nil
	}

	// Expand the tight bounds by a font-unit margin so the distance
	// falloff has room inside the bitmap.
	width := outline.Bounds.Width()
	height := outline.Bounds.Height()
	maxDim := math.Max(width, height)
	fuPerTexel := maxDim / float64(size)
	margin := fuPerTexel * (g.config.Margin*float64(size) + 0.5)
	bounds := outline.Bounds.Expand(margin)
	field.RenderingBounds = bounds

	texelW := bounds.Width() / float64(size)
	texelH := bounds.Height() / float64(size)

	for ty := 0; ty < size; ty++ {
		y := bounds.MinY + (float64(ty)+0.5)*texelH
		row := ty * size
		for tx := 0; tx < size; tx++ {
			x := bounds.MinX + (float64(tx)+0.5)*texelW
			dist := index.SignedDistance(x, y, maxDim)
			field.Data[row+tx] = g.encode(dist, maxDim)
		}
	}

	return field, nil
}

// encode maps a signed font-unit distance to one byte. The curve is
// exponential so most of the 8-bit range sits near dist = 0, where the
// rendered edge is; an on-edge texel encodes to 128, inside texels above,
// outside below. The shader decode applies the reciprocal exponent.
func (g *Generator) encode(dist, maxDist float64) byte {
	alpha := math.Pow(1-math.Abs(dist)/maxDist, g.config.Exponent) / 2
	if dist < 0 {
		alpha = 1 - alpha
	}
	v := math.Round(alpha * 255)
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return byte(v)
}

// tessellate flattens an outline's path commands into line segments.
// Lines are copied directly; curves are sampled at curveSteps fixed
// parametric positions; a contour that does not return to its start
// point receives an implicit closing segment.
func tessellate(outline *Outline, index *SegmentIndex) {
	var curX, curY float64
	var startX, startY float64
	open := false

	closeContour := func() {
		if open && (curX != startX || curY != startY) {
			index.AddSegment(curX, curY, startX, startY)
		}
		open = false
	}

	for _, seg := range outline.Segments {
		switch seg.Op {
		case OpMoveTo:
			closeContour()
			curX, curY = seg.Points[0].X, seg.Points[0].Y
			startX, startY = curX, curY
			open = true

		case OpLineTo:
			index.AddSegment(curX, curY, seg.Points[0].X, seg.Points[0].Y)
			curX, curY = seg.Points[0].X, seg.Points[0].Y

		case OpQuadTo:
			cx, cy := seg.Points[0].X, seg.Points[0].Y
			ex, ey := seg.Points[1].X, seg.Points[1].Y
			prevX, prevY := curX, curY
			for i := 1; i < curveSteps; i++ {
				t := float64(i) / (curveSteps - 1)
				u := 1 - t
				px := u*u*curX + 2*u*t*cx + t*t*ex
				py := u*u*curY + 2*u*t*cy + t*t*ey
				index.AddSegment(prevX, prevY, px, py)
				prevX, prevY = px, py
			}
			curX, curY = ex, ey

		case OpCubicTo:
			c1x, c1y := seg.Points[0].X, seg.Points[0].Y
			c2x, c2y := seg.Points[1].X, seg.Points[1].Y
			ex, ey := seg.Points[2].X, seg.Points[2].Y
			prevX, prevY := curX, curY
			for i := 1; i < curveSteps; i++ {
				t := float64(i) / (curveSteps - 1)
				u := 1 - t
				px := u*u*u*curX + 3*u*u*t*c1x + 3*u*t*t*c2x + t*t*t*ex
				py := u*u*u*curY + 3*u*u*t*c1y + 3*u*t*t*c2y + t*t*t*ey
				index.AddSegment(prevX, prevY, px, py)
				prevX, prevY = px, py
			}
			curX, curY = ex, ey

		case OpClose:
			closeContour()
		}
	}
	closeContour()
}
