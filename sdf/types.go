package sdf

// Rect is an axis-aligned rectangle in font units.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the rectangle width.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the rectangle height.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

// Expand returns the rectangle grown by d on all sides.
func (r Rect) Expand(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// PathOp is the type of an outline path operation.
type PathOp uint8

const (
	// OpMoveTo starts a new contour at the target point.
	OpMoveTo PathOp = iota
	// OpLineTo draws a line to the target point.
	OpLineTo
	// OpQuadTo draws a quadratic bézier; Points[0] is the control,
	// Points[1] the target.
	OpQuadTo
	// OpCubicTo draws a cubic bézier; Points[0] and Points[1] are the
	// controls, Points[2] the target.
	OpCubicTo
	// OpClose closes the current contour back to its start point.
	OpClose
)

// String returns a string representation of the operation.
func (op PathOp) String() string {
	switch op {
	case OpMoveTo:
		return "MoveTo"
	case OpLineTo:
		return "LineTo"
	case OpQuadTo:
		return "QuadTo"
	case OpCubicTo:
		return "CubicTo"
	case OpClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Point is a point in font units.
type Point struct {
	X, Y float64
}

// PathSegment is one command of a glyph outline path.
type PathSegment struct {
	Op PathOp

	// Points holds the control and target points for the operation;
	// OpClose uses none.
	Points [3]Point
}

// Outline is the vector outline of one glyph, in font units.
type Outline struct {
	// GID is the glyph index this outline represents.
	GID uint32

	// Segments is the ordered list of path commands.
	Segments []PathSegment

	// Bounds is the tight bounding box of the outline.
	Bounds Rect

	// Advance is the horizontal advance width.
	Advance float64
}

// IsEmpty returns true if the outline draws nothing (e.g. whitespace).
func (o *Outline) IsEmpty() bool { return o == nil || len(o.Segments) == 0 }

// Field is a generated signed-distance bitmap for one glyph.
type Field struct {
	// Data holds one byte per texel, row-major, Size×Size. 128 sits on
	// the outline edge, higher values are inside the filled region.
	Data []byte

	// Size is the width = height of the bitmap in texels.
	Size int

	// RenderingBounds is the region of font-unit space the bitmap
	// covers: the glyph's tight bounds expanded by the distance-field
	// margin. The renderer maps the bitmap onto a quad of these bounds.
	RenderingBounds Rect
}
