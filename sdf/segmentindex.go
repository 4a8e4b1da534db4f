package sdf

import (
	"math"
	"sort"
)

// lineSegment is one tessellated edge with its bounding box for pruning.
type lineSegment struct {
	x0, y0, x1, y1         float64
	minX, minY, maxX, maxY float64
}

// SegmentIndex holds the tessellated line segments of one glyph outline
// and answers nearest-signed-distance queries against them.
//
// Segments are kept in a flat list sorted by decreasing max X. A query
// walks the list with two pruning steps: a cheap bounding-box distance
// reject per segment, and an early exit once the remaining segments'
// extents all lie farther left than the best distance found so far. The
// same walk accumulates east-ray crossings for the inside/outside test,
// which is safe because a segment entirely left of the query point can
// neither be closer nor cross an east-pointing ray.
type SegmentIndex struct {
	segments []lineSegment
	sorted   bool
}

// NewSegmentIndex creates an empty index.
func NewSegmentIndex() *SegmentIndex {
	return &SegmentIndex{}
}

// AddSegment adds one line segment. Zero-length segments are ignored.
func (ix *SegmentIndex) AddSegment(x0, y0, x1, y1 float64) {
	if x0 == x1 && y0 == y1 {
		return
	}
	ix.segments = append(ix.segments, lineSegment{
		x0: x0, y0: y0, x1: x1, y1: y1,
		minX: math.Min(x0, x1), minY: math.Min(y0, y1),
		maxX: math.Max(x0, x1), maxY: math.Max(y0, y1),
	})
	ix.sorted = false
}

// Len returns the number of indexed segments.
func (ix *SegmentIndex) Len() int { return len(ix.segments) }

// SignedDistance returns the signed Euclidean distance from (x, y) to
// the nearest segment: negative inside the filled region, positive
// outside, magnitude capped at maxRadius.
func (ix *SegmentIndex) SignedDistance(x, y, maxRadius float64) float64 {
	if !ix.sorted {
		sort.Slice(ix.segments, func(a, b int) bool {
			return ix.segments[a].maxX > ix.segments[b].maxX
		})
		ix.sorted = true
	}

	closestDistSq := maxRadius * maxRadius
	closestDist := maxRadius
	crossings := 0

	for i := range ix.segments {
		seg := &ix.segments[i]

		// Sorted by decreasing maxX: every remaining segment lies
		// entirely farther left than the best match, and cannot cross
		// an east-pointing ray either.
		if seg.maxX <= x-closestDist {
			break
		}

		if distSq := distSqToBBox(x, y, seg); distSq < closestDistSq {
			if distSq = distSqToSegment(x, y, seg); distSq < closestDistSq {
				closestDistSq = distSq
				closestDist = math.Sqrt(distSq)
			}
		}

		// Ray casting: count crossings of the east-pointing ray from
		// (x, y). Odd count means the point is inside the outline.
		if (seg.y0 > y) != (seg.y1 > y) {
			intersectX := seg.x0 + (y-seg.y0)*(seg.x1-seg.x0)/(seg.y1-seg.y0)
			if intersectX > x {
				crossings++
			}
		}
	}

	dist := closestDist
	if crossings%2 == 1 {
		dist = -dist
	}
	return dist
}

// distSqToBBox returns the squared distance from a point to a segment's
// bounding box (zero when inside it).
func distSqToBBox(x, y float64, seg *lineSegment) float64 {
	var dx, dy float64
	if x < seg.minX {
		dx = seg.minX - x
	} else if x > seg.maxX {
		dx = x - seg.maxX
	}
	if y < seg.minY {
		dy = seg.minY - y
	} else if y > seg.maxY {
		dy = y - seg.maxY
	}
	return dx*dx + dy*dy
}

// distSqToSegment returns the squared distance from a point to a segment.
func distSqToSegment(x, y float64, seg *lineSegment) float64 {
	dx := seg.x1 - seg.x0
	dy := seg.y1 - seg.y0
	t := ((x-seg.x0)*dx + (y-seg.y0)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px := seg.x0 + t*dx - x
	py := seg.y0 + t*dy - y
	return px*px + py*py
}
