// Package sdf converts vector glyph outlines into signed-distance-field
// bitmaps and packs them into a growable glyph atlas texture.
//
// A [Generator] tessellates an outline's curves into line segments,
// indexes them for nearest-distance queries, and samples a square
// single-channel bitmap where each byte encodes the signed distance
// from the texel center to the nearest outline edge. The encoding is
// exponential rather than linear so that the limited 8-bit precision
// concentrates near the glyph edge, where rendering fidelity matters.
//
// An [Atlas] caches generated fields per glyph, assigning each glyph a
// permanent, monotonically increasing slot index in a single backing
// texture that doubles in height as glyphs accumulate. The caller
// uploads newly generated bitmaps to the GPU by draining [Atlas.DrainNew].
package sdf
