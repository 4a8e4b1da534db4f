// Package sdftext lays out Unicode text into GPU-renderable glyph
// geometry backed by per-glyph signed-distance-field bitmaps.
//
// # Overview
//
// An [Engine] turns a string plus typographic parameters ([Params]) into
// a [Result]: one quad per renderable glyph, an atlas slot index per
// quad, optional caret positions and per-glyph colors, and the freshly
// generated SDF bitmaps the caller uploads to its texture. The engine
// performs font loading and caching, HarfBuzz shaping through
// go-text/typesetting, full bidirectional reordering (UAX#9, package
// [github.com/gogpu/sdftext/bidi]), line wrapping, alignment and
// anchoring. SDF generation and atlas packing live in package
// [github.com/gogpu/sdftext/sdf].
//
// Rendering itself is out of scope: the result references atlas slots
// and font-unit geometry, and the consumer owns textures, buffers and
// shaders.
//
// # Basic usage
//
//	engine := sdftext.NewEngine(sdftext.DefaultConfig())
//	res, err := engine.Process(ctx, sdftext.Params{
//	    Text:     "Hello, world",
//	    FontSize: 24,
//	})
//
// Coordinates in the result have their origin at the anchor point, with
// x increasing rightward and y increasing upward; text flows downward
// from the top into negative y.
//
// # Concurrency
//
// Engine methods are safe for concurrent use. A [TextBlock] additionally
// serializes updates to one logical text entity, so a re-layout never
// observes a half-applied predecessor.
package sdftext
