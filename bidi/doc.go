// Package bidi implements the Unicode Bidirectional Algorithm (UAX #9).
//
// Given a string containing mixed left-to-right and right-to-left text,
// the resolver assigns every character an embedding level whose parity
// encodes its display direction, honoring explicit embeddings, overrides,
// isolates, bracket pairs and numeral context.
//
// The package exposes three operations:
//
//   - [Resolve] computes per-character embedding levels and paragraph
//     boundaries for a string.
//   - [ReorderSegments] converts the levels of one line into an ordered
//     list of index ranges that must be visually reversed (rule L2).
//   - [Mirrored] looks up the mirrored counterpart of a character for
//     right-to-left rendering (e.g. '(' ↔ ')').
//
// Resolution is a pure function of its inputs. The Unicode character
// property tables it consumes are built lazily once per process from
// golang.org/x/text/unicode/bidi and are immutable afterwards, so all
// entry points are safe for concurrent use.
package bidi
