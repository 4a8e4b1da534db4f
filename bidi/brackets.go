package bidi

import (
	xbidi "golang.org/x/text/unicode/bidi"
)

// Mirrored returns the character whose glyph mirrors r (e.g. '(' ↔ ')',
// '<' ↔ '>') and true, or r itself and false when r has no mirrored
// counterpart. Rendering substitutes mirrored glyphs for characters
// resolved to a right-to-left direction.
func Mirrored(r rune) (rune, bool) {
	if m, ok := lookupMirror(r); ok {
		return m, true
	}
	return r, false
}

// canonicalBracket maps a bracket to its canonical equivalent for BD16
// pair matching. U+2329/U+232A are canonically equivalent to the CJK
// angle brackets U+3008/U+3009; these are the only such equivalences in
// the bracket table.
func canonicalBracket(r rune) rune {
	switch r {
	case 0x2329:
		return 0x3008
	case 0x232A:
		return 0x3009
	}
	return r
}

// pairedBracket reports whether r participates in bracket pairing (BD14,
// BD15) and, if so, returns the codepoint of its partner. The partner of
// a paired bracket is its mirrored counterpart in the Unicode data.
func pairedBracket(r rune) (partner rune, opening, ok bool) {
	props, _ := xbidi.LookupRune(r)
	if !props.IsBracket() {
		return 0, false, false
	}
	m, ok := lookupMirror(r)
	if !ok {
		return 0, false, false
	}
	return m, props.IsOpeningBracket(), true
}
