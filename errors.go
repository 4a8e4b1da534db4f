package sdftext

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine.
var (
	// ErrEmptyFontData is returned when a font source resolves to zero bytes.
	ErrEmptyFontData = errors.New("sdftext: font data is empty")

	// ErrNoOutline is returned when a glyph carries no vector outline
	// (bitmap-only or SVG glyphs).
	ErrNoOutline = errors.New("sdftext: glyph has no vector outline")
)

// FontLoadError reports a failure to fetch font bytes from a URL or
// file path. Parse failures are reported as FontParseError instead.
type FontLoadError struct {
	URL string
	Err error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("sdftext: loading font %q: %v", e.URL, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// FontParseError reports font bytes that could not be parsed as a
// TTF/OTF font.
type FontParseError struct {
	URL string
	Err error
}

func (e *FontParseError) Error() string {
	return fmt.Sprintf("sdftext: parsing font %q: %v", e.URL, e.Err)
}

func (e *FontParseError) Unwrap() error { return e.Err }

// ParamsError represents a parameter validation error.
type ParamsError struct {
	Field  string
	Reason string
}

func (e *ParamsError) Error() string {
	return "sdftext: invalid params." + e.Field + ": " + e.Reason
}
