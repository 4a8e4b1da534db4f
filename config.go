package sdftext

// defaultFontSize is the em size used when Params.FontSize is unset.
const defaultFontSize = 400

// DefaultFontURL is the font fetched when a request names none, and the
// fallback retried once when a named font fails to load or parse.
const DefaultFontURL = "https://fonts.gstatic.com/s/roboto/v30/KFOmCnqEu92Fr1Me5Q.ttf"

// Config holds engine configuration.
type Config struct {
	// DefaultFontURL is the fallback font. Default: DefaultFontURL.
	DefaultFontURL string

	// SDFGlyphSize is the per-glyph bitmap size used when a request
	// does not override it. Default: 64
	SDFGlyphSize int

	// SDFExponent shapes the distance encoding curve. Default: 9
	SDFExponent float64

	// TextureWidth is the atlas backing texture width. Default: 2048
	TextureWidth int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		DefaultFontURL: DefaultFontURL,
		SDFGlyphSize:   64,
		SDFExponent:    9,
		TextureWidth:   2048,
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.DefaultFontURL == "" {
		return &ConfigError{Field: "DefaultFontURL", Reason: "must not be empty"}
	}
	if c.SDFGlyphSize < 8 {
		return &ConfigError{Field: "SDFGlyphSize", Reason: "must be at least 8"}
	}
	if c.SDFGlyphSize > 1024 {
		return &ConfigError{Field: "SDFGlyphSize", Reason: "must be at most 1024"}
	}
	if c.SDFExponent < 1 {
		return &ConfigError{Field: "SDFExponent", Reason: "must be at least 1"}
	}
	if c.TextureWidth < 64 || c.TextureWidth&(c.TextureWidth-1) != 0 {
		return &ConfigError{Field: "TextureWidth", Reason: "must be a power of 2, at least 64"}
	}
	if c.TextureWidth%c.SDFGlyphSize != 0 {
		return &ConfigError{Field: "SDFGlyphSize", Reason: "must divide TextureWidth"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "sdftext: invalid config." + e.Field + ": " + e.Reason
}
