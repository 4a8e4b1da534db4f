package sdftext

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"empty font url", func(c *Config) { c.DefaultFontURL = "" }, true},
		{"glyph size too small", func(c *Config) { c.SDFGlyphSize = 4 }, true},
		{"glyph size too large", func(c *Config) { c.SDFGlyphSize = 2048 }, true},
		{"exponent below one", func(c *Config) { c.SDFExponent = 0 }, true},
		{"texture width not power of 2", func(c *Config) { c.TextureWidth = 1000 }, true},
		{"glyph size not dividing width", func(c *Config) { c.SDFGlyphSize = 48 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewEngineRepairsInvalidConfig(t *testing.T) {
	e := NewEngine(Config{})
	cfg := e.Config()
	if err := cfg.Validate(); err != nil {
		t.Errorf("repaired config still invalid: %v", err)
	}
}
