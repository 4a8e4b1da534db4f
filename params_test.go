package sdftext

import (
	"math"
	"testing"
)

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in      string
		want    Anchor
		wantErr bool
	}{
		{"left", AnchorAt(AnchorLeft), false},
		{"center", AnchorAt(AnchorCenter), false},
		{"right", AnchorAt(AnchorRight), false},
		{"top", AnchorAt(AnchorTop), false},
		{"top-baseline", AnchorAt(AnchorTopBaseline), false},
		{"top-cap", AnchorAt(AnchorTopCap), false},
		{"top-ex", AnchorAt(AnchorTopEx), false},
		{"middle", AnchorAt(AnchorMiddle), false},
		{"bottom", AnchorAt(AnchorBottom), false},
		{"50%", AnchorPercent(50), false},
		{"-12.5%", AnchorPercent(-12.5), false},
		{"42", AnchorValue(42), false},
		{" 42 ", AnchorValue(42), false},
		{"oops", Anchor{}, true},
		{"%", Anchor{}, true},
	}
	for _, tt := range tests {
		got, err := ParseAnchor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAnchor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAnchor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Params)
		wantErr bool
	}{
		{"defaults", func(p *Params) {}, false},
		{"nan font size", func(p *Params) { p.FontSize = math.NaN() }, true},
		{"nan max width", func(p *Params) { p.MaxWidth = math.NaN() }, true},
		{"zero line height multiple", func(p *Params) { p.LineHeight = LineHeightMultiple(0) }, true},
		{"unsorted color ranges", func(p *Params) {
			p.ColorRanges = []ColorRange{{Start: 5}, {Start: 2}}
		}, true},
		{"sorted color ranges", func(p *Params) {
			p.ColorRanges = []ColorRange{{Start: 0}, {Start: 2}}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Text: "x"}.withDefaults(DefaultConfig())
			tt.modify(&p)
			err := p.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParamsWithDefaults(t *testing.T) {
	c := DefaultConfig()
	p := Params{}.withDefaults(c)

	if p.FontSize != defaultFontSize {
		t.Errorf("FontSize = %v, want %v", p.FontSize, float64(defaultFontSize))
	}
	if !math.IsInf(p.MaxWidth, 1) {
		t.Errorf("MaxWidth = %v, want +Inf", p.MaxWidth)
	}
	if p.SDFGlyphSize != c.SDFGlyphSize {
		t.Errorf("SDFGlyphSize = %d, want %d", p.SDFGlyphSize, c.SDFGlyphSize)
	}
	if p.Font != c.DefaultFontURL {
		t.Errorf("Font = %q, want default URL", p.Font)
	}
}

func TestLineHeightZeroValueIsNormal(t *testing.T) {
	var lh LineHeight
	if !lh.IsNormal() {
		t.Error("zero LineHeight should be normal")
	}
	if LineHeightMultiple(1.2).IsNormal() {
		t.Error("LineHeightMultiple should not be normal")
	}
}

func TestAlignString(t *testing.T) {
	if AlignJustify.String() != "justify" || AlignLeft.String() != "left" {
		t.Errorf("Align.String() = %q/%q, want justify/left",
			AlignJustify.String(), AlignLeft.String())
	}
}
