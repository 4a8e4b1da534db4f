package sdf

import (
	"bytes"
	"math"
	"testing"
)

// squareOutline returns a closed square contour from (0,0) to (side,side).
func squareOutline(side float64) *Outline {
	return &Outline{
		GID: 1,
		Segments: []PathSegment{
			{Op: OpMoveTo, Points: [3]Point{{0, 0}}},
			{Op: OpLineTo, Points: [3]Point{{side, 0}}},
			{Op: OpLineTo, Points: [3]Point{{side, side}}},
			{Op: OpLineTo, Points: [3]Point{{0, side}}},
			{Op: OpClose},
		},
		Bounds:  Rect{MinX: 0, MinY: 0, MaxX: side, MaxY: side},
		Advance: side,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"size too small", func(c *Config) { c.Size = 4 }, true},
		{"size too large", func(c *Config) { c.Size = 2048 }, true},
		{"negative margin", func(c *Config) { c.Margin = -0.1 }, true},
		{"margin too large", func(c *Config) { c.Margin = 0.5 }, true},
		{"exponent below one", func(c *Config) { c.Exponent = 0.5 }, true},
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

func TestGenerateEmptyOutline(t *testing.T) {
	gen := DefaultGenerator()
	field, err := gen.Generate(&Outline{GID: 3, Advance: 250})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if field.Size != 64 {
		t.Errorf("field.Size = %d, want 64", field.Size)
	}
	if len(field.Data) != 64*64 {
		t.Errorf("len(field.Data) = %d, want %d", len(field.Data), 64*64)
	}
	for i, b := range field.Data {
		if b != 0 {
			t.Fatalf("field.Data[%d] = %d, want 0 for empty outline", i, b)
		}
	}
}

func TestGenerateSquareSigns(t *testing.T) {
	gen := DefaultGenerator()
	field, err := gen.Generate(squareOutline(100))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	size := field.Size
	center := field.Data[(size/2)*size+size/2]
	corner := field.Data[0]

	if center <= 128 {
		t.Errorf("center texel = %d, want > 128 (inside)", center)
	}
	if center < 200 {
		t.Errorf("center texel = %d, want near 255 deep inside", center)
	}
	if corner >= 128 {
		t.Errorf("corner texel = %d, want < 128 (outside)", corner)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	gen := DefaultGenerator()
	a, err := gen.Generate(squareOutline(100))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := gen.Generate(squareOutline(100))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !bytes.Equal(a.Data, b.Data) {
		t.Error("repeated generation produced different bitmaps")
	}
	if a.RenderingBounds != b.RenderingBounds {
		t.Errorf("RenderingBounds differ: %v vs %v", a.RenderingBounds, b.RenderingBounds)
	}
}

func TestGenerateRenderingBounds(t *testing.T) {
	gen := DefaultGenerator()
	field, err := gen.Generate(squareOutline(100))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// margin = maxDim/size * (marginFraction*size + 0.5)
	wantMargin := 100.0 / 64.0 * (1.0/16.0*64.0 + 0.5)
	got := field.RenderingBounds
	if math.Abs(got.MinX-(-wantMargin)) > 1e-9 || math.Abs(got.MaxX-(100+wantMargin)) > 1e-9 {
		t.Errorf("RenderingBounds X = [%v, %v], want [%v, %v]",
			got.MinX, got.MaxX, -wantMargin, 100+wantMargin)
	}
	if math.Abs(got.MinY-(-wantMargin)) > 1e-9 || math.Abs(got.MaxY-(100+wantMargin)) > 1e-9 {
		t.Errorf("RenderingBounds Y = [%v, %v], want [%v, %v]",
			got.MinY, got.MaxY, -wantMargin, 100+wantMargin)
	}
}

func TestGenerateQuadContour(t *testing.T) {
	// Diamond with bulging quad edges, roughly a circle of radius 50
	// centered at (50, 50).
	outline := &Outline{
		GID: 7,
		Segments: []PathSegment{
			{Op: OpMoveTo, Points: [3]Point{{50, 0}}},
			{Op: OpQuadTo, Points: [3]Point{{100, 0}, {100, 50}}},
			{Op: OpQuadTo, Points: [3]Point{{100, 100}, {50, 100}}},
			{Op: OpQuadTo, Points: [3]Point{{0, 100}, {0, 50}}},
			{Op: OpQuadTo, Points: [3]Point{{0, 0}, {50, 0}}},
		},
		Bounds:  Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100},
		Advance: 100,
	}
	gen := DefaultGenerator()
	field, err := gen.Generate(outline)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	size := field.Size
	if center := field.Data[(size/2)*size+size/2]; center <= 128 {
		t.Errorf("center texel = %d, want > 128 inside curved contour", center)
	}
	if corner := field.Data[0]; corner >= 128 {
		t.Errorf("corner texel = %d, want < 128 outside curved contour", corner)
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	gen := NewGenerator(Config{Size: 2, Margin: 0.1, Exponent: 9})
	if _, err := gen.Generate(squareOutline(10)); err == nil {
		t.Error("Generate() with invalid config succeeded, want error")
	}
}

func TestEncodeEdgeValue(t *testing.T) {
	gen := DefaultGenerator()
	if got := gen.encode(0, 100); got != 128 {
		t.Errorf("encode(0) = %d, want 128 on the edge", got)
	}
	if got := gen.encode(5, 100); got >= 128 {
		t.Errorf("encode(+5) = %d, want < 128 outside", got)
	}
	if got := gen.encode(-5, 100); got <= 128 {
		t.Errorf("encode(-5) = %d, want > 128 inside", got)
	}
}

func TestSegmentIndexSignedDistance(t *testing.T) {
	ix := NewSegmentIndex()
	// Unit square, counter-clockwise.
	ix.AddSegment(0, 0, 1, 0)
	ix.AddSegment(1, 0, 1, 1)
	ix.AddSegment(1, 1, 0, 1)
	ix.AddSegment(0, 1, 0, 0)

	if d := ix.SignedDistance(0.5, 0.5, 10); math.Abs(d-(-0.5)) > 1e-9 {
		t.Errorf("SignedDistance(center) = %v, want -0.5", d)
	}
	if d := ix.SignedDistance(2, 0.5, 10); math.Abs(d-1) > 1e-9 {
		t.Errorf("SignedDistance(right of square) = %v, want 1", d)
	}
	if d := ix.SignedDistance(-3, 0.5, 10); math.Abs(d-3) > 1e-9 {
		t.Errorf("SignedDistance(left of square) = %v, want 3", d)
	}
	if d := ix.SignedDistance(5, 5, 2); d != 2 {
		t.Errorf("SignedDistance beyond maxRadius = %v, want capped at 2", d)
	}
}

func TestSegmentIndexIgnoresZeroLength(t *testing.T) {
	ix := NewSegmentIndex()
	ix.AddSegment(1, 1, 1, 1)
	if ix.Len() != 0 {
		t.Errorf("Len() = %d after zero-length add, want 0", ix.Len())
	}
}
