package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestOverlay(t *testing.T) {
	src := createInMemoryImage(100, 80, color.White)

	out := Overlay(src, OverlayOptions{
		Crop:     image.Rect(10, 10, 90, 70),
		Viewport: image.Rect(20, 20, 80, 60),
		Points:   []image.Point{{50, 40}, {0, 0}},
	})

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), src.Bounds())
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"crop left edge", 10, 50, color.RGBA{255, 0, 0, 255}},
		{"crop bottom edge", 50, 69, color.RGBA{255, 0, 0, 255}},
		{"viewport right edge", 79, 40, color.RGBA{0, 96, 255, 255}},
		{"point", 50, 40, color.RGBA{255, 0, 255, 255}},
		{"point neighbour", 51, 41, color.RGBA{255, 0, 255, 255}},
		{"clipped corner point", 0, 0, color.RGBA{255, 0, 255, 255}},
		{"untouched", 95, 75, color.RGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := out.RGBAAt(tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	if got := src.RGBAAt(10, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Error("Overlay modified its input")
	}
}

func TestOverlay_CustomCurveColor(t *testing.T) {
	src := createInMemoryImage(20, 20, color.White)
	out := Overlay(src, OverlayOptions{
		Points:        []image.Point{{10, 10}},
		CurveColorHex: "#00FF00",
	})
	if got := out.RGBAAt(10, 10); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("curve colour: got %v", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input    string
		expected color.RGBA
		wantErr  bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#00FF00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FF", color.RGBA{0, 0, 255, 255}, false},
		{"FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#FF000080", color.RGBA{255, 0, 0, 128}, false},
		{"#ffffff", color.RGBA{255, 255, 255, 255}, false},
		{"", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseHexColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("got %v, want %v", result, tt.expected)
			}
		})
	}
}
