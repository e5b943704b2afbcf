package digitizer

import (
	"image"
	"math"
	"testing"

	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// createMask builds a binary Gray of the given size with the listed pixels
// set to v.
func createMask(width, height int, v uint8, pixels []image.Point) *imaging.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for _, p := range pixels {
		img.Pix[p.Y*img.Stride+p.X] = v
	}
	return imaging.NewGray(img)
}

// diagonal returns one pixel per column from (0, height-1) to (width-1, 0).
func diagonal(width, height int) []image.Point {
	pts := make([]image.Point, 0, width)
	for x := 0; x < width; x++ {
		y := int(math.Round(float64(height-1) - float64(x)*float64(height-1)/float64(width-1)))
		pts = append(pts, image.Pt(x, y))
	}
	return pts
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single", []float64{7}, 7},
		{"odd sorted", []float64{1, 2, 9}, 2},
		{"odd unsorted", []float64{9, 1, 2}, 2},
		{"even", []float64{1, 2, 3, 4}, 2.5},
		{"even unsorted", []float64{40, 10, 30, 20}, 25},
		{"duplicates", []float64{5, 5, 5, 6}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}

	if got := Median(nil); !math.IsNaN(got) {
		t.Errorf("Median(nil) = %v, want NaN", got)
	}
}

func TestMedian_DoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestScanColumns_Diagonal(t *testing.T) {
	mask := createMask(200, 100, 255, diagonal(200, 100))
	dims := detection.GraphDimensions{MinX: 0, MaxX: 199, MinY: 0, MaxY: 99}

	raw := ScanColumns(mask, dims, 10)
	if len(raw) != 200 {
		t.Fatalf("got %d raw points, want 200", len(raw))
	}
	if raw[0].Y != 99 || raw[199].Y != 0 {
		t.Errorf("endpoints: got y=%v and y=%v, want 99 and 0", raw[0].Y, raw[199].Y)
	}
	for i, p := range raw {
		if p.X != i {
			t.Fatalf("raw[%d].X = %d, want %d", i, p.X, i)
		}
	}
}

func TestScanColumns_BlankColumn(t *testing.T) {
	pixels := diagonal(50, 40)
	kept := pixels[:0]
	for _, p := range pixels {
		if p.X != 20 {
			kept = append(kept, p)
		}
	}
	mask := createMask(50, 40, 255, kept)
	dims := detection.GraphDimensions{MinX: 0, MaxX: 49, MinY: 0, MaxY: 39}

	raw := ScanColumns(mask, dims, 10)
	if len(raw) != 49 {
		t.Errorf("got %d raw points, want 49", len(raw))
	}
	for _, p := range raw {
		if p.X == 20 {
			t.Errorf("blank column produced %+v", p)
		}
	}
}

func TestScanColumns_ViewportFilter(t *testing.T) {
	// Column 0: one pixel above the viewport and one inside.
	// Column 1: only below the viewport.
	mask := createMask(3, 30, 255, []image.Point{{0, 2}, {0, 15}, {1, 28}, {2, 5}, {2, 25}})
	dims := detection.GraphDimensions{MinX: 0, MaxX: 2, MinY: 5, MaxY: 25}

	raw := ScanColumns(mask, dims, 10)
	want := []RawPoint{{X: 0, Y: 15}, {X: 2, Y: 15}}
	if len(raw) != len(want) {
		t.Fatalf("got %+v, want %+v", raw, want)
	}
	for i := range want {
		if raw[i] != want[i] {
			t.Errorf("raw[%d] = %+v, want %+v", i, raw[i], want[i])
		}
	}
}

func TestScanColumns_ForegroundThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 10))
	img.Pix[4*img.Stride+0] = 10
	img.Pix[4*img.Stride+1] = 11
	mask := imaging.NewGray(img)
	dims := detection.GraphDimensions{MinX: 0, MaxX: 1, MinY: 0, MaxY: 9}

	raw := ScanColumns(mask, dims, 10)
	if len(raw) != 1 || raw[0] != (RawPoint{X: 1, Y: 4}) {
		t.Errorf("got %+v, want only column 1 at row 4", raw)
	}
}

func TestScanColumns_ThickBand(t *testing.T) {
	var pixels []image.Point
	for y := 40; y <= 48; y++ {
		pixels = append(pixels, image.Pt(3, y))
	}
	// Even-sized run: rows 10..13 give 11.5.
	for y := 10; y <= 13; y++ {
		pixels = append(pixels, image.Pt(4, y))
	}
	mask := createMask(6, 60, 255, pixels)
	dims := detection.GraphDimensions{MinX: 0, MaxX: 5, MinY: 0, MaxY: 59}

	raw := ScanColumns(mask, dims, 10)
	want := []RawPoint{{X: 3, Y: 44}, {X: 4, Y: 11.5}}
	if len(raw) != 2 || raw[0] != want[0] || raw[1] != want[1] {
		t.Errorf("got %+v, want %+v", raw, want)
	}
}

func TestExtractRawPoints(t *testing.T) {
	// A 9-row band on a dark crop survives binarization and erosion while a
	// single-pixel speck does not.
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 16; y <= 24; y++ {
		for x := 0; x < 40; x++ {
			img.Pix[y*img.Stride+x] = 255
		}
	}
	img.Pix[5*img.Stride+30] = 255
	crop := imaging.NewGray(img)
	dims := detection.GraphDimensions{MinX: 0, MaxX: 39, MinY: 0, MaxY: 39}

	raw := ExtractRawPoints(crop, dims, DefaultConfig())
	if len(raw) == 0 {
		t.Fatal("band did not survive extraction")
	}
	for _, p := range raw {
		if p.Y != 20 {
			t.Errorf("column %d: got y=%v, want 20", p.X, p.Y)
		}
	}
}

func TestBinarize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.Pix[0] = 100
	img.Pix[1] = 240
	mask := Binarize(imaging.NewGray(img), 0.7)
	if mask.At(0, 0) != 0 || mask.At(1, 0) != 255 {
		t.Errorf("got [%d %d], want [0 255]", mask.At(0, 0), mask.At(1, 0))
	}
}
