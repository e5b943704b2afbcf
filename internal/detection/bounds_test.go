package detection

import (
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/glucose-digitizer/internal/imaging"
	"github.com/ironsheep/glucose-digitizer/internal/synth"
)

// createGray builds a Gray filled with bg and with each rectangle in boxes
// set to the paired value.
func createGray(width, height int, bg uint8, boxes map[image.Rectangle]uint8) *imaging.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = bg
	}
	for r, v := range boxes {
		r = r.Intersect(img.Bounds())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Pix[y*img.Stride+x] = v
			}
		}
	}
	return imaging.NewGray(img)
}

// preprocessed renders a synthetic screenshot and applies the green-channel
// inversion the digitizer uses.
func preprocessed(t *testing.T, o synth.Options) *imaging.Gray {
	t.Helper()
	g, err := imaging.Grey(synth.Screenshot(o), imaging.GreyGreen)
	if err != nil {
		t.Fatalf("Grey failed: %v", err)
	}
	return imaging.Invert(g)
}

func TestDetectCropBounds(t *testing.T) {
	g := createGray(100, 80, 128, map[image.Rectangle]uint8{
		image.Rect(10, 20, 90, 60): 0,
	})

	r, err := DetectCropBounds(g, DefaultThresholds())
	if err != nil {
		t.Fatalf("DetectCropBounds failed: %v", err)
	}

	want := Rect{X: 10, Y: 21, Width: 79, Height: 37}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestDetectCropBounds_Synthetic(t *testing.T) {
	g := preprocessed(t, synth.Default())

	r, err := DetectCropBounds(g, DefaultThresholds())
	if err != nil {
		t.Fatalf("DetectCropBounds failed: %v", err)
	}

	want := Rect{X: 30, Y: 41, Width: 199, Height: 127}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestDetectCropBounds_Margin(t *testing.T) {
	g := createGray(100, 80, 128, map[image.Rectangle]uint8{
		image.Rect(10, 20, 90, 60): 0,
	})

	th := DefaultThresholds()
	th.AxisMargin = 0
	r, err := DetectCropBounds(g, th)
	if err != nil {
		t.Fatalf("DetectCropBounds failed: %v", err)
	}
	if r.Y != 19 || r.Height != 41 {
		t.Errorf("zero margin: got Y=%d Height=%d, want Y=19 Height=41", r.Y, r.Height)
	}
}

func TestDetectCropBounds_Errors(t *testing.T) {
	tests := []struct {
		name string
		g    *imaging.Gray
	}{
		{
			name: "no dark pixel on midline",
			g:    createGray(100, 80, 128, nil),
		},
		{
			name: "box reaches bottom edge",
			g: createGray(100, 80, 128, map[image.Rectangle]uint8{
				image.Rect(10, 20, 90, 80): 0,
			}),
		},
		{
			name: "box reaches top edge",
			g: createGray(100, 80, 128, map[image.Rectangle]uint8{
				image.Rect(10, 0, 90, 60): 0,
			}),
		},
		{
			name: "box thinner than margins",
			g: createGray(100, 80, 128, map[image.Rectangle]uint8{
				image.Rect(10, 39, 90, 42): 0,
			}),
		},
		{
			name: "single dark column",
			g: createGray(100, 80, 128, map[image.Rectangle]uint8{
				image.Rect(10, 20, 11, 60): 0,
			}),
		},
		{
			name: "all black",
			g:    createGray(50, 50, 0, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DetectCropBounds(tt.g, DefaultThresholds())
			if !errors.Is(err, ErrBoundaryDetection) {
				t.Fatalf("got %v, want ErrBoundaryDetection", err)
			}
			if r != (Rect{}) {
				t.Errorf("partial crop returned: %+v", r)
			}
		})
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 3, Y: 4, Width: 10, Height: 5}
	if !r.Valid() {
		t.Error("expected valid rect")
	}
	if got := r.Rectangle(); got != image.Rect(3, 4, 13, 9) {
		t.Errorf("Rectangle() = %v", got)
	}

	for _, bad := range []Rect{{Width: 0, Height: 5}, {Width: 5, Height: 0}, {Width: -1, Height: 3}} {
		if bad.Valid() {
			t.Errorf("%+v reported valid", bad)
		}
	}
}
