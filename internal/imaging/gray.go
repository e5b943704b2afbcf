package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/channel"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// GreyAlgorithm selects how a colour pixel collapses to a single intensity.
type GreyAlgorithm string

const (
	// GreyGreen keeps only the green channel. On the supported glucose app
	// screenshots it separates the plotted line from the background chrome best.
	GreyGreen GreyAlgorithm = "green"

	// GreyLuma uses the weighted RGB luminance.
	GreyLuma GreyAlgorithm = "luma"

	// GreyLightness uses the CIE L* lightness of each pixel.
	GreyLightness GreyAlgorithm = "lightness"
)

// Valid reports whether a is a known algorithm.
func (a GreyAlgorithm) Valid() bool {
	switch a {
	case GreyGreen, GreyLuma, GreyLightness:
		return true
	}
	return false
}

// Gray is an immutable single-channel 8-bit raster anchored at (0,0).
//
// Every transform in this package returns a new Gray; the receiver is never
// modified and no pixel buffer is shared with the caller's source image.
//
// Pixel accessors do not bounds-check beyond what the underlying slice does;
// callers iterate within [0, Width) x [0, Height).
type Gray struct {
	img *image.Gray
}

// NewGray copies img into a new Gray. The copy is re-anchored so that its
// top-left pixel is (0,0).
func NewGray(img *image.Gray) *Gray {
	return &Gray{img: asGray(img)}
}

// wrap adopts a freshly produced *image.Gray without copying when it is
// already origin-anchored.
func wrap(img *image.Gray) *Gray {
	if img.Bounds().Min != (image.Point{}) {
		return &Gray{img: asGray(img)}
	}
	return &Gray{img: img}
}

// Width returns the raster width in pixels.
func (g *Gray) Width() int { return g.img.Rect.Dx() }

// Height returns the raster height in pixels.
func (g *Gray) Height() int { return g.img.Rect.Dy() }

// Bounds returns the raster rectangle, always starting at (0,0).
func (g *Gray) Bounds() image.Rectangle { return g.img.Rect }

// At returns the intensity (0-255) at (x, y).
func (g *Gray) At(x, y int) uint8 {
	return g.img.Pix[y*g.img.Stride+x]
}

// Row returns a copy of the intensities of row y, left to right.
func (g *Gray) Row(y int) []uint8 {
	w := g.Width()
	row := make([]uint8, w)
	copy(row, g.img.Pix[y*g.img.Stride:y*g.img.Stride+w])
	return row
}

// Column returns a copy of the intensities of column x, top to bottom.
func (g *Gray) Column(x int) []uint8 {
	h := g.Height()
	col := make([]uint8, h)
	for y := 0; y < h; y++ {
		col[y] = g.img.Pix[y*g.img.Stride+x]
	}
	return col
}

// Image returns a copy of the raster as a standard library image.
func (g *Gray) Image() *image.Gray {
	return asGray(g.img)
}

// Grey converts a decoded source image to a single-channel raster using the
// given algorithm. An empty algorithm means GreyGreen.
func Grey(src image.Image, alg GreyAlgorithm) (*Gray, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("cannot convert empty image to greyscale")
	}

	switch alg {
	case GreyGreen, "":
		return wrap(channel.Extract(src, channel.Green)), nil
	case GreyLuma:
		return &Gray{img: asGray(effect.Grayscale(src))}, nil
	case GreyLightness:
		return lightness(src), nil
	default:
		return nil, fmt.Errorf("unknown grey algorithm: %q", alg)
	}
}

// lightness maps every pixel to its CIE L* value scaled to 0-255.
// Fully transparent pixels become black.
func lightness(src image.Image) *Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(src.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: toByte(l * 255)})
		}
	}
	return &Gray{img: dst}
}

// Invert flips intensity polarity: v becomes 255-v.
func Invert(g *Gray) *Gray {
	return &Gray{img: asGray(effect.Invert(g.img))}
}

// Crop extracts the rectangle r. The rectangle must be non-empty and lie
// within g's bounds.
func Crop(g *Gray, r image.Rectangle) (*Gray, error) {
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: width and height must be positive", r)
	}
	if !r.In(g.Bounds()) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, g.Bounds())
	}
	return &Gray{img: asGray(imaging.Crop(g.img, r))}, nil
}

// Mask binarizes g: pixels whose relative intensity exceeds threshold (0-1)
// become 255, all others 0.
func Mask(g *Gray, threshold float64) *Gray {
	cut := math.Floor(threshold * 255)
	if cut >= 255 {
		return &Gray{img: image.NewGray(g.Bounds())}
	}
	level := uint8(0)
	if cut >= 0 {
		level = uint8(cut) + 1
	}
	return wrap(segment.Threshold(g.img, level))
}

// Erode applies morphological erosion iterations times with a square
// structuring element of the given radius (radius 1 is a 3x3 kernel).
func Erode(g *Gray, radius float64, iterations int) *Gray {
	out := g.img
	for i := 0; i < iterations; i++ {
		out = asGray(effect.Erode(out, radius))
	}
	if out == g.img {
		out = asGray(out)
	}
	return &Gray{img: out}
}

// asGray copies any image into a new origin-anchored *image.Gray.
func asGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
