package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayOptions controls what Overlay draws. Zero rectangles are skipped.
type OverlayOptions struct {
	// Crop is the detected plot box in source coordinates.
	Crop image.Rectangle

	// Viewport is the gridline-bounded data area in source coordinates.
	Viewport image.Rectangle

	// Points are curve samples in source coordinates.
	Points []image.Point

	// CurveColorHex colours the curve samples, "#RRGGBB" or "#RRGGBBAA".
	// Defaults to opaque magenta.
	CurveColorHex string
}

// Overlay returns an RGBA copy of img with the detection results drawn on top:
// the crop box in red, the viewport in blue and each curve sample as a 3x3
// dot. It is a calibration aid; the pixels it draws never feed back into
// digitization.
func Overlay(img image.Image, opts OverlayOptions) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	cropColor := color.RGBA{255, 0, 0, 255}
	viewColor := color.RGBA{0, 96, 255, 255}
	curveColor, err := ParseHexColor(opts.CurveColorHex)
	if err != nil {
		curveColor = color.RGBA{255, 0, 255, 255}
	}

	if !opts.Crop.Empty() {
		drawRect(result, opts.Crop, cropColor)
		drawLabel(result, opts.Crop.Min.X+2, opts.Crop.Min.Y+2, fmt.Sprintf("crop %dx%d", opts.Crop.Dx(), opts.Crop.Dy()), cropColor)
	}
	if !opts.Viewport.Empty() {
		drawRect(result, opts.Viewport, viewColor)
		drawLabel(result, opts.Viewport.Min.X+2, opts.Viewport.Max.Y-4, "viewport", viewColor)
	}

	rb := result.Bounds()
	for _, p := range opts.Points {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				q := image.Pt(p.X+dx, p.Y+dy)
				if q.In(rb) {
					result.SetRGBA(q.X, q.Y, curveColor)
				}
			}
		}
	}

	return result
}

// drawRect outlines r (exclusive max edge) clipped to img.
func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	b := img.Bounds()
	r = r.Intersect(b)
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// drawLabel writes text with its top-left corner near (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
