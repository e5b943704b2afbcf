// Package synth renders synthetic glucose-app screenshots with a known curve.
//
// The layout mirrors the screenshots the digitizer is calibrated for: grey UI
// chrome around a white plot box, light grey horizontal gridlines that stop
// short of the box edges, and a thick black trend line. Because the curve is
// generated from a function, tests and calibration runs can compare the
// digitized output with ground truth.
package synth

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options describes a synthetic screenshot.
type Options struct {
	Width  int
	Height int

	// Plot is the white plot box.
	Plot image.Rectangle

	// Gridlines are the rows of the horizontal gridlines, top to bottom. The
	// first and last bound the viewport.
	Gridlines []int

	// GridInset is how far gridlines stop short of the plot box's left and
	// right edges.
	GridInset int

	// Labels are drawn left of the plot box next to each gridline (same
	// order as Gridlines). Missing entries are skipped.
	Labels []string

	// Curve maps normalized time t in [0,1] to a normalized level in [0,1],
	// where 0 is the bottom gridline and 1 the top gridline.
	Curve func(t float64) float64

	// Thickness is the vertical stroke height of the curve in pixels.
	Thickness int

	// Gaps are normalized time intervals where no curve is drawn.
	Gaps [][2]float64

	// Specks are single ink pixels scattered over the plot.
	Specks []image.Point

	Chrome color.RGBA
	Paper  color.RGBA
	Grid   color.RGBA
	Ink    color.RGBA
}

// Default returns a 260x200 screenshot layout with a rising curve.
func Default() Options {
	return Options{
		Width:     260,
		Height:    200,
		Plot:      image.Rect(30, 40, 230, 170),
		Gridlines: []int{50, 100, 150},
		GridInset: 10,
		Curve:     func(t float64) float64 { return 0.2 + 0.6*t },
		Thickness: 9,
		Chrome:    color.RGBA{128, 128, 128, 255},
		Paper:     color.RGBA{255, 255, 255, 255},
		Grid:      color.RGBA{200, 200, 200, 255},
		Ink:       color.RGBA{0, 0, 0, 255},
	}
}

// GridSpan returns the first and last column (inclusive) covered by the
// gridlines.
func (o Options) GridSpan() (int, int) {
	return o.Plot.Min.X + o.GridInset, o.Plot.Max.X - o.GridInset - 1
}

// CurveRow returns the curve centre row for column x, or false when x is
// outside the gridline span or inside a gap.
func (o Options) CurveRow(x int) (int, bool) {
	x0, x1 := o.GridSpan()
	if x < x0 || x > x1 || len(o.Gridlines) < 2 || o.Curve == nil {
		return 0, false
	}
	t := float64(x-x0) / float64(x1-x0)
	for _, g := range o.Gaps {
		if t >= g[0] && t <= g[1] {
			return 0, false
		}
	}
	top := o.Gridlines[0]
	bottom := o.Gridlines[len(o.Gridlines)-1]
	level := o.Curve(t)
	return int(math.Round(float64(bottom) - level*float64(bottom-top))), true
}

// Screenshot renders the options into a new RGBA image.
func Screenshot(o Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	fill(img, img.Bounds(), o.Chrome)
	fill(img, o.Plot, o.Paper)

	x0, x1 := o.GridSpan()
	for _, row := range o.Gridlines {
		fill(img, image.Rect(x0, row, x1+1, row+1), o.Grid)
	}

	half := o.Thickness / 2
	for x := x0; x <= x1; x++ {
		yc, ok := o.CurveRow(x)
		if !ok {
			continue
		}
		fill(img, image.Rect(x, yc-half, x+1, yc-half+o.Thickness), o.Ink)
	}

	for _, p := range o.Specks {
		if p.In(img.Bounds()) {
			img.SetRGBA(p.X, p.Y, o.Ink)
		}
	}

	face := basicfont.Face7x13
	for i, label := range o.Labels {
		if i >= len(o.Gridlines) || label == "" {
			continue
		}
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(o.Ink),
			Face: face,
			Dot:  fixed.P(2, o.Gridlines[i]+face.Ascent/2),
		}
		d.DrawString(label)
	}

	return img
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
