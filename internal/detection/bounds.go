package detection

import (
	"fmt"

	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// DetectCropBounds locates the plot box inside a preprocessed screenshot.
//
// The screenshot is assumed to show its plot area as a dark band (after
// inversion) crossed by the image's vertical midpoint, with the left edge of
// that band close to the left border of the image.
//
// # Algorithm
//
//  1. Sample the row at the vertical midpoint. The first and last dark pixels
//     give the horizontal extent of the band (minR, maxR).
//  2. Sample the column at minR. Walking down from the midpoint, the first
//     non-dark pixel minus AxisMargin is the bottom edge; walking up, the first
//     non-dark pixel plus AxisMargin is the top edge.
//  3. Return {minR, top, maxR-minR, bottom-top}.
//
// Any missing transition fails with ErrBoundaryDetection. No partial crop is
// ever returned.
func DetectCropBounds(g *imaging.Gray, t Thresholds) (Rect, error) {
	width, height := g.Width(), g.Height()
	if width == 0 || height == 0 {
		return Rect{}, fmt.Errorf("%w: empty image", ErrBoundaryDetection)
	}

	mid := height / 2
	minR, maxR := -1, -1
	for x, px := range g.Row(mid) {
		if t.isDark(px) {
			if minR < 0 {
				minR = x
			}
			maxR = x
		}
	}
	if minR < 0 {
		return Rect{}, fmt.Errorf("%w: no dark pixel in row %d", ErrBoundaryDetection, mid)
	}

	column := g.Column(minR)

	bottom := -1
	for y := mid; y < height; y++ {
		if !t.isDark(column[y]) {
			bottom = y
			break
		}
	}
	if bottom < 0 {
		return Rect{}, fmt.Errorf("%w: no lower edge below row %d in column %d", ErrBoundaryDetection, mid, minR)
	}

	top := -1
	for y := mid; y >= 0; y-- {
		if !t.isDark(column[y]) {
			top = y
			break
		}
	}
	if top < 0 {
		return Rect{}, fmt.Errorf("%w: no upper edge above row %d in column %d", ErrBoundaryDetection, mid, minR)
	}

	minC := top + t.AxisMargin
	maxC := bottom - t.AxisMargin
	r := Rect{X: minR, Y: minC, Width: maxR - minR, Height: maxC - minC}
	if !r.Valid() {
		return Rect{}, fmt.Errorf("%w: plot box %+v has no area", ErrBoundaryDetection, r)
	}

	return r, nil
}
