package detection

import (
	"fmt"

	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// DetectGraphDimensions finds the gridline-bounded viewport inside a cropped
// plot box.
//
// A row is a gridline when its pixel on the middle column is non-dark and
// more than LineFill of the whole row is non-dark; the curve and isolated
// text never fill a row that way. The first and last gridline rows are MinY
// and MaxY. The first and last non-dark pixels of row MaxY are MinX and MaxX.
//
// When no gridline is found, or the result spans fewer than two pixels on an
// axis, the error wraps ErrDegenerateViewport.
func DetectGraphDimensions(g *imaging.Gray, t Thresholds) (GraphDimensions, error) {
	width, height := g.Width(), g.Height()
	if width == 0 || height == 0 {
		return GraphDimensions{}, fmt.Errorf("%w: empty image", ErrDegenerateViewport)
	}

	midX := width / 2
	minY, maxY := -1, -1
	for y, px := range g.Column(midX) {
		if t.isDark(px) || !t.isLine(g.Row(y)) {
			continue
		}
		if minY < 0 {
			minY = y
		}
		maxY = y
	}
	if minY < 0 {
		return GraphDimensions{}, fmt.Errorf("%w: no gridline crosses column %d", ErrDegenerateViewport, midX)
	}

	minX, maxX := -1, -1
	for x, px := range g.Row(maxY) {
		if !t.isDark(px) {
			if minX < 0 {
				minX = x
			}
			maxX = x
		}
	}

	dims := GraphDimensions{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
	if !dims.Valid() {
		return GraphDimensions{}, fmt.Errorf("%w: viewport %+v", ErrDegenerateViewport, dims)
	}

	return dims, nil
}
