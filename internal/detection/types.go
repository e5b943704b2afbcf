package detection

import (
	"errors"
	"image"
)

var (
	// ErrBoundaryDetection means the axis cross-scan found no qualifying plot
	// box: the screenshot does not match the expected layout.
	ErrBoundaryDetection = errors.New("plot boundary detection failed")

	// ErrDegenerateViewport means a detected region has zero width or height,
	// so mapping pixels onto it would divide by zero.
	ErrDegenerateViewport = errors.New("degenerate viewport")
)

// Rect is an integer pixel rectangle. A validated Rect has positive Width and
// Height; zero or negative extents signal a failed detection.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether r has a positive area.
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Rectangle converts r to a standard library rectangle (exclusive max).
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// GraphDimensions are the pixel bounds of the plot viewport inside the
// cropped image. All four bounds are inclusive pixel indices; a valid value
// has MinX < MaxX and MinY < MaxY.
type GraphDimensions struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Valid reports whether d spans at least two pixels on both axes.
func (d GraphDimensions) Valid() bool {
	return d.MinX < d.MaxX && d.MinY < d.MaxY
}

// Rectangle returns the viewport as a standard library rectangle covering
// the inclusive bounds.
func (d GraphDimensions) Rectangle() image.Rectangle {
	return image.Rect(d.MinX, d.MinY, d.MaxX+1, d.MaxY+1)
}

// Thresholds are the tunable constants of the axis and gridline heuristics.
type Thresholds struct {
	// Black is the intensity below which a preprocessed pixel counts as dark.
	Black uint8

	// LineFill is the fraction of a row that must be non-dark for the row to
	// count as a gridline.
	LineFill float64

	// AxisMargin is the number of pixels trimmed inside each detected
	// horizontal edge of the plot box.
	AxisMargin int
}

// DefaultThresholds returns the values calibrated against the supported
// screenshot layouts.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Black:      5,
		LineFill:   0.7,
		AxisMargin: 2,
	}
}

func (t Thresholds) isDark(px uint8) bool {
	return px < t.Black
}

// isLine reports whether more than LineFill of the row is non-dark.
func (t Thresholds) isLine(row []uint8) bool {
	lit := 0
	for _, px := range row {
		if !t.isDark(px) {
			lit++
		}
	}
	return float64(lit) > float64(len(row))*t.LineFill
}
