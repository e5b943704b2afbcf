package digitizer

import (
	"fmt"

	"github.com/ironsheep/glucose-digitizer/internal/detection"
)

// GraphPoint is a calibrated reading: X in hours since midnight, Y in the
// configured glucose unit.
type GraphPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LinearRemap maps v from [inMin, inMax] onto [outMin, outMax]. The caller
// guarantees inMin != inMax.
func LinearRemap(v, inMin, inMax, outMin, outMax float64) float64 {
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// MapToDomain converts raw pixel samples into (hours, glucose) pairs.
//
// Column dims.MinX maps to hours.Min and dims.MaxX to hours.Max. Rows are
// inverted because pixel rows grow downwards while glucose grows upwards:
// dims.MinY maps to glucose.Max and dims.MaxY to glucose.Min.
func MapToDomain(raw []RawPoint, dims detection.GraphDimensions, hours, glucose Range) ([]GraphPoint, error) {
	if !dims.Valid() {
		return nil, fmt.Errorf("%w: cannot map onto %+v", detection.ErrDegenerateViewport, dims)
	}
	if !hours.Valid() || !glucose.Valid() {
		return nil, fmt.Errorf("invalid domain ranges: hours %+v, glucose %+v", hours, glucose)
	}

	minX, maxX := float64(dims.MinX), float64(dims.MaxX)
	minY, maxY := float64(dims.MinY), float64(dims.MaxY)
	span := glucose.Max - glucose.Min

	points := make([]GraphPoint, 0, len(raw))
	for _, p := range raw {
		points = append(points, GraphPoint{
			X: LinearRemap(float64(p.X), minX, maxX, hours.Min, hours.Max),
			Y: glucose.Max - LinearRemap(p.Y, minY, maxY, 0, span),
		})
	}
	return points, nil
}
