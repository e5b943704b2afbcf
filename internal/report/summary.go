package report

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/glucose-digitizer/internal/digitizer"
)

// ErrNoReadings is returned when there is nothing to summarize or plot.
var ErrNoReadings = errors.New("no readings")

// Summary describes one digitized day.
type Summary struct {
	Unit   digitizer.Unit `json:"unit"`
	Count  int            `json:"count"`
	Mean   float64        `json:"mean"`
	StdDev float64        `json:"std_dev"`
	Min    float64        `json:"min"`
	Max    float64        `json:"max"`

	// FirstHour and LastHour bound the time covered by the curve.
	FirstHour float64 `json:"first_hour"`
	LastHour  float64 `json:"last_hour"`

	// TimeInRange, TimeBelow and TimeAbove are fractions (0-1) of the
	// samples inside, below and above the unit's target range. Samples are
	// one per pixel column, so they are evenly spaced in time.
	TimeInRange float64 `json:"time_in_range"`
	TimeBelow   float64 `json:"time_below"`
	TimeAbove   float64 `json:"time_above"`

	GoodRange digitizer.Range `json:"good_range"`
}

// Summarize computes summary statistics of points against the scale's
// target range.
func Summarize(points []digitizer.GraphPoint, scale digitizer.Scale) (*Summary, error) {
	if len(points) == 0 {
		return nil, ErrNoReadings
	}

	values := make([]float64, len(points))
	var in, below, above int
	for i, p := range points {
		values[i] = p.Y
		switch {
		case p.Y < scale.GoodRange.Min:
			below++
		case p.Y > scale.GoodRange.Max:
			above++
		default:
			in++
		}
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	n := float64(len(values))

	return &Summary{
		Unit:        scale.Unit,
		Count:       len(values),
		Mean:        mean,
		StdDev:      std,
		Min:         floats.Min(values),
		Max:         floats.Max(values),
		FirstHour:   points[0].X,
		LastHour:    points[len(points)-1].X,
		TimeInRange: float64(in) / n,
		TimeBelow:   float64(below) / n,
		TimeAbove:   float64(above) / n,
		GoodRange:   scale.GoodRange,
	}, nil
}
