package report

import (
	"fmt"
	"math"
	"time"

	"github.com/ironsheep/glucose-digitizer/internal/digitizer"
)

// DayLayout is the date format accepted by ParseDay.
const DayLayout = "2006-01-02"

// Reading is one glucose value at a wall-clock time.
type Reading struct {
	Time  time.Time      `json:"time"`
	Hours float64        `json:"hours"`
	Value float64        `json:"value"`
	Unit  digitizer.Unit `json:"unit"`
}

// ParseDay parses a YYYY-MM-DD date as midnight in loc. An empty string
// means today.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if s == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want %s): %w", s, DayLayout, err)
	}
	return day, nil
}

// AnchorToDay places each point on the calendar day containing day.
//
// Hours are converted to whole seconds past local midnight, truncating the
// fraction, and added on the wall clock: on a daylight saving change the
// 02:30 reading stays at 02:30 rather than shifting by the lost hour.
func AnchorToDay(points []digitizer.GraphPoint, day time.Time, unit digitizer.Unit) []Reading {
	y, m, d := day.Date()
	loc := day.Location()

	readings := make([]Reading, 0, len(points))
	for _, p := range points {
		secs := int(math.Trunc(p.X * 3600))
		readings = append(readings, Reading{
			Time:  time.Date(y, m, d, 0, 0, secs, 0, loc),
			Hours: p.X,
			Value: p.Y,
			Unit:  unit,
		})
	}
	return readings
}
