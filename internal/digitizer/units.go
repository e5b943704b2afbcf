package digitizer

import (
	"fmt"
	"strings"
)

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid reports whether the range is non-empty.
func (r Range) Valid() bool {
	return r.Min < r.Max
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// DayHours is the time axis of every supported graph: one calendar day.
var DayHours = Range{Min: 0, Max: 24}

// Unit is a blood glucose unit.
type Unit string

const (
	MgPerDL  Unit = "mg/dL"
	MmolPerL Unit = "mmol/L"
)

// Scale describes how a unit is plotted.
type Scale struct {
	Unit Unit `json:"unit"`

	// Range is the glucose span between the outermost gridlines.
	Range Range `json:"range"`

	// GoodRange is the target band used for time-in-range reporting.
	GoodRange Range `json:"good_range"`
}

var scales = map[Unit]Scale{
	MgPerDL: {
		Unit:      MgPerDL,
		Range:     Range{Min: 0, Max: 250},
		GoodRange: Range{Min: 72, Max: 126},
	},
	MmolPerL: {
		Unit:      MmolPerL,
		Range:     Range{Min: 0, Max: 21},
		GoodRange: Range{Min: 4, Max: 6.9},
	},
}

// ParseUnit accepts "mg/dL", "mmol/L" and their common spellings
// ("mgdl", "mg", "mmol", "mmoll"), case-insensitively.
func ParseUnit(s string) (Unit, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("/", "", " ", "", "-", "").Replace(k)
	switch k {
	case "mgdl", "mg":
		return MgPerDL, nil
	case "mmoll", "mmol":
		return MmolPerL, nil
	}
	return "", fmt.Errorf("unknown glucose unit: %q", s)
}

// ScaleFor returns the plotting scale of a unit.
func ScaleFor(u Unit) (Scale, error) {
	s, ok := scales[u]
	if !ok {
		return Scale{}, fmt.Errorf("unknown glucose unit: %q", u)
	}
	return s, nil
}
