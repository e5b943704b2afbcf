package digitizer

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// RawPoint is one curve sample in cropped-image pixel space: the column and
// the median foreground row of that column.
type RawPoint struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// Binarize keeps pixels brighter than threshold (relative, 0-1) and clears
// everything else.
func Binarize(crop *imaging.Gray, threshold float64) *imaging.Gray {
	return imaging.Mask(crop, threshold)
}

// Thin erodes a binary mask. It pulls the anti-aliased, thickened stroke back
// towards its centre line and removes specks smaller than the kernel.
func Thin(mask *imaging.Gray, radius float64, iterations int) *imaging.Gray {
	return imaging.Erode(mask, radius, iterations)
}

// ScanColumns reduces every column of an eroded mask to at most one point.
//
// For column x the candidate rows are those brighter than foreground and
// within [dims.MinY, dims.MaxY]. A column with candidates yields
// RawPoint{x, median(rows)}; an empty column yields nothing, so the result is
// ordered by strictly increasing X and may have gaps.
func ScanColumns(eroded *imaging.Gray, dims detection.GraphDimensions, foreground uint8) []RawPoint {
	width, height := eroded.Width(), eroded.Height()
	top := max(dims.MinY, 0)
	bottom := min(dims.MaxY, height-1)

	points := make([]RawPoint, 0, width)
	rows := make([]float64, 0, height)
	for x := 0; x < width; x++ {
		rows = rows[:0]
		for y := top; y <= bottom; y++ {
			if eroded.At(x, y) > foreground {
				rows = append(rows, float64(y))
			}
		}
		if len(rows) == 0 {
			continue
		}
		points = append(points, RawPoint{X: x, Y: Median(rows)})
	}
	return points
}

// ExtractRawPoints runs binarization, erosion and the column scan on a
// preprocessed crop.
func ExtractRawPoints(crop *imaging.Gray, dims detection.GraphDimensions, cfg Config) []RawPoint {
	mask := Binarize(crop, cfg.MaskThreshold)
	eroded := Thin(mask, cfg.ErodeRadius, cfg.ErodeIterations)
	return ScanColumns(eroded, dims, cfg.ForegroundThreshold)
}

// Median returns the median of values; for an even count it is the mean of
// the two central values. It returns NaN for an empty slice. values is not
// modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := values
	if !sort.Float64sAreSorted(values) {
		sorted = append([]float64(nil), values...)
		sort.Float64s(sorted)
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return stat.Mean(sorted[mid-1:mid+1], nil)
}
