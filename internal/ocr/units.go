package ocr

import (
	"errors"
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"

	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/digitizer"
)

// ErrUnitUndetected means the axis labels gave no usable hint of the
// glucose unit.
var ErrUnitUndetected = errors.New("glucose unit not detected")

// mmolCeiling is the largest axis label plausible in mmol/L. mg/dL axes
// always carry at least one label above it.
const mmolCeiling = 30

// labelScale is how much the label strip is upscaled before OCR.
const labelScale = 3

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// UnitGuess is the result of reading a graph's axis labels.
type UnitGuess struct {
	Unit digitizer.Unit `json:"unit"`

	// Labels are the numeric axis labels that were recognized.
	Labels []float64 `json:"labels"`

	// Text is the raw OCR output of the label strip.
	Text string `json:"text"`
}

// LabelStrip returns the region left of the plot box, where the y-axis labels
// are drawn. It spans the plot box vertically, widened by pad pixels above and
// below so labels centred on the outermost gridlines are not clipped.
func LabelStrip(bounds image.Rectangle, plot detection.Rect, pad int) image.Rectangle {
	r := image.Rect(bounds.Min.X, plot.Y-pad, plot.X, plot.Y+plot.Height+pad)
	return r.Intersect(bounds)
}

// DetectUnit reads the y-axis labels of a screenshot and decides whether the
// graph is plotted in mg/dL or mmol/L.
//
// plot is the box found by detection.DetectCropBounds in src coordinates.
func DetectUnit(reader Reader, src image.Image, plot detection.Rect) (*UnitGuess, error) {
	strip := LabelStrip(src.Bounds(), plot, 12)
	if strip.Dx() < 2 || strip.Dy() < 2 {
		return nil, fmt.Errorf("%w: no room for axis labels left of the plot", ErrUnitUndetected)
	}

	result, err := ReadRegion(reader, src, strip, labelScale)
	if err != nil {
		return nil, fmt.Errorf("read axis labels: %w", err)
	}

	unit, labels, err := ClassifyLabels(result.FullText)
	if err != nil {
		return nil, err
	}
	return &UnitGuess{Unit: unit, Labels: labels, Text: result.FullText}, nil
}

// ClassifyLabels decides the unit from OCR'd axis text.
//
// An explicit unit string wins. Otherwise any decimal label, or a largest
// label no greater than 30, means mmol/L; a larger label means mg/dL.
func ClassifyLabels(text string) (digitizer.Unit, []float64, error) {
	labels := parseLabels(text)

	compact := strings.ToLower(strings.Join(strings.Fields(text), ""))
	switch {
	case strings.Contains(compact, "mmol"):
		return digitizer.MmolPerL, labels, nil
	case strings.Contains(compact, "mg/dl"), strings.Contains(compact, "mgdl"):
		return digitizer.MgPerDL, labels, nil
	}

	if len(labels) == 0 {
		return "", nil, fmt.Errorf("%w: no numeric labels in %q", ErrUnitUndetected, text)
	}

	for _, s := range numberPattern.FindAllString(text, -1) {
		if strings.ContainsAny(s, ".,") {
			return digitizer.MmolPerL, labels, nil
		}
	}

	top := labels[0]
	for _, v := range labels[1:] {
		top = max(top, v)
	}
	if top <= mmolCeiling {
		return digitizer.MmolPerL, labels, nil
	}
	return digitizer.MgPerDL, labels, nil
}

// parseLabels extracts every number in text. A comma decimal separator, as
// used on French locale screenshots, is accepted.
func parseLabels(text string) []float64 {
	matches := numberPattern.FindAllString(text, -1)
	labels := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
		if err != nil {
			continue
		}
		labels = append(labels, v)
	}
	return labels
}
