package digitizer

import (
	"fmt"

	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// Config holds every tunable constant of the pipeline. The defaults were
// calibrated against phone screenshots of one glucose app; other devices or
// app versions may need their own values.
type Config struct {
	// GreyAlgorithm selects how colour collapses to intensity.
	GreyAlgorithm imaging.GreyAlgorithm `json:"grey_algorithm"`

	// BlackThreshold is the preprocessed intensity below which a pixel is dark.
	BlackThreshold uint8 `json:"black_threshold"`

	// LineFillRatio is the fraction of a row that must be lit for the row to
	// be a gridline.
	LineFillRatio float64 `json:"line_fill_ratio"`

	// MaskThreshold is the relative intensity (0-1) a pixel must exceed to
	// survive binarization.
	MaskThreshold float64 `json:"mask_threshold"`

	// ErodeIterations is how many times the mask is eroded.
	ErodeIterations int `json:"erode_iterations"`

	// ErodeRadius is the structuring element radius; 1 is a 3x3 kernel.
	ErodeRadius float64 `json:"erode_radius"`

	// ForegroundThreshold is the eroded intensity a pixel must exceed to count
	// as curve ink.
	ForegroundThreshold uint8 `json:"foreground_threshold"`

	// AxisMargin is trimmed inside the detected top and bottom plot edges.
	AxisMargin int `json:"axis_margin"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	t := detection.DefaultThresholds()
	return Config{
		GreyAlgorithm:       imaging.GreyGreen,
		BlackThreshold:      t.Black,
		LineFillRatio:       t.LineFill,
		MaskThreshold:       0.7,
		ErodeIterations:     2,
		ErodeRadius:         1,
		ForegroundThreshold: 10,
		AxisMargin:          t.AxisMargin,
	}
}

// Validate checks that every field is within its usable range.
func (c Config) Validate() error {
	if !c.GreyAlgorithm.Valid() {
		return fmt.Errorf("grey_algorithm %q must be one of green, luma, lightness", c.GreyAlgorithm)
	}
	if c.BlackThreshold == 0 {
		return fmt.Errorf("black_threshold must be positive")
	}
	if c.LineFillRatio <= 0 || c.LineFillRatio >= 1 {
		return fmt.Errorf("line_fill_ratio must be between 0 and 1 (exclusive)")
	}
	if c.MaskThreshold < 0 || c.MaskThreshold >= 1 {
		return fmt.Errorf("mask_threshold must be in [0, 1)")
	}
	if c.ErodeIterations < 0 {
		return fmt.Errorf("erode_iterations cannot be negative")
	}
	if c.ErodeIterations > 0 && c.ErodeRadius <= 0 {
		return fmt.Errorf("erode_radius must be positive when erosion is enabled")
	}
	if c.AxisMargin < 0 {
		return fmt.Errorf("axis_margin cannot be negative")
	}
	return nil
}

// Thresholds returns the subset of the configuration used by detection.
func (c Config) Thresholds() detection.Thresholds {
	return detection.Thresholds{
		Black:      c.BlackThreshold,
		LineFill:   c.LineFillRatio,
		AxisMargin: c.AxisMargin,
	}
}
