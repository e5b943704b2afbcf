package digitizer

import (
	"fmt"
	"image"

	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// Digitizer turns glucose trend screenshots into readings. It holds only
// immutable configuration, so one value may be shared by any number of
// goroutines.
type Digitizer struct {
	cfg     Config
	glucose Range
}

// New validates cfg and the glucose range and returns a Digitizer.
func New(cfg Config, glucose Range) (*Digitizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if !glucose.Valid() {
		return nil, fmt.Errorf("invalid glucose range: min %.2f must be below max %.2f", glucose.Min, glucose.Max)
	}
	return &Digitizer{cfg: cfg, glucose: glucose}, nil
}

// Config returns the pipeline configuration.
func (d *Digitizer) Config() Config { return d.cfg }

// GlucoseRange returns the glucose span mapped onto the viewport.
func (d *Digitizer) GlucoseRange() Range { return d.glucose }

// Diagnostics exposes every intermediate artifact of one digitization, for
// calibration tooling and golden-image tests. Its layout is not a stable
// contract.
type Diagnostics struct {
	Source image.Image

	// Preprocessed is the greyscale, inverted source.
	Preprocessed *imaging.Gray

	// CropBounds is the plot box in source coordinates.
	CropBounds detection.Rect

	Crop *imaging.Gray

	// Dimensions is the viewport in crop coordinates.
	Dimensions detection.GraphDimensions

	Mask   *imaging.Gray
	Eroded *imaging.Gray

	RawPoints []RawPoint

	// Mapped holds every raw point in domain coordinates, including samples
	// that fall outside the day window.
	Mapped []GraphPoint

	// Points is exactly what Process returns for the same input.
	Points []GraphPoint
}

// Process digitizes a decoded screenshot.
//
// The result is ordered by strictly increasing time, every X lies in [0,24)
// and every Y within the glucose range. Errors wrap ErrBoundaryDetection or
// ErrDegenerateViewport and are deterministic: retrying the same image fails
// the same way.
func (d *Digitizer) Process(src image.Image) ([]GraphPoint, error) {
	diag, err := d.Diagnose(src)
	if err != nil {
		return nil, err
	}
	return diag.Points, nil
}

// Diagnose runs the same pipeline as Process and returns every intermediate
// artifact. On failure the returned Diagnostics holds the artifacts of the
// stages that completed, alongside the error.
func (d *Digitizer) Diagnose(src image.Image) (*Diagnostics, error) {
	diag := &Diagnostics{Source: src}

	pre, err := Preprocess(src, d.cfg.GreyAlgorithm)
	if err != nil {
		return diag, err
	}
	diag.Preprocessed = pre

	th := d.cfg.Thresholds()
	bounds, err := detection.DetectCropBounds(pre, th)
	if err != nil {
		return diag, fmt.Errorf("detect plot bounds: %w", err)
	}
	diag.CropBounds = bounds

	crop, err := imaging.Crop(pre, bounds.Rectangle())
	if err != nil {
		return diag, fmt.Errorf("%w: %v", detection.ErrBoundaryDetection, err)
	}
	diag.Crop = crop

	dims, err := detection.DetectGraphDimensions(crop, th)
	if err != nil {
		return diag, fmt.Errorf("detect graph dimensions: %w", err)
	}
	diag.Dimensions = dims

	diag.Mask = Binarize(crop, d.cfg.MaskThreshold)
	diag.Eroded = Thin(diag.Mask, d.cfg.ErodeRadius, d.cfg.ErodeIterations)
	diag.RawPoints = ScanColumns(diag.Eroded, dims, d.cfg.ForegroundThreshold)

	mapped, err := MapToDomain(diag.RawPoints, dims, DayHours, d.glucose)
	if err != nil {
		return diag, err
	}
	diag.Mapped = mapped
	diag.Points = dayWindow(mapped)

	return diag, nil
}

// dayWindow keeps points whose time lies in the half-open day [0,24). Ink
// left of the first gridline pixel maps before midnight and a sample on the
// last gridline pixel maps to 24:00, which belongs to the next day.
func dayWindow(points []GraphPoint) []GraphPoint {
	out := make([]GraphPoint, 0, len(points))
	for _, p := range points {
		if p.X >= DayHours.Min && p.X < DayHours.Max {
			out = append(out, p)
		}
	}
	return out
}
