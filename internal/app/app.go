// Package app ties the pipeline packages together for the CLI and the MCP
// server: it loads a source, settles the glucose unit, digitizes and anchors
// the readings to a calendar day.
package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"github.com/ironsheep/glucose-digitizer/internal/config"
	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/digitizer"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
	"github.com/ironsheep/glucose-digitizer/internal/ocr"
	"github.com/ironsheep/glucose-digitizer/internal/report"
)

// Where the unit of a result came from.
const (
	UnitFromRequest  = "request"
	UnitFromConfig   = "config"
	UnitFromLabels   = "labels"
	UnitFromFallback = "fallback"
)

// Request describes one digitization.
type Request struct {
	// Source is a file path or http(s) URL.
	Source string

	// Unit overrides the configured unit: "mg/dL", "mmol/L" or "auto".
	Unit string

	// Day is the YYYY-MM-DD date readings are anchored to. Empty means today.
	Day string
}

// Result is the outcome of one digitization.
type Result struct {
	Source     string                 `json:"source"`
	Unit       digitizer.Unit         `json:"unit"`
	UnitSource string                 `json:"unit_source"`
	UnitGuess  *ocr.UnitGuess         `json:"unit_guess,omitempty"`
	Scale      digitizer.Scale        `json:"scale"`
	Points     []digitizer.GraphPoint `json:"-"`
	Readings   []report.Reading       `json:"readings"`
	Summary    *report.Summary        `json:"summary,omitempty"`

	// Diagnostics is set by Service.Diagnose only.
	Diagnostics *digitizer.Diagnostics `json:"-"`
}

// Document converts the result to its JSON export form.
func (r *Result) Document() report.Document {
	return report.Document{Source: r.Source, Summary: r.Summary, Readings: r.Readings}
}

// Service runs digitizations against a shared source cache. It is safe for
// concurrent use.
type Service struct {
	cfg    *config.Config
	cache  *imaging.SourceCache
	reader ocr.Reader
	debug  bool
}

// New creates a Service. reader may be nil, in which case "auto" units fall
// back to the configured fallback unit without reading labels.
func New(cfg *config.Config, reader ocr.Reader) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Service{
		cfg:    cfg,
		cache:  imaging.NewSourceCache(),
		reader: reader,
		debug:  os.Getenv("GLUCOSE_DIGITIZER_LOG_LEVEL") == "debug",
	}
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// Cache returns the decoded source cache.
func (s *Service) Cache() *imaging.SourceCache { return s.cache }

// Digitize loads req.Source and returns its readings and summary.
func (s *Service) Digitize(ctx context.Context, req Request) (*Result, error) {
	return s.run(ctx, req, false)
}

// Diagnose is Digitize with the pipeline's intermediate artifacts attached.
// On a pipeline failure the partial result is returned with the error so
// callers can still inspect the stages that completed.
func (s *Service) Diagnose(ctx context.Context, req Request) (*Result, error) {
	return s.run(ctx, req, true)
}

func (s *Service) run(ctx context.Context, req Request, diagnose bool) (*Result, error) {
	if req.Source == "" {
		return nil, fmt.Errorf("source is required")
	}

	loc, err := s.cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	day, err := report.ParseDay(req.Day, loc)
	if err != nil {
		return nil, err
	}

	src, err := s.cache.Load(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: req.Source}
	if err := s.resolveUnit(src, req.Unit, res); err != nil {
		return nil, err
	}

	d, err := digitizer.New(s.cfg.Pipeline, res.Scale.Range)
	if err != nil {
		return nil, err
	}

	diag, err := d.Diagnose(src)
	if diagnose {
		res.Diagnostics = diag
	}
	if err != nil {
		if diagnose {
			return res, err
		}
		return nil, err
	}

	res.Points = diag.Points
	res.Readings = report.AnchorToDay(diag.Points, day, res.Unit)
	if len(diag.Points) > 0 {
		sum, err := report.Summarize(diag.Points, res.Scale)
		if err != nil {
			return nil, err
		}
		res.Summary = sum
	}

	if s.debug {
		log.Printf("[DEBUG] digitized %s: %d points in %s (%s)", req.Source, len(res.Points), res.Unit, res.UnitSource)
	}
	return res, nil
}

// resolveUnit settles the unit and scale of res. An explicit unit wins over
// the configuration; "auto" reads the axis labels and falls back to the
// configured fallback unit when they cannot be read.
func (s *Service) resolveUnit(src image.Image, requested string, res *Result) error {
	var (
		unit digitizer.Unit
		from string
		auto bool
		err  error
	)
	switch {
	case requested == "":
		unit, err = s.cfg.Unit()
		from, auto = UnitFromConfig, s.cfg.AutoUnit()
	case strings.EqualFold(requested, config.UnitAuto):
		unit, err = digitizer.ParseUnit(s.cfg.Glucose.FallbackUnit)
		auto = true
	default:
		unit, err = digitizer.ParseUnit(requested)
		from = UnitFromRequest
	}
	if err != nil {
		return err
	}

	if auto {
		from = UnitFromFallback
		guess, err := s.detectUnit(src)
		switch {
		case err == nil:
			unit, from = guess.Unit, UnitFromLabels
			res.UnitGuess = guess
		case s.debug:
			log.Printf("[DEBUG] unit detection failed, using %s: %v", unit, err)
		}
	}

	scale, err := s.cfg.Scale(unit)
	if err != nil {
		return err
	}
	res.Unit = unit
	res.UnitSource = from
	res.Scale = scale
	return nil
}

// DetectUnit loads source and reads the unit from its axis labels.
func (s *Service) DetectUnit(ctx context.Context, source string) (*ocr.UnitGuess, error) {
	src, err := s.cache.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return s.detectUnit(src)
}

func (s *Service) detectUnit(src image.Image) (*ocr.UnitGuess, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("%w: no OCR reader configured", ocr.ErrUnitUndetected)
	}
	pre, err := digitizer.Preprocess(src, s.cfg.Pipeline.GreyAlgorithm)
	if err != nil {
		return nil, err
	}
	plot, err := detection.DetectCropBounds(pre, s.cfg.Pipeline.Thresholds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ocr.ErrUnitUndetected, err)
	}
	return ocr.DetectUnit(s.reader, src, plot)
}

// OverlayFor draws a diagnostic result's detections onto its source image.
// The viewport and curve samples are translated from crop coordinates back to
// the source. curveColor is a hex colour for the samples; empty means the
// overlay default.
func OverlayFor(diag *digitizer.Diagnostics, curveColor string) *image.RGBA {
	opts := imaging.OverlayOptions{CurveColorHex: curveColor}
	if diag.CropBounds.Valid() {
		opts.Crop = diag.CropBounds.Rectangle()
		if diag.Dimensions.Valid() {
			opts.Viewport = diag.Dimensions.Rectangle().Add(opts.Crop.Min)
		}
	}
	off := opts.Crop.Min
	for _, p := range diag.RawPoints {
		opts.Points = append(opts.Points, image.Pt(p.X+off.X, int(p.Y+0.5)+off.Y))
	}
	return imaging.Overlay(diag.Source, opts)
}
