package app

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/ironsheep/glucose-digitizer/internal/digitizer"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// DebugArtifact is one intermediate image written by WriteDebugImages.
type DebugArtifact struct {
	Stage string `json:"stage"`
	Path  string `json:"path"`
}

// WriteDebugImages writes every intermediate raster of diag into dir, one
// file per stage, named "<prefix>-<stage>.<ext>". Stages that did not run are
// skipped. The directory is created if needed.
func WriteDebugImages(dir, prefix string, diag *digitizer.Diagnostics, format string) ([]DebugArtifact, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug directory: %w", err)
	}

	stages := []struct {
		name string
		img  func() image.Image
	}{
		{"preprocessed", grayStage(diag.Preprocessed)},
		{"crop", grayStage(diag.Crop)},
		{"mask", grayStage(diag.Mask)},
		{"eroded", grayStage(diag.Eroded)},
		{"overlay", func() image.Image {
			if diag.Source == nil {
				return nil
			}
			return OverlayFor(diag, "")
		}},
	}

	var written []DebugArtifact
	for _, st := range stages {
		img := st.img()
		if img == nil {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", prefix, st.name, imaging.Extension(format)))
		if err := writeImage(path, img, format); err != nil {
			return written, err
		}
		written = append(written, DebugArtifact{Stage: st.name, Path: path})
	}
	return written, nil
}

func grayStage(g *imaging.Gray) func() image.Image {
	return func() image.Image {
		if g == nil {
			return nil
		}
		return g.Image()
	}
}

func writeImage(path string, img image.Image, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if err := imaging.Encode(f, img, format); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
