package digitizer

import (
	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// Re-exported so callers can classify failures with errors.Is without
// importing the stage packages.
var (
	ErrDecode             = imaging.ErrDecode
	ErrBoundaryDetection  = detection.ErrBoundaryDetection
	ErrDegenerateViewport = detection.ErrDegenerateViewport
)
