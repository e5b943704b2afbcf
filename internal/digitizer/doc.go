// Package digitizer converts a screenshot of a 24-hour glucose trend graph
// into a calibrated series of (hour, glucose level) readings.
//
// # Pipeline
//
// Process runs five stages, each a pure function over immutable rasters:
//
//  1. Preprocess: green-channel greyscale, then invert, so the plotted ink is
//     bright on a dark background.
//  2. Boundary detection: locate the plot box by scanning the row at the
//     vertical midpoint and the column at its left edge.
//  3. Viewport detection: inside the crop, the outermost full-width gridlines
//     bound the data area.
//  4. Curve extraction: binarize, erode and reduce each column to the median
//     row of its surviving ink.
//  5. Coordinate mapping: linear remap of columns onto [0,24] hours and of
//     rows onto the glucose range, inverted because rows grow downwards.
//
// Diagnose runs the same stages and returns every intermediate raster and
// point set. It exists for calibration and tests; Process is the call for
// production use.
//
// # Calibration
//
// Every threshold lives in Config. DefaultConfig returns values tuned for one
// app's phone screenshots; the layout assumptions (plot box crossed by the
// vertical midpoint, axis line near the left edge) are not verified for other
// apps or resolutions.
//
// # Errors
//
// Failures wrap ErrDecode, ErrBoundaryDetection or ErrDegenerateViewport. The
// pipeline is deterministic, so a failed image fails identically on retry.
//
// # Concurrency
//
// A Digitizer holds no mutable state and may be used from many goroutines.
// Process does no I/O and cannot be interrupted once started; callers that
// need cancellation run it in a goroutine and discard the result.
package digitizer
