// Package detection locates the plot box and the gridline-bounded viewport
// in a preprocessed glucose graph screenshot.
//
// Both detectors work on an inverted single-channel raster, where the white
// plot background has become near-black and ink, gridlines and UI chrome are
// bright. A pixel is "dark" when its value is below Thresholds.Black.
//
// # Plot Box
//
// DetectCropBounds assumes the plot background crosses the vertical midpoint
// of the screenshot and that its left edge doubles as the y-axis line. The
// dark run on the midpoint row gives the horizontal extent; the column at its
// left end gives the top and bottom edges.
//
// # Viewport
//
// DetectGraphDimensions runs on the cropped plot box. A row is a gridline
// when more than Thresholds.LineFill of it is lit and its middle pixel is lit
// too. The first and last gridline bound the viewport vertically; the lit span
// of the last gridline bounds it horizontally.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Rect uses an exclusive far edge (X+Width); GraphDimensions bounds are
// inclusive pixel indices.
//
// # Errors
//
// Failures wrap ErrBoundaryDetection or ErrDegenerateViewport. Neither
// detector returns a best-effort region.
package detection
