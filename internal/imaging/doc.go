// Package imaging provides the raster primitives used to digitize glucose
// graph screenshots.
//
// It covers three concerns: loading source images (files, URLs and in-memory
// blobs), single-channel pixel operations on the immutable Gray raster, and
// encoding results back out for debug artifacts and tool responses.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// Every Gray is anchored at (0,0). Cropping re-anchors the result, so
// coordinates inside a crop are relative to the crop's top-left corner.
//
// # Pipeline Operations
//
// The digitizer chains these operations:
//   - Grey: colour to single channel (green channel, luma or CIE lightness)
//   - Invert: 255-v, so that dark plot ink becomes bright
//   - Crop: extract the detected plot box
//   - Mask: binarize at a relative threshold
//   - Erode: thin strokes and remove isolated specks
//
// Each returns a new Gray and leaves its input untouched.
//
// # Thread Safety
//
// SourceCache is safe for concurrent use. Gray values are never mutated after
// construction and may be shared freely between goroutines.
//
// # Error Handling
//
// Every failure to open, download or decode a source image wraps ErrDecode so
// callers can classify it with errors.Is.
package imaging
