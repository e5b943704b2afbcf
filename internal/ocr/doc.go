// Package ocr reads the y-axis labels of a glucose graph to tell mg/dL plots
// from mmol/L plots.
//
// Text recognition goes through the Reader interface. Tesseract is the
// production implementation, wrapping the Tesseract engine via gosseract/v2;
// tests substitute a fixed-output Reader.
//
// # Prerequisites
//
// The Tesseract library and English language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// # Unit Detection
//
// DetectUnit crops the strip left of the plot box, upscales it and runs OCR
// with a character whitelist limited to digits, separators and unit letters.
// ClassifyLabels then decides:
//   - an explicit "mmol" or "mg/dL" in the text wins
//   - any decimal label ("5.5", "5,5") means mmol/L
//   - otherwise a largest label of 30 or less means mmol/L, above it mg/dL
//
// When no label can be read the error wraps ErrUnitUndetected and callers
// fall back to a configured unit.
package ocr
