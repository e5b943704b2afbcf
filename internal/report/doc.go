// Package report turns digitized points into readings a person or another
// program can use: timestamps on a chosen calendar day, summary statistics,
// a PNG chart and CSV/JSON exports.
//
// Nothing here touches pixels. The package consumes digitizer.GraphPoint
// values and a digitizer.Scale describing the unit.
package report
