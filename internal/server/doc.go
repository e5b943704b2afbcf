// Package server implements the MCP (Model Context Protocol) server for the
// glucose graph digitizer.
//
// This package provides a JSON-RPC 2.0 server that exposes digitization
// through the MCP protocol, so an assistant can turn a glucose trend
// screenshot into readings, inspect why a screenshot fails, and re-plot the
// result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load a screenshot and get its metadata
//   - graph_digitize: Screenshot to timestamped readings and summary
//   - graph_diagnose: Plot box, viewport, sample counts, intermediate images
//   - graph_detect_unit: OCR the axis labels to pick mg/dL or mmol/L
//   - graph_chart: Re-plot the digitized readings as a PNG line chart
//
// # Image Caching
//
// Decoded screenshots are cached by path for the lifetime of the process.
// A local file is decoded again when its size or modification time changes;
// image_load with reload set drops the cached copy of any source. Only
// decoded sources are cached: every tool call re-runs the pipeline on the
// source pixels.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC errors with code -32000 and the error
// text in the data field. Malformed tools/call params return -32602 and
// unknown methods -32601.
package server
