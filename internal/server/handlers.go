package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/glucose-digitizer/internal/app"
	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
	"github.com/ironsheep/glucose-digitizer/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "graph_digitize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(ctx, args)
	case "graph_digitize":
		return s.handleGraphDigitize(ctx, args)
	case "graph_diagnose":
		return s.handleGraphDiagnose(ctx, args)
	case "graph_detect_unit":
		return s.handleGraphDetectUnit(ctx, args)
	case "graph_chart":
		return s.handleGraphChart(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments and checks the path argument shared
// by every tool.
func unmarshalArgs(args json.RawMessage, v interface{}, path func() string) error {
	if len(args) > 0 {
		if err := json.Unmarshal(args, v); err != nil {
			return err
		}
	}
	if path() == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	if a.Reload {
		s.svc.Cache().Evict(a.Path)
	}
	return imaging.LoadImageInfo(ctx, s.svc.Cache(), a.Path)
}

// === Graph Handlers ===

type graphDigitizeArgs struct {
	Path        string `json:"path"`
	Unit        string `json:"unit"`
	Date        string `json:"date"`
	SummaryOnly bool   `json:"summary_only"`
}

func (s *Server) handleGraphDigitize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a graphDigitizeArgs
	if err := unmarshalArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}

	res, err := s.svc.Digitize(ctx, app.Request{Source: a.Path, Unit: a.Unit, Day: a.Date})
	if err != nil {
		return nil, err
	}
	if a.SummaryOnly {
		res.Readings = nil
	}
	return res, nil
}

type graphDiagnoseArgs struct {
	Path           string   `json:"path"`
	Unit           string   `json:"unit"`
	OutputDir      string   `json:"output_dir"`
	Format         string   `json:"format"`
	IncludeOverlay *bool    `json:"include_overlay"`
	OverlayScale   *float64 `json:"overlay_scale"`
	CurveColor     string   `json:"curve_color"`
}

// GraphDiagnosis is the result of the graph_diagnose tool.
type GraphDiagnosis struct {
	Source     string                     `json:"source"`
	Unit       string                     `json:"unit,omitempty"`
	CropBounds *detection.Rect            `json:"crop_bounds,omitempty"`
	Dimensions *detection.GraphDimensions `json:"dimensions,omitempty"`
	RawPoints  int                        `json:"raw_points"`
	Mapped     int                        `json:"mapped_points"`
	Points     int                        `json:"points"`
	Summary    *report.Summary            `json:"summary,omitempty"`

	// Error is the pipeline failure, if any. Stages before the failure are
	// still reported.
	Error string `json:"error,omitempty"`

	Artifacts []app.DebugArtifact  `json:"artifacts,omitempty"`
	Overlay   *imaging.EncodedImage `json:"overlay,omitempty"`
}

func (s *Server) handleGraphDiagnose(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a graphDiagnoseArgs
	if err := unmarshalArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	if a.Format == "" {
		a.Format = s.svc.Config().Output.DebugFormat
	}
	scale := 1.0
	if a.OverlayScale != nil {
		scale = *a.OverlayScale
	}
	if scale <= 0 {
		return nil, fmt.Errorf("overlay_scale must be positive, got %v", scale)
	}
	if a.CurveColor != "" {
		if _, err := imaging.ParseHexColor(a.CurveColor); err != nil {
			return nil, fmt.Errorf("invalid curve_color %q: %w", a.CurveColor, err)
		}
	}

	res, err := s.svc.Diagnose(ctx, app.Request{Source: a.Path, Unit: a.Unit})
	if res == nil || res.Diagnostics == nil {
		// Load or configuration failure: nothing ran.
		return nil, err
	}

	diag := res.Diagnostics
	out := &GraphDiagnosis{
		Source:    a.Path,
		Unit:      string(res.Unit),
		RawPoints: len(diag.RawPoints),
		Mapped:    len(diag.Mapped),
		Points:    len(diag.Points),
		Summary:   res.Summary,
	}
	if err != nil {
		out.Error = err.Error()
	}
	if diag.CropBounds.Valid() {
		cb := diag.CropBounds
		out.CropBounds = &cb
	}
	if diag.Dimensions.Valid() {
		dims := diag.Dimensions
		out.Dimensions = &dims
	}

	if a.OutputDir != "" {
		prefix := strings.TrimSuffix(filepath.Base(a.Path), filepath.Ext(a.Path))
		artifacts, werr := app.WriteDebugImages(a.OutputDir, prefix, diag, a.Format)
		if werr != nil {
			return nil, werr
		}
		out.Artifacts = artifacts
	}

	if a.IncludeOverlay == nil || *a.IncludeOverlay {
		enc, eerr := imaging.EncodeBase64PNG(app.OverlayFor(diag, a.CurveColor), scale)
		if eerr != nil {
			return nil, eerr
		}
		out.Overlay = enc
	}

	return out, nil
}

type graphDetectUnitArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleGraphDetectUnit(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a graphDetectUnitArgs
	if err := unmarshalArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	return s.svc.DetectUnit(ctx, a.Path)
}

type graphChartArgs struct {
	Path       string `json:"path"`
	Unit       string `json:"unit"`
	Date       string `json:"date"`
	Title      string `json:"title"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	OutputPath string `json:"output_path"`
}

// GraphChart is the result of the graph_chart tool.
type GraphChart struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Points      int    `json:"points"`
	Path        string `json:"path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleGraphChart(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a graphChartArgs
	if err := unmarshalArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	out := s.svc.Config().Output
	if a.Width == 0 {
		a.Width = out.ChartWidth
	}
	if a.Height == 0 {
		a.Height = out.ChartHeight
	}
	if a.Width < 0 || a.Height < 0 {
		return nil, fmt.Errorf("chart size must be positive, got %dx%d", a.Width, a.Height)
	}

	res, err := s.svc.Digitize(ctx, app.Request{Source: a.Path, Unit: a.Unit, Day: a.Date})
	if err != nil {
		return nil, err
	}
	if a.Title == "" && len(res.Readings) > 0 {
		a.Title = res.Readings[0].Time.Format(report.DayLayout)
	}

	var buf bytes.Buffer
	opts := report.ChartOptions{Title: a.Title, Width: a.Width, Height: a.Height}
	if err := report.RenderChart(&buf, res.Points, res.Scale, opts); err != nil {
		return nil, err
	}

	chart := &GraphChart{
		Width:    a.Width,
		Height:   a.Height,
		Points:   len(res.Points),
		MimeType: "image/png",
	}
	if a.OutputPath != "" {
		if err := os.WriteFile(a.OutputPath, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write chart: %w", err)
		}
		chart.Path = a.OutputPath
		return chart, nil
	}
	chart.ImageBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	return chart, nil
}
