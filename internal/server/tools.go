package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path or http(s) URL of the screenshot",
	}
}

func unitProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"mg/dL", "mmol/L", "auto"},
		"description": "Glucose unit of the graph. Defaults to the configured unit; 'auto' reads the axis labels",
	}
}

func dateProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Day the graph covers, YYYY-MM-DD (default: today)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load a screenshot and return its dimensions and format. The decoded image is cached for subsequent graph tools; local files are reloaded automatically when they change.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop any cached copy first, e.g. to refetch a URL",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "graph_digitize",
			Description: "Digitize a 24-hour glucose trend screenshot into timestamped readings. Returns one reading per pixel column of the curve, ordered by time, plus a summary (mean, standard deviation, time in range).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"unit": unitProperty(),
					"date": dateProperty(),
					"summary_only": map[string]interface{}{
						"type":        "boolean",
						"description": "Omit the individual readings and return only the summary",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "graph_diagnose",
			Description: "Run the digitizer and report every intermediate result: plot box, viewport, raw sample count. Optionally writes the intermediate rasters to a directory and returns an overlay of the detections. On failure the stages that completed are still reported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"unit": unitProperty(),
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write the intermediate images to",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpg", "webp"},
						"description": "Image format for written intermediates (default: configured debug format)",
					},
					"include_overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the detection overlay as base64 PNG",
						"default":     true,
					},
					"overlay_scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the returned overlay (default: 1.0)",
						"default":     1.0,
					},
					"curve_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex colour for the curve samples in the overlay, e.g. \"#00FF00\" (default: magenta)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "graph_detect_unit",
			Description: "Read the y-axis labels of a glucose graph with OCR and decide whether it is plotted in mg/dL or mmol/L.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "graph_chart",
			Description: "Digitize a screenshot and re-plot the readings as a clean line chart with the target range marked. Returns a base64 PNG, or writes it to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"unit": unitProperty(),
					"date": dateProperty(),
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Chart title (default: the date)",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Chart width in pixels (default: configured chart width)",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Chart height in pixels (default: configured chart height)",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Write the PNG here instead of returning it inline",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
