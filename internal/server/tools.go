package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path or s3://bucket/key of the spot scan, named dd<diameter>_T<trial><location>_<MMDDYYYY>.<ext>",
}

var thresholdProperties = map[string]interface{}{
	"threshold_low": map[string]interface{}{
		"type":        "integer",
		"description": "Binarisation cutoff: pixels brighter than this become threshold_high (0-255)",
		"default":     0,
		"minimum":     0,
		"maximum":     255,
	},
	"threshold_high": map[string]interface{}{
		"type":        "integer",
		"description": "Value written for pixels above threshold_low (0-255)",
		"default":     50,
		"minimum":     0,
		"maximum":     255,
	},
}

var regionProperty = map[string]interface{}{
	"type":        "object",
	"description": "Part of the scan to size, e.g. to leave out the card label; x2/y2 are exclusive. Defaults to the whole scan.",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer"},
		"y2": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Sample metadata
		{
			Name:        "spot_parse_filename",
			Description: "Decode the droplet diameter, trial, location and collection date from a spot scan filename.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "spot_image_info",
			Description: "Load a spot scan and return its dimensions, format and color depth.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Sizing
		{
			Name:        "spot_size_particles",
			Description: "Detect the residues on a spot scan and return their physical and aerodynamic diameters in micrometres, in contour order, with a distribution summary. Optionally returns the contour overlay as a PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"scale_microns_per_pixel": map[string]interface{}{
						"type":        "number",
						"description": "Micrometres per pixel of the scan",
						"default":     1e-3,
					},
					"threshold_low":  thresholdProperties["threshold_low"],
					"threshold_high": thresholdProperties["threshold_high"],
					"region":         regionProperty,
					"salt_concentration": map[string]interface{}{
						"type":        "number",
						"description": "Salt mass concentration used for the aerodynamic conversion",
						"default":     0.09,
					},
					"include_overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the contour overlay as a base64 PNG",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "spot_aerodynamic_size",
			Description: "Convert a physical residue diameter to the aerodynamic diameter of the droplet that left it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"physical_diameter": map[string]interface{}{
						"type":        "number",
						"description": "Physical diameter in micrometres",
					},
					"salt_concentration": map[string]interface{}{
						"type":        "number",
						"description": "Salt mass concentration",
						"default":     0.09,
					},
				},
				"required": []string{"physical_diameter"},
			},
		},

		// Diagnostics
		{
			Name:        "spot_edge_detect",
			Description: "Return the edge map the sizing pipeline traces, after binarisation and inversion, as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty,
					"threshold_low":  thresholdProperties["threshold_low"],
					"threshold_high": thresholdProperties["threshold_high"],
					"region":         regionProperty,
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
