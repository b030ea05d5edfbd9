package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// clickListSchema describes an array of annotation clicks. A click with null
// coordinates is a missing tip: it is recorded in the sidecar but not drawn.
func clickListSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x": map[string]interface{}{"type": []string{"number", "null"}},
				"y": map[string]interface{}{"type": []string{"number", "null"}},
			},
			"required": []string{"x", "y"},
		},
		"description": description,
	}
}

func maxScaleSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Cap on a point's working distance, as a multiple of the smallest nearest-neighbor distance in the set. Default from server config (3.0)",
	}
}

func maxRadiusSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Upper bound on any kernel radius in pixels; a lone point uses it directly. Default from server config (15.0)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file, after EXIF orientation. A density map for the image has exactly this shape.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Kernel Operations
		{
			Name:        "density_kernel",
			Description: "Return the normalized Gaussian footprint used for a point of the given radius (diameter 2r+1, sigma diameter/delta).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Kernel radius in pixels (0-64)",
					},
					"delta": map[string]interface{}{
						"type":        "number",
						"description": "Sharpness: sigma = diameter/delta. Default 6",
						"default":     6.0,
					},
				},
				"required": []string{"radius"},
			},
		},
		{
			Name:        "density_radii",
			Description: "Compute the adaptive kernel radius chosen for each point from local nearest-neighbor spacing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points":     clickListSchema("Keypoints in image pixel coordinates"),
					"max_scale":  maxScaleSchema(),
					"max_radius": maxRadiusSchema(),
				},
				"required": []string{"points"},
			},
		},

		// Density Synthesis
		{
			Name:        "density_generate",
			Description: "Convert keypoint annotations into an adaptive Gaussian density map sized to an image. Optionally saves the map as .npy with a JSON sidecar and returns a grayscale preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the annotated image; its dimensions set the map shape",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Map width, used when path is omitted",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Map height, used when path is omitted",
					},
					"points": clickListSchema("Annotation clicks; null coordinates mark a missing tip"),
					"scale_factor": map[string]interface{}{
						"type":        "number",
						"description": "Display scale the clicks were made at; clicks are divided by it and rounded. Default 1.0",
						"default":     1.0,
					},
					"max_scale":  maxScaleSchema(),
					"max_radius": maxRadiusSchema(),
					"normalize": map[string]interface{}{
						"type":        "boolean",
						"description": "Rescale so the map sums to the point count. Default true",
						"default":     true,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional .npy path to save the map; a .json sidecar is written next to it",
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a base64 grayscale PNG preview",
						"default":     false,
					},
					"preview_scale": map[string]interface{}{
						"type":        "number",
						"description": "Preview scale factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "density_draw",
			Description: "Draw Gaussian footprints with explicit radii onto an empty map, combining overlaps by sum ('add') or element-wise maximum ('max').",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width":  map[string]interface{}{"type": "integer", "description": "Map width"},
					"height": map[string]interface{}{"type": "integer", "description": "Map height"},
					"footprints": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":      map[string]interface{}{"type": "number"},
								"y":      map[string]interface{}{"type": "number"},
								"radius": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"x", "y", "radius"},
						},
						"description": "Footprints to draw, in order",
					},
					"overlap": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"add", "max"},
						"description": "Overlap mode. Default add",
						"default":     "add",
					},
					"peak_scale": map[string]interface{}{
						"type":        "number",
						"description": "Mass of each footprint. Default 1.0",
						"default":     1.0,
					},
					"delta": map[string]interface{}{
						"type":        "number",
						"description": "Sharpness: sigma = diameter/delta. Default 6",
						"default":     6.0,
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a base64 grayscale PNG preview",
						"default":     false,
					},
				},
				"required": []string{"width", "height", "footprints"},
			},
		},
		{
			Name:        "density_batch",
			Description: "Generate density maps for several images in parallel, optionally saving each as .npy.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"items": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name":   map[string]interface{}{"type": "string", "description": "Output base name; defaults to the image file name"},
								"path":   map[string]interface{}{"type": "string"},
								"width":  map[string]interface{}{"type": "integer"},
								"height": map[string]interface{}{"type": "integer"},
								"points": clickListSchema("Annotation clicks in original image coordinates"),
							},
							"required": []string{"points"},
						},
						"description": "Images to process",
					},
					"max_scale":  maxScaleSchema(),
					"max_radius": maxRadiusSchema(),
					"normalize": map[string]interface{}{
						"type":        "boolean",
						"description": "Rescale each map to sum to its point count. Default true",
						"default":     true,
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory to write <name>.npy files into",
					},
				},
				"required": []string{"items"},
			},
		},
		{
			Name:        "density_inspect",
			Description: "Load a saved .npy density map and report its shape, total mass and value range.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the .npy file",
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
