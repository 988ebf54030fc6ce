package server

import "github.com/ironsheep/image-enhancer/internal/enhance"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func numberProp(description string, def float64) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
		"default":     def,
	}
}

func integerProp(description string, def int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"default":     def,
	}
}

func algorithmNames() []string {
	infos := enhance.Algorithms()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color model.",
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
		{
			Name: "image_enhance",
			Description: "Convert an image to grayscale, apply a contrast enhancement algorithm and report contrast, sharpness and entropy before and after. " +
				"Returns the enhanced image as base64-encoded PNG unless omit_image is set. Unknown algorithm names fall back to clahe.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image. Mutually exclusive with image.",
					},
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Source image as a data URL or bare base64. Mutually exclusive with path.",
					},
					"algorithm": map[string]interface{}{
						"type":        "string",
						"description": "Enhancement algorithm",
						"enum":        algorithmNames(),
						"default":     enhance.CLAHE.String(),
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the enhanced image; the format follows the extension",
					},
					"omit_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Do not include the base64 image in the result",
						"default":     false,
					},
					"clipLimit":   numberProp("CLAHE clip limit", enhance.DefaultClipLimit),
					"tileSize":    integerProp("CLAHE grid size (tiles per side)", enhance.DefaultTileSize),
					"amount":      numberProp("Unsharp mask strength", enhance.DefaultAmount),
					"sigma":       numberProp("Unsharp mask Gaussian sigma in pixels", enhance.DefaultSigma),
					"diameter":    integerProp("Bilateral neighborhood diameter", enhance.DefaultDiameter),
					"sigmaColor":  numberProp("Bilateral range sigma", enhance.DefaultSigmaColor),
					"sigmaSpace":  numberProp("Bilateral spatial sigma", enhance.DefaultSigmaSpace),
					"morphRadius": integerProp("Top-hat disk radius", enhance.DefaultMorphRadius),
					"gamma":       numberProp("Gamma exponent", enhance.DefaultGamma),
				},
			},
		},
		{
			Name:        "image_metrics",
			Description: "Compare two images of the same size and report contrast, sharpness and entropy with percentage improvements. Both are converted to grayscale first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"original_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the original image",
					},
					"enhanced_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the enhanced image",
					},
				},
				"required": []string{"original_path", "enhanced_path"},
			},
		},
		{
			Name:        "image_algorithms",
			Description: "List the available enhancement algorithms with their tunable parameters and defaults.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
