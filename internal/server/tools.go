package server

import "github.com/ironsheep/stego-tools-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func bitsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     1,
		"maximum":     4,
		"description": "Low-order bits used in each R, G and B byte (1-4). Not stored in the image; decode must use the value encode used. Defaults to the server setting (normally 1).",
	}
}

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"minimum":     1,
		"description": "Enlarge the cover by this factor before embedding. Each factor of 2 quadruples capacity. Defaults to the server setting (normally 1).",
	}
}

func filterProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        imaging.Filters(),
		"description": "Resampling filter used when scale > 1. Defaults to the server setting (normally " + imaging.DefaultFilter + ").",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Cover inspection
		{
			Name:        "stego_image_info",
			Description: "Load an image and report its dimensions, format, whether the format is lossless, and how many payload bytes it can hide at 1-4 bits per channel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_capacity",
			Description: "Compute the largest payload in bytes a cover can hide. Give either path (optionally with scale) or width and height.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             pathProperty("Absolute path to the cover image"),
					"width":            map[string]interface{}{"type": "integer", "description": "Cover width in pixels (when no path is given)"},
					"height":           map[string]interface{}{"type": "integer", "description": "Cover height in pixels (when no path is given)"},
					"bits_per_channel": bitsProperty(),
					"scale":            scaleProperty(),
				},
			},
		},
		{
			Name:        "stego_resize",
			Description: "Enlarge an image with a high-quality resampling filter. Writes a lossless file when output_path is given, otherwise returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty("Absolute path to the image file"),
					"scale":       scaleProperty(),
					"filter":      filterProperty(),
					"output_path": pathProperty("Optional output file (.png, .bmp or .tiff)"),
				},
				"required": []string{"path", "scale"},
			},
		},

		// Embedding
		{
			Name: "stego_encode",
			Description: "Hide a message or raw bytes in the low bits of a cover image and write the stego image in a lossless format. " +
				"Text is stored one byte per character; characters above U+00FF are truncated (a warning is returned). " +
				"There is no encryption.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             pathProperty("Absolute path to the cover image"),
					"message":          map[string]interface{}{"type": "string", "description": "Text to hide"},
					"payload_base64":   map[string]interface{}{"type": "string", "description": "Raw bytes to hide, base64-encoded (instead of message)"},
					"bits_per_channel": bitsProperty(),
					"scale":            scaleProperty(),
					"filter":           filterProperty(),
					"compress": map[string]interface{}{
						"type":        "boolean",
						"description": "zstd-compress the payload before embedding. Decode must set compressed=true.",
						"default":     false,
					},
					"output_path": pathProperty("Output file. Defaults to <cover>.stego.<format> next to the cover or in the configured output directory"),
					"output_format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "bmp", "tiff"},
						"description": "Lossless output format. Derived from output_path when omitted.",
					},
					"inline": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the stego image as base64 PNG. Without output_path nothing is written to disk.",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stego_decode",
			Description: "Recover a payload hidden by stego_encode. bits_per_channel (and compressed) must match the values used to encode.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             pathProperty("Absolute path to the stego image"),
					"bits_per_channel": bitsProperty(),
					"compressed": map[string]interface{}{
						"type":        "boolean",
						"description": "The payload was embedded with compress=true",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Analysis
		{
			Name:        "stego_inspect_pixel",
			Description: "Show the R, G, B and A bytes of one pixel in binary, the low bits that carry payload, and which frame bit each channel holds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             pathProperty("Absolute path to the image file"),
					"x":                map[string]interface{}{"type": "integer", "description": "X coordinate (0-based, from left)"},
					"y":                map[string]interface{}{"type": "integer", "description": "Y coordinate (0-based, from top)"},
					"bits_per_channel": bitsProperty(),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "stego_compare",
			Description: "Measure how much embedding changed an image: changed bytes and pixels, maximum channel delta, PSNR and CIE Lab colour distance.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cover_path": pathProperty("Absolute path to the original cover"),
					"stego_path": pathProperty("Absolute path to the stego image"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale used when encoding, so the cover is resampled to the stego size. Default 1.0",
						"default":     1.0,
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"enum":        imaging.Filters(),
						"description": "Filter used when encoding. Defaults to " + imaging.DefaultFilter,
					},
				},
				"required": []string{"cover_path", "stego_path"},
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
