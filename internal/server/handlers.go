package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/stego"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "stego_encode", "stego_decode").
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

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool completed", "tool", params.Name, "duration", time.Since(start))

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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Fills unset optional parameters from the server configuration
//  3. Calls the matching stego or imaging function
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Cover inspection
	case "stego_image_info":
		return s.handleImageInfo(args)
	case "stego_capacity":
		return s.handleCapacity(args)
	case "stego_resize":
		return s.handleResize(args)

	// Embedding
	case "stego_encode":
		return s.handleEncode(args)
	case "stego_decode":
		return s.handleDecode(args)

	// Analysis
	case "stego_inspect_pixel":
		return s.handleInspectPixel(args)
	case "stego_compare":
		return s.handleCompare(args)

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

// bits returns k, or the configured default when k is unset.
func (s *Server) bits(k int) int {
	if k == 0 {
		return s.cfg.BitsPerChannel
	}
	return k
}

// === Cover Inspection Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type capacityArgs struct {
	Path           string  `json:"path"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	BitsPerChannel int     `json:"bits_per_channel"`
	Scale          float64 `json:"scale"`
}

func (s *Server) handleCapacity(args json.RawMessage) (interface{}, error) {
	var a capacityArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	k := s.bits(a.BitsPerChannel)

	if a.Path != "" {
		if a.Scale == 0 {
			a.Scale = s.cfg.Scale
		}
		return stego.CapacityForImage(s.cache, a.Path, k, a.Scale)
	}
	if a.Width == 0 && a.Height == 0 {
		return nil, fmt.Errorf("either path or width and height are required")
	}
	return stego.Capacity(a.Width, a.Height, k)
}

type resizeArgs struct {
	Path       string  `json:"path"`
	Scale      float64 `json:"scale"`
	Filter     string  `json:"filter"`
	OutputPath string  `json:"output_path"`
}

func (s *Server) handleResize(args json.RawMessage) (interface{}, error) {
	var a resizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = s.cfg.Scale
	}
	if a.Filter == "" {
		a.Filter = s.cfg.Filter
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	result, err := imaging.ResizeImage(img, a.Scale, a.Filter, a.OutputPath)
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		s.cache.Evict(a.OutputPath)
	}
	return result, nil
}

// === Embedding Handlers ===

type encodeArgs struct {
	Path           string  `json:"path"`
	Message        *string `json:"message"`
	PayloadBase64  *string `json:"payload_base64"`
	BitsPerChannel int     `json:"bits_per_channel"`
	Scale          float64 `json:"scale"`
	Filter         string  `json:"filter"`
	Compress       bool    `json:"compress"`
	OutputPath     string  `json:"output_path"`
	OutputFormat   string  `json:"output_format"`
	Inline         bool    `json:"inline"`
}

func (s *Server) handleEncode(args json.RawMessage) (interface{}, error) {
	var a encodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if (a.Message == nil) == (a.PayloadBase64 == nil) {
		return nil, fmt.Errorf("exactly one of message or payload_base64 is required")
	}

	req := stego.EncodeRequest{
		CoverPath:      a.Path,
		BitsPerChannel: s.bits(a.BitsPerChannel),
		Scale:          a.Scale,
		Filter:         a.Filter,
		Compress:       a.Compress,
		OutputPath:     a.OutputPath,
		OutputDir:      s.cfg.OutputDir,
		OutputFormat:   a.OutputFormat,
		Inline:         a.Inline,
	}
	if req.Scale == 0 {
		req.Scale = s.cfg.Scale
	}
	if req.Filter == "" {
		req.Filter = s.cfg.Filter
	}
	if req.OutputFormat == "" && req.OutputPath == "" {
		req.OutputFormat = s.cfg.OutputFormat
	}

	if a.PayloadBase64 != nil {
		data, err := stego.PayloadFromBase64(*a.PayloadBase64)
		if err != nil {
			return nil, err
		}
		req.Payload = data
	} else {
		req.Message = *a.Message
	}

	result, err := stego.Encode(s.cache, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("payload embedded",
		"cover", a.Path,
		"output", result.OutputPath,
		"bytes", result.PayloadLength,
		"bits_per_channel", result.BitsPerChannel,
		"scale", result.Scale)
	return result, nil
}

type decodeArgs struct {
	Path           string `json:"path"`
	BitsPerChannel int    `json:"bits_per_channel"`
	Compressed     bool   `json:"compressed"`
}

func (s *Server) handleDecode(args json.RawMessage) (interface{}, error) {
	var a decodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return stego.Decode(s.cache, stego.DecodeRequest{
		Path:           a.Path,
		BitsPerChannel: s.bits(a.BitsPerChannel),
		Compressed:     a.Compressed,
	})
}

// === Analysis Handlers ===

type inspectPixelArgs struct {
	Path           string `json:"path"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	BitsPerChannel int    `json:"bits_per_channel"`
}

func (s *Server) handleInspectPixel(args json.RawMessage) (interface{}, error) {
	var a inspectPixelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.InspectPixel(img, a.X, a.Y, s.bits(a.BitsPerChannel))
}

type compareArgs struct {
	CoverPath string  `json:"cover_path"`
	StegoPath string  `json:"stego_path"`
	Scale     float64 `json:"scale"`
	Filter    string  `json:"filter"`
}

// handleCompare measures the distortion an embedding introduced. When the
// cover was enlarged before embedding, the same scale and filter must be
// given so the cover is resampled to the stego image's size.
func (s *Server) handleCompare(args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1
	}
	if a.Filter == "" {
		a.Filter = s.cfg.Filter
	}

	cover, err := s.cache.Load(a.CoverPath)
	if err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	stegoImg, err := s.cache.Load(a.StegoPath)
	if err != nil {
		return nil, fmt.Errorf("stego: %w", err)
	}

	resized, err := imaging.Resize(cover, a.Scale, a.Filter)
	if err != nil {
		return nil, err
	}
	return imaging.Distortion(resized, stegoImg)
}
