package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/image-enhancer/internal/enhance"
	"github.com/ironsheep/image-enhancer/internal/imaging"
	"github.com/ironsheep/image-enhancer/internal/metrics"
	"github.com/ironsheep/image-enhancer/internal/service"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_enhance").
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

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool execution failed")
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

// runPipeline is the enhancement entry point; tests substitute it.
var runPipeline = service.Run

// executeTool dispatches tool execution to the appropriate handler function.
// A panicking tool is reported as an error so the stdio loop keeps serving.
func (s *Server) executeTool(name string, args json.RawMessage) (result interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			result, err = nil, fmt.Errorf("tool %s panicked: %v", name, p)
		}
	}()

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_enhance":
		return s.handleImageEnhance(args)
	case "image_metrics":
		return s.handleImageMetrics(args)
	case "image_algorithms":
		return s.handleImageAlgorithms()
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Enhancement ===

type imageEnhanceArgs struct {
	Path       string `json:"path"`
	Image      string `json:"image"`
	Algorithm  string `json:"algorithm"`
	OutputPath string `json:"output_path"`
	OmitImage  bool   `json:"omit_image"`

	enhance.Params
}

// EnhanceResult is the image_enhance tool output.
type EnhanceResult struct {
	Algorithm   enhance.Algorithm `json:"algorithm"`
	Defaulted   bool              `json:"defaulted,omitempty"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Metrics     *metrics.Report   `json:"metrics"`
	OutputPath  string            `json:"output_path,omitempty"`
	ImageBase64 string            `json:"image_base64,omitempty"`
	MimeType    string            `json:"mime_type,omitempty"`
	ElapsedMS   int64             `json:"elapsed_ms"`
}

func (s *Server) handleImageEnhance(args json.RawMessage) (interface{}, error) {
	var a imageEnhanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	gray, err := s.sourceImage(a.Path, a.Image)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := runPipeline(ctx, service.Request{
		Image:     gray,
		Algorithm: a.Algorithm,
		Params:    a.Params,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Stringer("algorithm", res.Algorithm).
		Bool("defaulted", res.Defaulted).
		Int("width", gray.Rect.Dx()).
		Int("height", gray.Rect.Dy()).
		Dur("elapsed", res.Elapsed).
		Msg("image enhanced")

	out := &EnhanceResult{
		Algorithm: res.Algorithm,
		Defaulted: res.Defaulted,
		Width:     res.Enhanced.Rect.Dx(),
		Height:    res.Enhanced.Rect.Dy(),
		Metrics:   res.Metrics,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}

	if a.OutputPath != "" {
		if err := imaging.Save(res.Enhanced, a.OutputPath); err != nil {
			return nil, err
		}
		s.cache.Evict(a.OutputPath)
		out.OutputPath = a.OutputPath
	}

	if !a.OmitImage {
		b64, err := imaging.EncodePNGBase64(res.Enhanced)
		if err != nil {
			return nil, err
		}
		out.ImageBase64 = b64
		out.MimeType = "image/png"
	}

	return out, nil
}

// sourceImage resolves the image argument: a file path goes through the
// cache, inline data is decoded directly.
func (s *Server) sourceImage(path, data string) (*image.Gray, error) {
	switch {
	case path != "" && data != "":
		return nil, fmt.Errorf("provide either path or image, not both")
	case path != "":
		return s.cache.LoadGray(path)
	case data != "":
		img, err := imaging.DecodeDataURL(data)
		if err != nil {
			return nil, err
		}
		return imaging.ToGray(img)
	default:
		return nil, fmt.Errorf("path or image is required")
	}
}

// === Metrics ===

type imageMetricsArgs struct {
	OriginalPath string `json:"original_path"`
	EnhancedPath string `json:"enhanced_path"`
}

func (s *Server) handleImageMetrics(args json.RawMessage) (interface{}, error) {
	var a imageMetricsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OriginalPath == "" || a.EnhancedPath == "" {
		return nil, fmt.Errorf("original_path and enhanced_path are required")
	}

	original, err := s.cache.LoadGray(a.OriginalPath)
	if err != nil {
		return nil, err
	}
	enhanced, err := s.cache.LoadGray(a.EnhancedPath)
	if err != nil {
		return nil, err
	}
	return metrics.Evaluate(original, enhanced)
}

// === Algorithm Listing ===

func (s *Server) handleImageAlgorithms() (interface{}, error) {
	return map[string]interface{}{
		"algorithms": enhance.Algorithms(),
		"default":    enhance.CLAHE,
		"defaults":   enhance.DefaultParams(),
	}, nil
}
