package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironsheep/image-enhancer/internal/config"
	"github.com/ironsheep/image-enhancer/internal/imaging"
	"github.com/ironsheep/image-enhancer/internal/service"
)

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{
			Addr:           "127.0.0.1:0",
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"*"},
			Timeout:        10 * time.Second,
		}
	}
	return New(cfg, zerolog.New(io.Discard), "test").Handler()
}

func createTestDataURL(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(40 + (x*7+y*3)%120)
			img.Set(x, y, color.RGBA{v, v / 2, 255 - v, 255})
		}
	}
	url, err := imaging.EncodePNGDataURL(img)
	if err != nil {
		t.Fatalf("EncodePNGDataURL failed: %v", err)
	}
	return url
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type enhanceReply struct {
	EnhancedImage string             `json:"enhanced_image"`
	Metrics       map[string]float64 `json:"metrics"`
	Algorithm     string             `json:"algorithm"`
	Defaulted     bool               `json:"defaulted"`
	Error         string             `json:"error"`
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) enhanceReply {
	t.Helper()
	var reply enhanceReply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return reply
}

func TestEnhance_Algorithms(t *testing.T) {
	h := newTestServer(t, nil)
	dataURL := createTestDataURL(t, 24, 16)

	tests := []struct {
		name          string
		algorithm     string
		wantAlgorithm string
		wantDefaulted bool
	}{
		{"clahe", "clahe", "clahe", false},
		{"histogram", "histogram", "histogram", false},
		{"unsharp", "unsharp", "unsharp", false},
		{"bilateral", "bilateral", "bilateral", false},
		{"morphological", "morphological", "morphological", false},
		{"gamma", "gamma", "gamma", false},
		{"adaptive threshold", "adaptive_threshold", "adaptive_threshold", false},
		{"unknown", "wavelet", "clahe", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/enhance", map[string]interface{}{
				"image":     dataURL,
				"algorithm": tt.algorithm,
			})
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
			}

			reply := decodeReply(t, rec)
			if reply.Algorithm != tt.wantAlgorithm {
				t.Errorf("algorithm: got %q, want %q", reply.Algorithm, tt.wantAlgorithm)
			}
			if reply.Defaulted != tt.wantDefaulted {
				t.Errorf("defaulted: got %v, want %v", reply.Defaulted, tt.wantDefaulted)
			}
			if !strings.HasPrefix(reply.EnhancedImage, imaging.PNGDataURLPrefix) {
				t.Fatalf("enhanced_image should be a PNG data URL")
			}

			out, err := imaging.DecodeDataURL(reply.EnhancedImage)
			if err != nil {
				t.Fatalf("enhanced image does not decode: %v", err)
			}
			if out.Bounds().Dx() != 24 || out.Bounds().Dy() != 16 {
				t.Errorf("enhanced size: got %v, want 24x16", out.Bounds())
			}

			for _, key := range []string{
				"contrast_original", "contrast_enhanced", "contrast_improvement",
				"sharpness_original", "sharpness_enhanced", "sharpness_improvement",
				"entropy_original", "entropy_enhanced", "entropy_improvement",
			} {
				if _, ok := reply.Metrics[key]; !ok {
					t.Errorf("metrics missing %s", key)
				}
			}
		})
	}
}

func TestEnhance_StringParams(t *testing.T) {
	h := newTestServer(t, nil)

	rec := postJSON(t, h, "/enhance", map[string]interface{}{
		"image":     createTestDataURL(t, 16, 16),
		"algorithm": "clahe",
		"clipLimit": "3.5",
		"tileSize":  "4",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
}

func TestEnhance_BadRequests(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name string
		body interface{}
	}{
		{"malformed json", `{"image": `},
		{"missing image", map[string]string{"algorithm": "clahe"}},
		{"bad base64", map[string]string{"image": "data:image/png;base64,!!!"}},
		{"not an image", map[string]string{"image": "data:image/png;base64,aGVsbG8="}},
		{"non-numeric clip", map[string]interface{}{"image": "x", "clipLimit": "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/enhance", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
			if reply := decodeReply(t, rec); reply.Error == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}

func TestEnhance_ExtremeParams(t *testing.T) {
	h := newTestServer(t, nil)
	dataURL := createTestDataURL(t, 16, 16)

	bodies := map[string]map[string]interface{}{
		"tile size 2^32":  {"algorithm": "clahe", "tileSize": 4294967296.0},
		"tile size 1e300": {"algorithm": "clahe", "tileSize": 1e300},
		"clip limit":      {"algorithm": "clahe", "clipLimit": 1e308},
		"sigma":           {"algorithm": "unsharp", "sigma": 1e308, "amount": 1e308},
		"diameter":        {"algorithm": "bilateral", "diameter": 4294967296.0, "sigmaColor": 1e-300, "sigmaSpace": 1e308},
		"morph radius":    {"algorithm": "morphological", "morphRadius": "4611686018427387904"},
		"gamma":           {"algorithm": "gamma", "gamma": 1e308},
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			body["image"] = dataURL
			rec := postJSON(t, h, "/enhance", body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
			}
			reply := decodeReply(t, rec)
			if !strings.HasPrefix(reply.EnhancedImage, "data:image/png;base64,") {
				t.Errorf("enhanced_image: got %.40q", reply.EnhancedImage)
			}
		})
	}
}

func TestEnhance_PipelinePanic(t *testing.T) {
	orig := runPipeline
	defer func() { runPipeline = orig }()
	runPipeline = func(context.Context, service.Request) (*service.Result, error) {
		panic("index out of range")
	}

	h := newTestServer(t, nil)
	rec := postJSON(t, h, "/enhance", map[string]interface{}{
		"image":     createTestDataURL(t, 8, 8),
		"algorithm": "clahe",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	var reply errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if !strings.Contains(reply.Error, "index out of range") {
		t.Errorf("error: got %q", reply.Error)
	}

	// The server keeps serving after the panic.
	health := httptest.NewRecorder()
	h.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	if health.Code != http.StatusOK {
		t.Errorf("health after panic: got %d", health.Code)
	}
}

// failingWriter is a ResponseWriter whose body writes always fail.
type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteJSON_LogsEncodeError(t *testing.T) {
	var logs bytes.Buffer
	s := New(&config.Config{Timeout: time.Second}, zerolog.New(&logs), "test")

	s.writeJSON(failingWriter{httptest.NewRecorder()}, http.StatusOK, map[string]string{"status": "ok"})

	if !strings.Contains(logs.String(), "failed to write response") {
		t.Errorf("missing log entry, got %q", logs.String())
	}
	if !strings.Contains(logs.String(), "connection reset") {
		t.Errorf("log entry missing cause, got %q", logs.String())
	}
}

func TestEnhance_BodyTooLarge(t *testing.T) {
	h := newTestServer(t, &config.Config{
		MaxBodyBytes:   64,
		AllowedOrigins: []string{"*"},
		Timeout:        time.Second,
	})

	rec := postJSON(t, h, "/enhance", map[string]string{"image": strings.Repeat("A", 256)})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", rec.Code)
	}
}

func TestEnhance_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enhance", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
}

func TestAlgorithmsEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/algorithms", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var reply struct {
		Algorithms []struct {
			Name string `json:"name"`
		} `json:"algorithms"`
		Default string `json:"default"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(reply.Algorithms) != 7 {
		t.Errorf("algorithm count: got %d, want 7", len(reply.Algorithms))
	}
	if reply.Default != "clahe" {
		t.Errorf("default: got %q, want clahe", reply.Default)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, nil)

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		id := rec.Header().Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("generated request ID %q is not a UUID", id)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		want := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, want)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got != want {
			t.Errorf("request ID: got %q, want %q", got, want)
		}
	})

	t.Run("invalid replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" {
			t.Error("invalid request ID should be replaced")
		}
	})
}

func TestCORS(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		h := newTestServer(t, nil)
		req := httptest.NewRequest(http.MethodOptions, "/enhance", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status: got %d, want 204", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin: got %q, want *", got)
		}
		if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
			t.Error("Allow-Methods should include POST")
		}
	})

	t.Run("listed origin echoed", func(t *testing.T) {
		h := newTestServer(t, &config.Config{
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"http://app.example"},
			Timeout:        time.Second,
		})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://app.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://app.example" {
			t.Errorf("Allow-Origin: got %q, want http://app.example", got)
		}
	})

	t.Run("unlisted origin", func(t *testing.T) {
		h := newTestServer(t, &config.Config{
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"http://app.example"},
			Timeout:        time.Second,
		})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin should be absent, got %q", got)
		}
	})
}

func TestFlexNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{`2.5`, 2.5, false},
		{`"2.5"`, 2.5, false},
		{`" 8 "`, 8, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, true},
		{`"NaN"`, 0, true},
		{`true`, 0, true},
		{`1e300`, 1e300, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var n flexNumber
			err := json.Unmarshal([]byte(tt.input), &n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && n.float() != tt.want {
				t.Errorf("got %v, want %v", n.float(), tt.want)
			}
		})
	}

	ints := []struct {
		n    flexNumber
		want int
	}{
		{8.9, 8},
		{-3.5, -3},
		{4294967296, math.MaxInt32},
		{1e300, math.MaxInt32},
		{-1e300, math.MinInt32},
	}
	for _, tt := range ints {
		if got := tt.n.int(); got != tt.want {
			t.Errorf("flexNumber(%v).int(): got %d, want %d", float64(tt.n), got, tt.want)
		}
	}
}
