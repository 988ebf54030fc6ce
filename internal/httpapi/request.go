package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/image-enhancer/internal/enhance"
	"github.com/ironsheep/image-enhancer/internal/metrics"
)

// flexNumber accepts a JSON number, a numeric string, or null.
// Browsers often send form values as strings.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not a number: %s", b)
	}
	*n = flexNumber(v)
	return nil
}

func (n flexNumber) float() float64 {
	return float64(n)
}

// int truncates toward zero, saturating at the int32 range so oversized
// values stay oversized instead of wrapping.
func (n flexNumber) int() int {
	return int(math.Max(math.Min(float64(n), math.MaxInt32), math.MinInt32))
}

// enhanceRequest is the body of POST /enhance.
type enhanceRequest struct {
	Image     string `json:"image"`
	Algorithm string `json:"algorithm"`

	ClipLimit   flexNumber `json:"clipLimit"`
	TileSize    flexNumber `json:"tileSize"`
	Amount      flexNumber `json:"amount"`
	Sigma       flexNumber `json:"sigma"`
	Diameter    flexNumber `json:"diameter"`
	SigmaColor  flexNumber `json:"sigmaColor"`
	SigmaSpace  flexNumber `json:"sigmaSpace"`
	MorphRadius flexNumber `json:"morphRadius"`
	Gamma       flexNumber `json:"gamma"`
}

// params converts the request tunables. Missing fields stay zero and are
// defaulted by the enhancer.
func (r *enhanceRequest) params() enhance.Params {
	return enhance.Params{
		ClipLimit:   r.ClipLimit.float(),
		TileSize:    r.TileSize.int(),
		Amount:      r.Amount.float(),
		Sigma:       r.Sigma.float(),
		Diameter:    r.Diameter.int(),
		SigmaColor:  r.SigmaColor.float(),
		SigmaSpace:  r.SigmaSpace.float(),
		MorphRadius: r.MorphRadius.int(),
		Gamma:       r.Gamma.float(),
	}
}

// enhanceResponse is the success body of POST /enhance.
type enhanceResponse struct {
	EnhancedImage string            `json:"enhanced_image"`
	Metrics       *metrics.Report   `json:"metrics"`
	Algorithm     enhance.Algorithm `json:"algorithm"`
	Defaulted     bool              `json:"defaulted,omitempty"`
	ElapsedMS     int64             `json:"elapsed_ms"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
