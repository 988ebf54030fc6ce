package enhance

// Algorithm selects one of the enhancement variants.
type Algorithm int

const (
	CLAHE Algorithm = iota
	Histogram
	Unsharp
	Bilateral
	Morphological
	Gamma
	AdaptiveThreshold
)

var algorithmNames = [...]string{
	CLAHE:             "clahe",
	Histogram:         "histogram",
	Unsharp:           "unsharp",
	Bilateral:         "bilateral",
	Morphological:     "morphological",
	Gamma:             "gamma",
	AdaptiveThreshold: "adaptive_threshold",
}

// String returns the wire name of the algorithm ("clahe", "gamma", ...).
func (a Algorithm) String() string {
	if a.Valid() {
		return algorithmNames[a]
	}
	return "unknown"
}

// Valid reports whether a is one of the declared algorithms.
func (a Algorithm) Valid() bool {
	return a >= 0 && int(a) < len(algorithmNames)
}

// MarshalText encodes the algorithm as its wire name.
func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAlgorithm maps a selector name to an Algorithm.
//
// Unrecognized names (including the empty string) map to CLAHE; ok is false
// in that case so callers can report the fallback.
func ParseAlgorithm(name string) (alg Algorithm, ok bool) {
	for i, n := range algorithmNames {
		if n == name {
			return Algorithm(i), true
		}
	}
	return CLAHE, false
}

// AlgorithmInfo describes an algorithm for listing endpoints.
type AlgorithmInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

// Algorithms lists every algorithm in declaration order.
func Algorithms() []AlgorithmInfo {
	return []AlgorithmInfo{
		{
			Name:        CLAHE.String(),
			Description: "Contrast Limited Adaptive Histogram Equalization. Boosts local contrast without amplifying noise in flat regions.",
			Parameters:  []string{"clipLimit", "tileSize"},
		},
		{
			Name:        Histogram.String(),
			Description: "Global histogram equalization. Spreads intensities so the cumulative distribution is close to uniform.",
			Parameters:  []string{},
		},
		{
			Name:        Unsharp.String(),
			Description: "Unsharp masking. Subtracts a Gaussian-blurred copy to emphasize edges and fine detail.",
			Parameters:  []string{"amount", "sigma"},
		},
		{
			Name:        Bilateral.String(),
			Description: "Bilateral filter followed by CLAHE. Removes noise while keeping edges, then restores contrast.",
			Parameters:  []string{"diameter", "sigmaColor", "sigmaSpace"},
		},
		{
			Name:        Morphological.String(),
			Description: "Top-hat transform added back to the image, followed by CLAHE. Brings out small bright structures.",
			Parameters:  []string{"morphRadius"},
		},
		{
			Name:        Gamma.String(),
			Description: "Gamma correction through a lookup table. Values above 1 brighten mid-tones.",
			Parameters:  []string{"gamma"},
		},
		{
			Name:        AdaptiveThreshold.String(),
			Description: "CLAHE with fixed settings (clip 2.0, 8x8 grid). No thresholding is applied.",
			Parameters:  []string{},
		},
	}
}
