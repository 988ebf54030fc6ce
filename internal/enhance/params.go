package enhance

import "math"

// Default tunables.
const (
	DefaultClipLimit   = 2.0
	DefaultTileSize    = 8
	DefaultAmount      = 1.5
	DefaultSigma       = 1.0
	DefaultDiameter    = 9
	DefaultSigmaColor  = 75.0
	DefaultSigmaSpace  = 75.0
	DefaultMorphRadius = 7
	DefaultGamma       = 1.5
)

// Upper bounds on the neighborhood tunables. Larger values are clamped; they
// would only cost memory and time without changing the result meaningfully.
const (
	MaxTileSize    = 256
	MaxDiameter    = 65
	MaxSigma       = 64.0
	MaxMorphRadius = 64
)

// minFilterSigma keeps the bilateral weight exponents finite.
const minFilterSigma = 1e-3

// Settings used by the composite algorithms (bilateral, morphological and
// adaptive_threshold) regardless of the caller's clip/tile values.
const (
	fixedClipLimit = 2.0
	fixedTileSize  = 8
)

// Params holds the algorithm tunables. Each algorithm ignores the fields it
// does not use.
type Params struct {
	// ClipLimit is the CLAHE histogram clip limit, relative to a flat histogram.
	ClipLimit float64 `json:"clipLimit"`

	// TileSize is the CLAHE grid size; the image is split into TileSize x TileSize tiles.
	TileSize int `json:"tileSize"`

	// Amount is the unsharp mask strength.
	Amount float64 `json:"amount"`

	// Sigma is the Gaussian standard deviation for the unsharp blur, in pixels.
	Sigma float64 `json:"sigma"`

	// Diameter is the bilateral neighborhood diameter in pixels.
	Diameter int `json:"diameter"`

	// SigmaColor is the bilateral range sigma (intensity units).
	SigmaColor float64 `json:"sigmaColor"`

	// SigmaSpace is the bilateral spatial sigma (pixels).
	SigmaSpace float64 `json:"sigmaSpace"`

	// MorphRadius is the radius of the disk structuring element; the
	// neighborhood is (2*MorphRadius+1) pixels wide.
	MorphRadius int `json:"morphRadius"`

	// Gamma is the gamma exponent; output = 255 * (input/255)^(1/Gamma).
	Gamma float64 `json:"gamma"`
}

// DefaultParams returns the documented defaults for every field.
func DefaultParams() Params {
	return Params{
		ClipLimit:   DefaultClipLimit,
		TileSize:    DefaultTileSize,
		Amount:      DefaultAmount,
		Sigma:       DefaultSigma,
		Diameter:    DefaultDiameter,
		SigmaColor:  DefaultSigmaColor,
		SigmaSpace:  DefaultSigmaSpace,
		MorphRadius: DefaultMorphRadius,
		Gamma:       DefaultGamma,
	}
}

// WithDefaults returns a copy of p in which every zero or negative field is
// replaced by its default.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.ClipLimit <= 0 {
		p.ClipLimit = d.ClipLimit
	}
	if p.TileSize <= 0 {
		p.TileSize = d.TileSize
	}
	if p.Amount <= 0 {
		p.Amount = d.Amount
	}
	if p.Sigma <= 0 {
		p.Sigma = d.Sigma
	}
	if p.Diameter <= 0 {
		p.Diameter = d.Diameter
	}
	if p.SigmaColor <= 0 {
		p.SigmaColor = d.SigmaColor
	}
	if p.SigmaSpace <= 0 {
		p.SigmaSpace = d.SigmaSpace
	}
	if p.MorphRadius <= 0 {
		p.MorphRadius = d.MorphRadius
	}
	if p.Gamma <= 0 {
		p.Gamma = d.Gamma
	}
	return p
}

// bounded returns a copy of p with the neighborhood tunables clamped to their
// maximums and, for the integer sizes, to the image extent. p must already
// carry its defaults.
func (p Params) bounded(w, h int) Params {
	extent := w
	if h > extent {
		extent = h
	}
	p.TileSize = clampInt(p.TileSize, 1, MaxTileSize)
	p.Diameter = clampInt(p.Diameter, 1, clampInt(2*extent+1, 1, MaxDiameter))
	p.MorphRadius = clampInt(p.MorphRadius, 1, clampInt(extent, 1, MaxMorphRadius))
	p.Sigma = math.Min(p.Sigma, MaxSigma)
	p.SigmaColor = math.Max(p.SigmaColor, minFilterSigma)
	p.SigmaSpace = math.Max(p.SigmaSpace, minFilterSigma)
	return p
}
