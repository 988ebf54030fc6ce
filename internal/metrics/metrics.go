// Package metrics scores grayscale images and compares an enhanced image
// against its original.
//
// Three measures are computed per image:
//   - Contrast: population standard deviation of the intensities.
//   - Sharpness: variance of the 4-neighbour Laplacian response.
//   - Entropy: Shannon entropy (bits) of the 256-bin intensity histogram.
//
// Improvements are percentages relative to the original value. When the
// original value is exactly zero the percentage is undefined; Evaluate then
// reports 0 and lists the measure in Report.Degenerate. The same rule applies
// to all three measures, so a Report never holds NaN or Inf and always
// serializes to JSON.
package metrics

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/histogram"
)

var (
	// ErrInvalidInput is returned for nil or empty images.
	ErrInvalidInput = errors.New("invalid input")

	// ErrShapeMismatch is returned when the original and enhanced images differ in size.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDegenerateMetric marks an improvement that cannot be computed because
	// the original value is zero.
	ErrDegenerateMetric = errors.New("degenerate metric")
)

// Measure names, as used in Report.Degenerate.
const (
	MeasureContrast  = "contrast"
	MeasureSharpness = "sharpness"
	MeasureEntropy   = "entropy"
)

// Report holds the quality measures of an original/enhanced pair.
type Report struct {
	ContrastOriginal    float64 `json:"contrast_original"`
	ContrastEnhanced    float64 `json:"contrast_enhanced"`
	ContrastImprovement float64 `json:"contrast_improvement"`

	SharpnessOriginal    float64 `json:"sharpness_original"`
	SharpnessEnhanced    float64 `json:"sharpness_enhanced"`
	SharpnessImprovement float64 `json:"sharpness_improvement"`

	EntropyOriginal    float64 `json:"entropy_original"`
	EntropyEnhanced    float64 `json:"entropy_enhanced"`
	EntropyImprovement float64 `json:"entropy_improvement"`

	// Degenerate lists the measures whose original value was zero; their
	// improvement is reported as 0.
	Degenerate []string `json:"degenerate,omitempty"`
}

// Values returns the nine numeric fields keyed by their JSON names.
func (r *Report) Values() map[string]float64 {
	return map[string]float64{
		"contrast_original":     r.ContrastOriginal,
		"contrast_enhanced":     r.ContrastEnhanced,
		"contrast_improvement":  r.ContrastImprovement,
		"sharpness_original":    r.SharpnessOriginal,
		"sharpness_enhanced":    r.SharpnessEnhanced,
		"sharpness_improvement": r.SharpnessImprovement,
		"entropy_original":      r.EntropyOriginal,
		"entropy_enhanced":      r.EntropyEnhanced,
		"entropy_improvement":   r.EntropyImprovement,
	}
}

// Err returns an error wrapping ErrDegenerateMetric when any improvement was
// undefined, or nil otherwise.
func (r *Report) Err() error {
	if len(r.Degenerate) == 0 {
		return nil
	}
	return fmt.Errorf("%w: original %s is zero", ErrDegenerateMetric, strings.Join(r.Degenerate, ", "))
}

// Evaluate measures both images and derives the percentage improvements.
//
// Returns:
//   - *Report: all nine values plus the list of degenerate measures.
//   - error: wraps ErrInvalidInput for nil/empty images or ErrShapeMismatch
//     when the sizes differ. A zero original value is not an error.
func Evaluate(original, enhanced *image.Gray) (*Report, error) {
	if original == nil || enhanced == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	ob, eb := original.Bounds(), enhanced.Bounds()
	if ob.Empty() || eb.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if ob.Dx() != eb.Dx() || ob.Dy() != eb.Dy() {
		return nil, fmt.Errorf("%w: original %dx%d, enhanced %dx%d",
			ErrShapeMismatch, ob.Dx(), ob.Dy(), eb.Dx(), eb.Dy())
	}

	r := &Report{
		ContrastOriginal:  Contrast(original),
		ContrastEnhanced:  Contrast(enhanced),
		SharpnessOriginal: Sharpness(original),
		SharpnessEnhanced: Sharpness(enhanced),
		EntropyOriginal:   Entropy(original),
		EntropyEnhanced:   Entropy(enhanced),
	}
	r.ContrastImprovement = r.improvement(MeasureContrast, r.ContrastOriginal, r.ContrastEnhanced)
	r.SharpnessImprovement = r.improvement(MeasureSharpness, r.SharpnessOriginal, r.SharpnessEnhanced)
	r.EntropyImprovement = r.improvement(MeasureEntropy, r.EntropyOriginal, r.EntropyEnhanced)
	return r, nil
}

func (r *Report) improvement(name string, original, enhanced float64) float64 {
	pct, err := Improvement(original, enhanced)
	if err != nil {
		r.Degenerate = append(r.Degenerate, name)
		return 0
	}
	return pct
}

// Improvement returns (enhanced - original) / original * 100.
// It fails with ErrDegenerateMetric when original is zero.
func Improvement(original, enhanced float64) (float64, error) {
	if original == 0 {
		return 0, ErrDegenerateMetric
	}
	return (enhanced - original) / original * 100, nil
}

// Contrast returns the population standard deviation of the pixel intensities.
func Contrast(img *image.Gray) float64 {
	b := img.Bounds()
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return 0
	}

	var sum float64
	forEachPixel(img, func(v uint8) { sum += float64(v) })
	mean := sum / n

	var sq float64
	forEachPixel(img, func(v uint8) {
		d := float64(v) - mean
		sq += d * d
	})
	return math.Sqrt(sq / n)
}

// Sharpness returns the population variance of the Laplacian response
//
//	0  1  0
//	1 -4  1
//	0  1  0
//
// computed in float64 with reflect-101 borders. Strong, well-defined edges
// give a high variance; a flat image gives 0.
func Sharpness(img *image.Gray) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	at := func(x, y int) float64 {
		return float64(img.Pix[img.PixOffset(b.Min.X+reflect101(x, w), b.Min.Y+reflect101(y, h))])
	}

	lap := make([]float64, 0, w*h)
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := at(x, y-1) + at(x-1, y) + at(x+1, y) + at(x, y+1) - 4*at(x, y)
			lap = append(lap, v)
			sum += v
		}
	}
	mean := sum / float64(len(lap))

	var sq float64
	for _, v := range lap {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(lap))
}

// Entropy returns the Shannon entropy in bits of the 256-bin intensity
// histogram. Empty bins contribute nothing and are skipped.
func Entropy(img *image.Gray) float64 {
	b := img.Bounds()
	total := float64(b.Dx() * b.Dy())
	if total == 0 {
		return 0
	}

	var e float64
	for _, count := range histogram.NewRGBAHistogram(img).R.Bins {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		e -= p * math.Log2(p)
	}
	return e
}

func forEachPixel(img *image.Gray, fn func(v uint8)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			fn(row[x])
		}
	}
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
