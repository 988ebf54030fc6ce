package enhance

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidInput is returned when the image handed to Enhance is not a
// non-empty 8-bit single-channel image, or the algorithm is not recognized.
var ErrInvalidInput = errors.New("invalid input")

// Enhance applies alg to src and returns a new image with the same bounds.
//
// Parameters:
//   - src: must be a non-nil, non-empty *image.Gray. Color images have to be
//     converted by the caller (see internal/imaging.ToGray).
//   - alg: the algorithm to run. Use ParseAlgorithm for selector strings.
//   - p: tunables; zero fields take their defaults and oversized
//     neighborhoods are clamped (see MaxTileSize and friends).
//
// Returns:
//   - *image.Gray: the enhanced image. src is left untouched.
//   - error: wraps ErrInvalidInput for a bad image or an out-of-range alg.
func Enhance(src image.Image, alg Algorithm, p Params) (*image.Gray, error) {
	gray, ok := src.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("%w: expected 8-bit single-channel image, got %T", ErrInvalidInput, src)
	}
	if gray == nil || gray.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}

	in := normalize(gray)
	p = p.WithDefaults().bounded(in.Rect.Dx(), in.Rect.Dy())

	var out *image.Gray
	switch alg {
	case CLAHE:
		out = claheEqualize(in, p.ClipLimit, p.TileSize)
	case Histogram:
		out = equalizeHistogram(in)
	case Unsharp:
		out = unsharpMask(in, p.Amount, p.Sigma)
	case Bilateral:
		out = claheEqualize(bilateralFilter(in, p.Diameter, p.SigmaColor, p.SigmaSpace), fixedClipLimit, fixedTileSize)
	case Morphological:
		out = claheEqualize(topHatBoost(in, p.MorphRadius), fixedClipLimit, fixedTileSize)
	case Gamma:
		out = gammaCorrect(in, p.Gamma)
	case AdaptiveThreshold:
		out = claheEqualize(in, fixedClipLimit, fixedTileSize)
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrInvalidInput, int(alg))
	}

	// Re-anchor on the caller's bounds; Pix is origin-relative so no copy is needed.
	out.Rect = gray.Bounds()
	return out, nil
}

// normalize returns src as a tightly packed image anchored at (0,0).
// src itself is returned when it already has that layout.
func normalize(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if b.Min == (image.Point{}) && src.Stride == w && len(src.Pix) == w*h {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*w:(y+1)*w], src.Pix[off:off+w])
	}
	return dst
}

// reflect101 maps an out-of-range index into [0, n) by mirroring around the
// edge samples without repeating them (… c b | a b c d | c b …).
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

// applyLUT maps every pixel of src through lut.
func applyLUT(src *image.Gray, lut *[256]uint8) *image.Gray {
	dst := image.NewGray(src.Rect)
	for i, v := range src.Pix {
		dst.Pix[i] = lut[v]
	}
	return dst
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
