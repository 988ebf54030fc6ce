package enhance

import (
	"image"

	"github.com/anthonynsimon/bild/histogram"
)

// equalizeHistogram remaps intensities so the cumulative distribution is
// close to uniform over [0, 255].
//
// The lowest occupied level maps to 0. Each following level maps to
// round(cum(v) * 255 / (total - count(lowest))). A constant image has nothing
// to stretch and is returned as an unchanged copy.
func equalizeHistogram(src *image.Gray) *image.Gray {
	bins := histogram.NewRGBAHistogram(src).R.Bins
	total := len(src.Pix)

	first := 0
	for first < len(bins) && bins[first] == 0 {
		first++
	}
	if first == len(bins) || bins[first] == total {
		dst := image.NewGray(src.Rect)
		copy(dst.Pix, src.Pix)
		return dst
	}

	var lut [256]uint8
	scale := 255.0 / float64(total-bins[first])
	sum := 0
	for i := first + 1; i < len(bins); i++ {
		sum += bins[i]
		lut[i] = saturateUint8(float64(sum) * scale)
	}
	return applyLUT(src, &lut)
}
