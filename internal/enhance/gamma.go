package enhance

import (
	"image"

	"github.com/disintegration/imaging"
)

// gammaCorrect maps every level through 255 * (v/255)^(1/gamma), rounded to
// the nearest level, so gamma == 1 is an exact identity.
func gammaCorrect(src *image.Gray, gamma float64) *image.Gray {
	adjusted := imaging.AdjustGamma(src, gamma)

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(src.Rect)
	for y := 0; y < h; y++ {
		adjRow := adjusted.Pix[y*adjusted.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			dstRow[x] = adjRow[x*4]
		}
	}
	return dst
}
