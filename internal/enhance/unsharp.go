package enhance

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/math/f64"
	"github.com/disintegration/imaging"
)

// unsharpMask sharpens src by subtracting a blurred copy:
//
//	out = clamp(round(src + amount*(src-blurred)), 0, 255)
//
// The blur is a Gaussian with the given sigma; the kernel radius is
// ceil(3*sigma), so the kernel size follows from sigma alone.
func unsharpMask(src *image.Gray, amount, sigma float64) *image.Gray {
	blurred := imaging.Blur(src, sigma)

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(src.Rect)
	for y := 0; y < h; y++ {
		srcRow := src.Pix[y*src.Stride:]
		blurRow := blurred.Pix[y*blurred.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			// Blurred output is NRGBA with R == G == B.
			b := float64(blurRow[x*4])
			s := float64(srcRow[x])
			v := s + amount*(s-b)
			dstRow[x] = uint8(f64.Clamp(math.RoundToEven(v), 0, 255))
		}
	}
	return dst
}
