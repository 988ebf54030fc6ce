package enhance

import (
	"image"

	"github.com/disintegration/gift"
)

// topHatBoost adds the white top-hat of src back onto src.
//
// The top-hat isolates bright structures smaller than the structuring element:
// tophat = src - open(src), where open is an erosion followed by a dilation
// with a disk of diameter 2*radius+1. The result is saturated at 255.
func topHatBoost(src *image.Gray, radius int) *image.Gray {
	size := 2*radius + 1

	g := gift.New(
		gift.Minimum(size, true),
		gift.Maximum(size, true),
	)
	g.SetParallelization(false)

	opened := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(opened, src)

	dst := image.NewGray(src.Rect)
	for i, v := range src.Pix {
		var tophat int
		if o := opened.Pix[i]; v > o {
			tophat = int(v - o)
		}
		dst.Pix[i] = uint8(clampInt(int(v)+tophat, 0, 255))
	}
	return dst
}
