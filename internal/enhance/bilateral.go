package enhance

import (
	"image"
	"math"
)

// bilateralFilter smooths src while keeping edges.
//
// Each output pixel is a weighted mean of the pixels in a circular window of
// radius diameter/2 (at least 1). A neighbor's weight is the product of a
// spatial Gaussian on its distance (sigmaSpace) and a range Gaussian on its
// intensity difference from the center (sigmaColor), so pixels across a strong
// edge contribute almost nothing. Borders use reflect-101 extension.
func bilateralFilter(src *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray {
	radius := diameter / 2
	if radius < 1 {
		radius = 1
	}

	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)

	var colorWeight [256]float64
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	type tap struct {
		dx, dy int
		weight float64
	}
	taps := make([]tap, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r := math.Sqrt(float64(dx*dx + dy*dy))
			if r > float64(radius) {
				continue
			}
			taps = append(taps, tap{dx: dx, dy: dy, weight: math.Exp(r * r * spaceCoeff)})
		}
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(src.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := int(src.Pix[y*src.Stride+x])
			var sum, wsum float64
			for _, t := range taps {
				py := reflect101(y+t.dy, h)
				px := reflect101(x+t.dx, w)
				v := int(src.Pix[py*src.Stride+px])
				diff := v - center
				if diff < 0 {
					diff = -diff
				}
				wt := t.weight * colorWeight[diff]
				sum += float64(v) * wt
				wsum += wt
			}
			dst.Pix[y*dst.Stride+x] = saturateUint8(sum / wsum)
		}
	}
	return dst
}
