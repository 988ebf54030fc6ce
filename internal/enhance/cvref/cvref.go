//go:build gocv

// Package cvref runs the enhancement algorithms through OpenCV (via gocv).
//
// It exists to cross-check the pure-Go implementations in internal/enhance
// and is only built with the "gocv" tag, since it needs OpenCV installed:
//
//	go test -tags gocv ./internal/enhance/cvref/
package cvref

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/ironsheep/image-enhancer/internal/enhance"
)

// Enhance applies alg with OpenCV primitives. The result is tightly packed
// and anchored at (0,0).
func Enhance(src *image.Gray, alg enhance.Algorithm, p enhance.Params) (*image.Gray, error) {
	if src == nil || src.Rect.Empty() {
		return nil, fmt.Errorf("%w: empty image", enhance.ErrInvalidInput)
	}
	p = p.WithDefaults()

	in, err := toMat(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()

	switch alg {
	case enhance.CLAHE:
		clahe(in, &out, p.ClipLimit, p.TileSize)
	case enhance.Histogram:
		gocv.EqualizeHist(in, &out)
	case enhance.Unsharp:
		blurred := gocv.NewMat()
		defer blurred.Close()
		gocv.GaussianBlur(in, &blurred, image.Point{}, p.Sigma, p.Sigma, gocv.BorderDefault)
		gocv.AddWeighted(in, 1+p.Amount, blurred, -p.Amount, 0, &out)
	case enhance.Bilateral:
		filtered := gocv.NewMat()
		defer filtered.Close()
		gocv.BilateralFilter(in, &filtered, p.Diameter, p.SigmaColor, p.SigmaSpace)
		clahe(filtered, &out, 2.0, 8)
	case enhance.Morphological:
		size := 2*p.MorphRadius + 1
		kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: size, Y: size})
		defer kernel.Close()
		tophat := gocv.NewMat()
		defer tophat.Close()
		gocv.MorphologyEx(in, &tophat, gocv.MorphTophat, kernel)
		boosted := gocv.NewMat()
		defer boosted.Close()
		gocv.Add(in, tophat, &boosted)
		clahe(boosted, &out, 2.0, 8)
	case enhance.Gamma:
		lut, err := gammaLUT(p.Gamma)
		if err != nil {
			return nil, err
		}
		defer lut.Close()
		gocv.LUT(in, lut, &out)
	case enhance.AdaptiveThreshold:
		clahe(in, &out, 2.0, 8)
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %d", enhance.ErrInvalidInput, int(alg))
	}

	return fromMat(out)
}

func clahe(src gocv.Mat, dst *gocv.Mat, clipLimit float64, tiles int) {
	c := gocv.NewCLAHEWithParams(clipLimit, image.Point{X: tiles, Y: tiles})
	defer c.Close()
	c.Apply(src, dst)
}

func gammaLUT(gamma float64) (gocv.Mat, error) {
	table := make([]byte, 256)
	inv := 1 / gamma
	for i := range table {
		table[i] = uint8(math.Min(255, math.Round(math.Pow(float64(i)/255, inv)*255)))
	}
	return gocv.NewMatFromBytes(1, 256, gocv.MatTypeCV8U, table)
}

func toMat(src *image.Gray) (gocv.Mat, error) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	buf := make([]byte, w*h)
	for y := 0; y < h; y++ {
		off := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		copy(buf[y*w:(y+1)*w], src.Pix[off:off+w])
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, buf)
}

func fromMat(m gocv.Mat) (*image.Gray, error) {
	if m.Empty() {
		return nil, fmt.Errorf("opencv produced an empty result")
	}
	if m.Type() != gocv.MatTypeCV8U {
		return nil, fmt.Errorf("unexpected opencv result type %v", m.Type())
	}
	w, h := m.Cols(), m.Rows()
	out := image.NewGray(image.Rect(0, 0, w, h))
	copy(out.Pix, m.ToBytes())
	return out, nil
}
