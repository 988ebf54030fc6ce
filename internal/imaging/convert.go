package imaging

import (
	"fmt"
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// ToGray converts any decoded image to an 8-bit single-channel image anchored
// at (0,0).
//
// # Conversion Rules
//
//   - *image.Gray: copied as is
//   - *image.Gray16: high byte of each sample
//   - *image.NRGBA: alpha is dropped and the stored RGB is converted with
//     BT.601 weights (0.299*R + 0.587*G + 0.114*B)
//   - anything else: each pixel is un-premultiplied via go-colorful and then
//     converted with the same weights; fully transparent pixels become black
//
// Returns an error for a nil or empty image.
func ToGray(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("unsupported image format: nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("unsupported image format: empty image")
	}

	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*w:(y+1)*w], src.Pix[off:off+w])
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Pix[y*w+x] = uint8(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+3]
				dst.Pix[y*w+x] = luma(float64(p[0]), float64(p[1]), float64(p[2]))
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				// MakeColor reports false for zero alpha; its color is black then.
				c, _ := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
				dst.Pix[y*w+x] = luma(c.R*255, c.G*255, c.B*255)
			}
		}
	}
	return dst, nil
}

func luma(r, g, b float64) uint8 {
	v := math.Round(lumaR*r + lumaG*g + lumaB*b)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
