package enhance

import (
	"image"
	"math"
)

// claheEqualize performs Contrast Limited Adaptive Histogram Equalization.
//
// # Algorithm
//
//  1. Tiling: the image is split into tiles x tiles regions. When the size is
//     not a multiple of the grid, a virtual reflect-101 extension is added on
//     the right and bottom (a full extra tile width on an axis that already
//     divides evenly) so all tiles have the same size.
//
//  2. Clipping: each tile histogram is capped at
//     max(int(clipLimit * tileArea / 256), 1). The clipped excess is spread
//     evenly over all 256 bins; the remainder goes one count at a time to
//     bins at a fixed stride starting at 0.
//
//  3. Mapping: each tile gets a lookup table round(cdf(v) * 255 / tileArea).
//
//  4. Blending: every output pixel is the bilinear interpolation of the four
//     lookup tables whose tile centers surround it. Pixels closer to the image
//     edge than half a tile use the nearest tiles only.
//
// A clipLimit <= 0 disables clipping (plain adaptive equalization).
func claheEqualize(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	tiles = clampInt(tiles, 1, MaxTileSize)

	extW, extH := w, h
	if w%tiles != 0 || h%tiles != 0 {
		extW = w + tiles - w%tiles
		extH = h + tiles - h%tiles
	}
	tileW, tileH := extW/tiles, extH/tiles
	tileArea := tileW * tileH

	limit := 0
	if clipLimit > 0 {
		// A limit of tileArea never clips.
		limit = int(math.Min(clipLimit*float64(tileArea)/256, float64(tileArea)))
		if limit < 1 {
			limit = 1
		}
	}

	luts := make([][256]uint8, tiles*tiles)
	lutScale := 255.0 / float64(tileArea)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			var hist [256]int
			for y := ty * tileH; y < (ty+1)*tileH; y++ {
				row := reflect101(y, h) * src.Stride
				for x := tx * tileW; x < (tx+1)*tileW; x++ {
					hist[src.Pix[row+reflect101(x, w)]]++
				}
			}
			if limit > 0 {
				clipHistogram(&hist, limit)
			}

			lut := &luts[ty*tiles+tx]
			sum := 0
			for i := range hist {
				sum += hist[i]
				lut[i] = saturateUint8(float64(sum) * lutScale)
			}
		}
	}

	// Per-column interpolation terms are shared by every row.
	tx1s := make([]int, w)
	tx2s := make([]int, w)
	xas := make([]float64, w)
	invTW := 1.0 / float64(tileW)
	for x := 0; x < w; x++ {
		txf := float64(x)*invTW - 0.5
		tx1 := int(math.Floor(txf))
		xas[x] = txf - float64(tx1)
		tx1s[x] = clampInt(tx1, 0, tiles-1)
		tx2s[x] = clampInt(tx1+1, 0, tiles-1)
	}

	dst := image.NewGray(src.Rect)
	invTH := 1.0 / float64(tileH)
	for y := 0; y < h; y++ {
		tyf := float64(y)*invTH - 0.5
		ty1 := int(math.Floor(tyf))
		ya := tyf - float64(ty1)
		ya1 := 1 - ya
		top := luts[clampInt(ty1, 0, tiles-1)*tiles:]
		bottom := luts[clampInt(ty1+1, 0, tiles-1)*tiles:]

		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			v := srcRow[x]
			xa := xas[x]
			xa1 := 1 - xa
			t := float64(top[tx1s[x]][v])*xa1 + float64(top[tx2s[x]][v])*xa
			b := float64(bottom[tx1s[x]][v])*xa1 + float64(bottom[tx2s[x]][v])*xa
			dstRow[x] = saturateUint8(t*ya1 + b*ya)
		}
	}
	return dst
}

// clipHistogram caps every bin at limit and redistributes the excess.
func clipHistogram(hist *[256]int, limit int) {
	clipped := 0
	for i := range hist {
		if hist[i] > limit {
			clipped += hist[i] - limit
			hist[i] = limit
		}
	}

	batch := clipped / len(hist)
	residual := clipped - batch*len(hist)
	for i := range hist {
		hist[i] += batch
	}

	if residual != 0 {
		step := len(hist) / residual
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(hist) && residual > 0; i, residual = i+step, residual-1 {
			hist[i]++
		}
	}
}

// saturateUint8 rounds half to even and clamps to [0, 255].
func saturateUint8(v float64) uint8 {
	r := math.RoundToEven(v)
	if r <= 0 {
		return 0
	}
	if r >= 255 {
		return 255
	}
	return uint8(r)
}
