// Package enhance implements the contrast and sharpness enhancement algorithms.
//
// Every algorithm takes an 8-bit single-channel image (*image.Gray) and returns
// a new *image.Gray with exactly the same bounds. The input is never modified.
// All functions are pure: there is no package-level mutable state, so Enhance
// may be called from any number of goroutines at once.
//
// # Algorithms
//
//   - clahe: Contrast Limited Adaptive Histogram Equalization on a tile grid
//   - histogram: global histogram equalization
//   - unsharp: Gaussian unsharp masking
//   - bilateral: edge-preserving bilateral smoothing followed by CLAHE
//   - morphological: top-hat boost of small bright features followed by CLAHE
//   - gamma: power-law remap through a 256-entry lookup table
//   - adaptive_threshold: CLAHE with fixed settings (the name is historical;
//     no thresholding is performed)
//
// Selector strings are mapped to the Algorithm enum by ParseAlgorithm. Unknown
// names fall back to CLAHE, and the caller is told that the fallback happened.
//
// # Parameters
//
// Params carries every tunable. Each algorithm reads only the fields it needs.
// Zero or negative values are replaced by the documented defaults before any
// algorithm runs (see Params.WithDefaults).
//
// # Borders
//
// Neighborhood operations (CLAHE tile padding, bilateral filtering) use
// reflect-101 border extension: for a row "abcd", the virtual pixels to the
// right are "cba", never repeating the edge sample itself.
package enhance
