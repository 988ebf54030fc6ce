// Package imaging adapts external image data to the 8-bit grayscale planes
// the enhancement core works on, and back.
//
// It owns every container-format concern so that internal/enhance and
// internal/metrics only ever see *image.Gray:
//
//   - Decoding: PNG, JPEG, GIF (stdlib decoders) plus BMP and TIFF (registered
//     by github.com/disintegration/imaging), from files, readers, or data URLs.
//   - Conversion: ToGray strips alpha and applies ITU-R BT.601 luma weights.
//   - Encoding: PNG bytes, base64, and "data:image/png;base64," URLs.
//   - Caching: ImageCache keeps decoded images in memory per path for the
//     lifetime of the process.
//
// # Coordinate System
//
// Gray images produced here are always anchored at (0,0) with a tightly
// packed Pix slice (Stride == width), regardless of the source bounds.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Images returned from the cache are
// shared and must be treated as read-only; the enhancement core never writes
// to its input, so they can be passed to it directly.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during loading
//   - Undecodable or empty image data
//   - Malformed data URLs or base64 payloads
//   - Encoding errors during output
package imaging
