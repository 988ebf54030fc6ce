package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// PNGDataURLPrefix prefixes every encoded image returned to HTTP clients.
const PNGDataURLPrefix = "data:image/png;base64,"

// Decode reads an image in any registered format (PNG, JPEG, GIF, BMP, TIFF).
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeDataURL decodes an image sent as a data URL
// ("data:image/png;base64,iVBOR...") or as bare base64.
//
// Only the part after the first comma is decoded; the media type in the header
// is ignored because the container format is sniffed from the bytes.
func DecodeDataURL(s string) (image.Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty image data")
	}

	encoded := s
	if i := strings.IndexByte(s, ','); i >= 0 {
		header := s[:i]
		if strings.HasPrefix(header, "data:") && !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("data URL must be base64 encoded")
		}
		encoded = s[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	return Decode(bytes.NewReader(raw))
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// EncodePNGBase64 returns img as base64-encoded PNG bytes.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodePNGDataURL returns img as a "data:image/png;base64,..." URL.
func EncodePNGDataURL(img image.Image) (string, error) {
	b64, err := EncodePNGBase64(img)
	if err != nil {
		return "", err
	}
	return PNGDataURLPrefix + b64, nil
}

// Save writes img to path; the format follows the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
