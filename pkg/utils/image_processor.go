package utils

import (
	"bytes"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ProcessImage decodes a payment-proof screenshot, caps its width and
// re-encodes it as WebP (JPEG fallback). Returns the bytes and the resulting
// content type.
func ProcessImage(r io.Reader) ([]byte, string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}

	// Phone screenshots can be huge; 1400px is plenty for reviewing a
	// transaction reference.
	if img.Bounds().Dx() > 1400 {
		img = imaging.Resize(img, 1400, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: 85}); err != nil {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}
	return buf.Bytes(), "image/webp", nil
}

// IsImage verifies simple content type
func IsImage(contentType string) bool {
	return contentType == "image/jpeg" || contentType == "image/png" || contentType == "image/webp" || contentType == "image/jpg"
}
