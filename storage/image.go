package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// PrepareImage decodes an upload, applies EXIF orientation, shrinks it to
// maxWidth when wider, and re-encodes it. PNG stays PNG, everything else becomes JPEG.
func PrepareImage(r io.Reader, contentType string, maxWidth int) (*bytes.Buffer, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("invalid image: %w", err)
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	format, outType := imaging.JPEG, "image/jpeg"
	if contentType == "image/png" {
		format, outType = imaging.PNG, "image/png"
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf, outType, nil
}
