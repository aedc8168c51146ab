package storage

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/disintegration/imaging"
)

// Thumbnail decodes an image, scales it down to width keeping the aspect
// ratio and encodes it as JPEG. Narrower images are re-encoded unscaled.
func Thumbnail(data []byte, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("thumbnail width must be positive")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailKey is the object key of the thumbnail stored next to key.
func ThumbnailKey(key string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + "_thumb.jpg"
}
