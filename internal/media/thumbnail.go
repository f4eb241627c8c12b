// Package media turns uploaded image bytes into thumbnails.
package media

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp"
)

// JPEGThumbnailer produces JPEG thumbnails that fit inside MaxDim x MaxDim,
// preserving aspect ratio.
type JPEGThumbnailer struct {
	MaxDim  int
	Quality int
}

func NewJPEGThumbnailer(maxDim, quality int) *JPEGThumbnailer {
	return &JPEGThumbnailer{MaxDim: maxDim, Quality: quality}
}

func (t *JPEGThumbnailer) Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(img, t.MaxDim, t.MaxDim, imaging.Lanczos)

	var out bytes.Buffer
	if err := imaging.Encode(&out, thumb, imaging.JPEG, imaging.JPEGQuality(t.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return out.Bytes(), nil
}
