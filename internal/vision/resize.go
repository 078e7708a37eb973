package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
)

// maxLongEdge is the pixel limit for the long edge of receipt images sent
// to the vision model. Larger images cost tokens without improving OCR.
const maxLongEdge = 1024

// PrepareImage decodes a receipt photo, downscales it so the long edge is
// at most maxLongEdge pixels, and re-encodes it as JPEG.
func PrepareImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode receipt image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	long := w
	if h > long {
		long = h
	}
	if long > maxLongEdge {
		scale := float64(maxLongEdge) / float64(long)
		img = downscale(img, int(float64(w)*scale+0.5), int(float64(h)*scale+0.5))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode receipt image: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale is a plain nearest-neighbor resample. Receipts are text-heavy
// documents, so quality beyond this does not change extraction results.
func downscale(src image.Image, w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := sb.Min.Y + y*sb.Dy()/h
		for x := 0; x < w; x++ {
			sx := sb.Min.X + x*sb.Dx()/w
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
