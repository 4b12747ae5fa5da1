// Package imaging normalizes uploaded book cover images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxHeight is the maximum stored cover height in pixels. Covers are
// portrait, so height is the constraining dimension.
const MaxHeight = 800

// MaxWidth caps unusually wide uploads (scans of open books, banners).
const MaxWidth = 600

// jpegQuality is the compression quality for stored covers.
const jpegQuality = 85

// allowedMIME lists the accepted input MIME types.
var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Cover holds a normalized cover image ready for storage.
type Cover struct {
	Data []byte
	MIME string
}

// Normalize reads an uploaded image, validates the format by sniffing the
// bytes, scales it down to cover dimensions if needed, and re-encodes it as
// JPEG so every stored cover has the same format and a bounded size.
func Normalize(r io.Reader) (*Cover, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	// Sniff the real MIME type; client headers are not trusted.
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = fit(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Cover{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// fit scales the image down so it fits within MaxWidth x MaxHeight,
// preserving aspect ratio. Images already within bounds pass through.
func fit(img image.Image) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= MaxWidth && h <= MaxHeight {
		return img
	}

	scale := float64(MaxHeight) / float64(h)
	if s := float64(MaxWidth) / float64(w); s < scale {
		scale = s
	}

	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	// Register decoders (jpeg is registered by default, but be explicit).
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
