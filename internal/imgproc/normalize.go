// Package imgproc provides image decoding, normalization and the pure
// transformations used by the detection cascade.
package imgproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ErrNotAnImage indicates the submitted bytes could not be decoded as any
// supported raster format.
var ErrNotAnImage = errors.New("input bytes are not a decodable image")

// Metadata captures lightweight information about a decoded upload.
type Metadata struct {
	Format       string
	DeclaredMIME string
	SizeBytes    int
	Width        int
	Height       int
	Downscaled   bool
}

// DecodeImage decodes uploaded bytes into an in-memory raster. The declared
// MIME type is recorded for diagnostics but never trusted: the actual bytes
// decide the format. Supported formats: JPEG, PNG, BMP, WEBP.
func DecodeImage(data []byte, declaredMIME string) (image.Image, Metadata, error) {
	if len(data) == 0 {
		return nil, Metadata{}, &ImageProcessingError{Operation: "decode", Err: errors.New("empty input")}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Metadata{}, &ImageProcessingError{
			Operation: "decode",
			Err:       fmt.Errorf("%w: %v", ErrNotAnImage, err),
		}
	}

	b := img.Bounds()
	meta := Metadata{
		Format:       format,
		DeclaredMIME: declaredMIME,
		SizeBytes:    len(data),
		Width:        b.Dx(),
		Height:       b.Dy(),
	}
	return img, meta, nil
}

// ClampSize downscales an image whose longest side exceeds maxDim, preserving
// aspect ratio with Lanczos resampling. It bounds the cost of every later
// stage regardless of input size. Images within bounds are returned unchanged.
func ClampSize(img image.Image, maxDim int) (image.Image, bool) {
	if img == nil || maxDim <= 0 {
		return img, false
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img, false
	}
	if w >= h {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos), true
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos), true
}
