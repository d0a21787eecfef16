package imgproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// RotateDegrees rotates an image counterclockwise by the given angle,
// filling exposed corners with white. White matches typical invoice paper
// so rotated borders do not read as dark quiet-zone violations.
func RotateDegrees(img image.Image, angle float64) image.Image {
	switch angle {
	case 0:
		return img
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	}
	return imaging.Rotate(img, angle, color.White)
}

// AdjustContrast changes contrast by a percentage in [-100, 100].
func AdjustContrast(img image.Image, pct float64) image.Image {
	return imaging.AdjustContrast(img, pct)
}

// CenterCrop keeps the central fraction of the image on both axes.
// frac must be in (0, 1]; values outside return the input unchanged.
func CenterCrop(img image.Image, frac float64) image.Image {
	if frac <= 0 || frac >= 1 {
		return img
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) * frac)
	h := int(float64(b.Dy()) * frac)
	if w < 1 || h < 1 {
		return img
	}
	return imaging.CropCenter(img, w, h)
}

// Upscale enlarges an image by an integer factor with Lanczos resampling.
// Small QR regions cropped out of full frames often need this before the
// traditional decoders can lock onto the finder patterns.
func Upscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.Lanczos)
}

// ResizeExact forces an image to exactly width x height, ignoring aspect
// ratio. Detector input tensors require a fixed square resolution.
func ResizeExact(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// CropRect extracts a sub-rectangle, clamped to the image bounds.
func CropRect(img image.Image, r image.Rectangle) image.Image {
	clamped := r.Intersect(img.Bounds())
	if clamped.Empty() {
		return image.NewGray(image.Rect(0, 0, 1, 1))
	}
	return imaging.Crop(img, clamped)
}
