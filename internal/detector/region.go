package detector

import (
	"image"

	"github.com/andresv-qr/lumqr/internal/decoder"
	"github.com/andresv-qr/lumqr/internal/imgproc"
)

const (
	// Padding around a detected box, as a fraction of its size, clamped to
	// an absolute pixel range. The quiet zone around a QR code must survive
	// the crop or the traditional decoders reject it.
	regionPadFraction = 0.20
	regionPadMinPx    = 20
	regionPadMaxPx    = 50

	// Regions smaller than this on their longest side are upscaled before
	// decoding; module sampling fails below roughly this resolution.
	regionUpscaleBelowPx = 200
)

// PadBox grows a detected box by the standard padding, clamped to bounds.
func PadBox(box image.Rectangle, bounds image.Rectangle) image.Rectangle {
	padX := clampPad(int(float64(box.Dx()) * regionPadFraction))
	padY := clampPad(int(float64(box.Dy()) * regionPadFraction))
	return image.Rect(
		box.Min.X-padX,
		box.Min.Y-padY,
		box.Max.X+padX,
		box.Max.Y+padY,
	).Intersect(bounds)
}

func clampPad(p int) int {
	if p < regionPadMinPx {
		return regionPadMinPx
	}
	if p > regionPadMaxPx {
		return regionPadMaxPx
	}
	return p
}

// ExtractRegion crops a padded candidate region out of the full frame.
func ExtractRegion(img image.Image, box image.Rectangle) image.Image {
	return imgproc.CropRect(img, PadBox(box, img.Bounds()))
}

// DecodeRegion runs the decoder bank over a cropped region, retrying with
// an upscaled copy when the crop is small and with quarter rotations when
// the upright orientation fails. rotations counts the quarter-rotation
// retries actually attempted.
func DecodeRegion(region image.Image, bank *decoder.Bank) (payload, decoderID string, rotations int, err error) {
	b := region.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	if longest < regionUpscaleBelowPx {
		region = imgproc.Upscale(region, 2)
	}

	if payload, decoderID, err = bank.TryDecode(region); err == nil {
		return payload, decoderID, 0, nil
	}
	for _, angle := range []float64{90, 180, 270} {
		rotations++
		rotated := imgproc.RotateDegrees(region, angle)
		if payload, decoderID, err = bank.TryDecode(rotated); err == nil {
			return payload, decoderID, rotations, nil
		}
	}
	return "", "", rotations, decoder.ErrNoQR
}
