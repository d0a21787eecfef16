// Package cascade orchestrates hybrid QR detection: a bank of traditional
// decoders over preprocessed image variants first, an ONNX region detector
// as fallback, all under a per-request wall-clock budget.
package cascade

import (
	"image"

	"github.com/andresv-qr/lumqr/internal/imgproc"
)

// Strategy is one preprocessing variant tried at level 1. Apply must be a
// pure function of its input: the same image always yields the same output,
// no shared state, no randomness. The cascade relies on this for
// reproducible attempt logs.
type Strategy struct {
	ID    string
	Apply func(image.Image) image.Image
}

// DefaultStrategies returns the fixed, ordered preprocessing sequence.
// Cheap transforms that succeed most often come first so the short-circuit
// saves the most time. Order changes alter result timing and attempt logs,
// so treat this list as part of the public contract.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			ID: "raw_gray",
			Apply: func(img image.Image) image.Image {
				return imgproc.ToGray(img)
			},
		},
		{
			ID: "equalized",
			Apply: func(img image.Image) image.Image {
				return imgproc.EqualizeHistogram(imgproc.ToGray(img))
			},
		},
		{
			ID: "equalized_otsu",
			Apply: func(img image.Image) image.Image {
				return imgproc.OtsuThreshold(imgproc.EqualizeHistogram(imgproc.ToGray(img)))
			},
		},
		{
			ID: "otsu",
			Apply: func(img image.Image) image.Image {
				return imgproc.OtsuThreshold(imgproc.ToGray(img))
			},
		},
		{
			ID: "contrast_boost",
			Apply: func(img image.Image) image.Image {
				return imgproc.ToGray(imgproc.AdjustContrast(img, 30))
			},
		},
		{
			ID: "rotate_plus10",
			Apply: func(img image.Image) image.Image {
				return imgproc.ToGray(imgproc.RotateDegrees(img, 10))
			},
		},
		{
			ID: "rotate_minus10",
			Apply: func(img image.Image) image.Image {
				return imgproc.ToGray(imgproc.RotateDegrees(img, -10))
			},
		},
		{
			ID: "center_crop",
			Apply: func(img image.Image) image.Image {
				return imgproc.ToGray(imgproc.CenterCrop(img, 0.6))
			},
		},
	}
}

// StrategyIDs lists the IDs of a strategy sequence in order.
func StrategyIDs(strategies []Strategy) []string {
	ids := make([]string, len(strategies))
	for i, s := range strategies {
		ids[i] = s.ID
	}
	return ids
}
