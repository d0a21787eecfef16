package detector

import (
	"errors"
	"image"
)

// ErrModelUnavailable indicates the ONNX model could not be loaded or its
// file is missing. The cascade treats this as "fallback not attempted"
// rather than a request failure.
var ErrModelUnavailable = errors.New("detection model unavailable")

// ErrLowConfidence indicates the detector produced candidates but none
// reached the acceptance gate.
var ErrLowConfidence = errors.New("no candidate above confidence threshold")

// Candidate is a proposed QR region in original-image coordinates.
type Candidate struct {
	Box        image.Rectangle
	Confidence float64
}

// Detection is a decoded payload recovered through the ML fallback.
type Detection struct {
	Payload        string
	Confidence     float64 // detector confidence of the region that decoded
	DecoderID      string  // bank backend that produced the payload
	Box            image.Rectangle
	RotationsTried int // quarter-rotation retries spent across regions
}
