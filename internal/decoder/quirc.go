package decoder

import (
	"image"

	"github.com/liyue201/goqr"
)

// quircDecoder wraps the pure-Go quirc port. It uses a different detection
// strategy than ZXing and recovers some heavily compressed thermal-print
// codes the other backends miss.
type quircDecoder struct{}

// NewQuirc returns the quirc-based backend.
func NewQuirc() Decoder {
	return &quircDecoder{}
}

func (q *quircDecoder) ID() string { return "quirc" }

func (q *quircDecoder) TryDecode(img image.Image) (string, error) {
	codes, err := goqr.Recognize(img)
	if err != nil || len(codes) == 0 {
		return "", ErrNoQR
	}
	for _, c := range codes {
		if len(c.Payload) > 0 {
			return string(c.Payload), nil
		}
	}
	return "", ErrNoQR
}
