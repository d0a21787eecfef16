// Package decoder implements the bank of deterministic QR decoders used by
// level 1 of the detection cascade. Each decoder is an independent library
// backend; the bank runs them in a fixed order and short-circuits on the
// first successful payload.
package decoder

import (
	"errors"
	"fmt"
	"image"
)

// ErrNoQR is returned when a decoder ran cleanly but found no QR code.
var ErrNoQR = errors.New("no QR code found")

// Decoder is a single deterministic QR decoding backend. Implementations
// must be safe for concurrent use and must not mutate the input image.
type Decoder interface {
	// ID identifies the backend in attempt logs and metrics.
	ID() string
	// TryDecode returns the decoded payload, ErrNoQR when the image holds
	// no recognizable code, or another error on decode failure.
	TryDecode(img image.Image) (string, error)
}

// Bank is an ordered, fixed set of decoders. Order is part of the contract:
// fastest and most tolerant backends run first.
type Bank struct {
	decoders []Decoder
}

// NewBank builds a bank over the given decoders in the given order.
func NewBank(decoders ...Decoder) *Bank {
	return &Bank{decoders: decoders}
}

// DefaultBank returns the standard three-backend bank: ZXing with the
// hybrid binarizer, ZXing with the global histogram binarizer in try-harder
// mode, and the quirc port.
func DefaultBank() *Bank {
	return NewBank(
		NewZXingHybrid(),
		NewZXingGlobalHist(),
		NewQuirc(),
	)
}

// Decoders exposes the ordered backends for per-attempt iteration.
func (b *Bank) Decoders() []Decoder {
	return b.decoders
}

// Len reports the number of backends in the bank.
func (b *Bank) Len() int { return len(b.decoders) }

// TryDecode runs the bank in order against one image and returns the first
// payload found along with the ID of the backend that produced it.
func (b *Bank) TryDecode(img image.Image) (payload, decoderID string, err error) {
	var lastErr error = ErrNoQR
	for _, d := range b.decoders {
		payload, err := SafeDecode(d, img)
		if err == nil {
			return payload, d.ID(), nil
		}
		if !errors.Is(err, ErrNoQR) {
			lastErr = err
		}
	}
	return "", "", lastErr
}

// SafeDecode invokes a decoder and converts panics from the underlying
// library into errors. Malformed finder patterns have crashed third-party
// decoders before; a panic in one backend must not take down the cascade.
func SafeDecode(d Decoder, img image.Image) (payload string, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = ""
			err = fmt.Errorf("decoder %s panicked: %v", d.ID(), r)
		}
	}()
	return d.TryDecode(img)
}
