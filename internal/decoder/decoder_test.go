package decoder_test

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresv-qr/lumqr/internal/decoder"
	"github.com/andresv-qr/lumqr/internal/testutil"
)

type stubDecoder struct {
	id      string
	payload string
	err     error
	calls   int
}

func (s *stubDecoder) ID() string { return s.id }

func (s *stubDecoder) TryDecode(image.Image) (string, error) {
	s.calls++
	return s.payload, s.err
}

type panicDecoder struct{}

func (panicDecoder) ID() string                            { return "panics" }
func (panicDecoder) TryDecode(image.Image) (string, error) { panic("corrupt finder pattern") }

func TestDefaultBankOrder(t *testing.T) {
	bank := decoder.DefaultBank()
	require.Equal(t, 3, bank.Len())

	ids := make([]string, 0, bank.Len())
	for _, d := range bank.Decoders() {
		ids = append(ids, d.ID())
	}
	assert.Equal(t, []string{"zxing_hybrid", "zxing_globalhist", "quirc"}, ids)
}

func TestBankShortCircuits(t *testing.T) {
	first := &stubDecoder{id: "first", payload: "hit"}
	second := &stubDecoder{id: "second", err: decoder.ErrNoQR}
	bank := decoder.NewBank(first, second)

	payload, id, err := bank.TryDecode(image.NewGray(image.Rect(0, 0, 10, 10)))
	require.NoError(t, err)
	assert.Equal(t, "hit", payload)
	assert.Equal(t, "first", id)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "bank must stop at the first success")
}

func TestBankExhausted(t *testing.T) {
	bank := decoder.NewBank(
		&stubDecoder{id: "a", err: decoder.ErrNoQR},
		&stubDecoder{id: "b", err: decoder.ErrNoQR},
	)
	_, _, err := bank.TryDecode(image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.True(t, errors.Is(err, decoder.ErrNoQR))
}

func TestSafeDecodeRecoversPanic(t *testing.T) {
	_, err := decoder.SafeDecode(panicDecoder{}, image.NewGray(image.Rect(0, 0, 4, 4)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestBankSurvivesPanickingBackend(t *testing.T) {
	good := &stubDecoder{id: "good", payload: "recovered"}
	bank := decoder.NewBank(panicDecoder{}, good)

	payload, id, err := bank.TryDecode(image.NewGray(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	assert.Equal(t, "recovered", payload)
	assert.Equal(t, "good", id)
}

func TestRealBackendsDecodeCleanQR(t *testing.T) {
	const payload = "https://factura.gov/verify?id=INV-2024-00431"
	qr := testutil.GenerateQR(t, payload, 320)

	for _, d := range decoder.DefaultBank().Decoders() {
		t.Run(d.ID(), func(t *testing.T) {
			got, err := d.TryDecode(qr)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestRealBackendsRejectBlank(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	_, _, err := decoder.DefaultBank().TryDecode(blank)
	assert.True(t, errors.Is(err, decoder.ErrNoQR))
}
