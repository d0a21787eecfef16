package decoder

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// zxingDecoder wraps the gozxing QR reader with a configurable binarizer.
// Two instances with different binarizers behave as independent backends:
// the hybrid binarizer handles uneven lighting, while the global histogram
// binarizer with try-harder recovers codes the hybrid pass misjudges.
type zxingDecoder struct {
	id        string
	binarizer func(gozxing.LuminanceSource) gozxing.Binarizer
	hints     map[gozxing.DecodeHintType]interface{}
}

// NewZXingHybrid returns the ZXing backend with the adaptive hybrid
// binarizer, the default for camera captures.
func NewZXingHybrid() Decoder {
	return &zxingDecoder{
		id: "zxing_hybrid",
		binarizer: func(src gozxing.LuminanceSource) gozxing.Binarizer {
			return gozxing.NewHybridBinarizer(src)
		},
	}
}

// NewZXingGlobalHist returns the ZXing backend with the global histogram
// binarizer and TRY_HARDER enabled. Slower but picks up low-contrast codes
// the hybrid binarizer rejects.
func NewZXingGlobalHist() Decoder {
	return &zxingDecoder{
		id: "zxing_globalhist",
		binarizer: func(src gozxing.LuminanceSource) gozxing.Binarizer {
			return gozxing.NewGlobalHistgramBinarizer(src)
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (z *zxingDecoder) ID() string { return z.id }

func (z *zxingDecoder) TryDecode(img image.Image) (string, error) {
	src := gozxing.NewLuminanceSourceFromImage(img)
	bmp, err := gozxing.NewBinaryBitmap(z.binarizer(src))
	if err != nil {
		return "", ErrNoQR
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, z.hints)
	if err != nil {
		// gozxing reports both "nothing found" and checksum failures as
		// NotFound/Checksum/Format exceptions; all mean no usable payload.
		return "", ErrNoQR
	}
	text := result.GetText()
	if text == "" {
		return "", ErrNoQR
	}
	return text, nil
}
