// Package testutil generates QR test fixtures in-process so tests need no
// binary assets checked into the repository.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"
)

// GenerateQR renders a QR code carrying payload into a size x size image.
func GenerateQR(t *testing.T, payload string, size int) image.Image {
	t.Helper()

	hints := map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_ERROR_CORRECTION: decoder.ErrorCorrectionLevel_M,
		gozxing.EncodeHintType_MARGIN:           4,
	}
	matrix, err := qrcode.NewQRCodeWriter().Encode(payload,
		gozxing.BarcodeFormat_QR_CODE, size, size, hints)
	if err != nil {
		t.Fatalf("failed to encode QR fixture: %v", err)
	}

	w := matrix.GetWidth()
	h := matrix.GetHeight()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// OnCanvas places a QR image onto a larger white canvas at the given
// offset, simulating a code embedded in a document photo.
func OnCanvas(qr image.Image, canvasW, canvasH, offX, offY int) image.Image {
	canvas := image.NewGray(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	b := qr.Bounds()
	dst := image.Rect(offX, offY, offX+b.Dx(), offY+b.Dy())
	draw.Draw(canvas, dst, qr, b.Min, draw.Src)
	return canvas
}

// Rotated returns the image rotated by the given angle on white background.
func Rotated(img image.Image, angle float64) image.Image {
	return imaging.Rotate(img, angle, color.White)
}

// WithNoise adds deterministic salt-and-pepper noise at the given density.
func WithNoise(img image.Image, density float64, seed int64) image.Image {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	rng := rand.New(rand.NewSource(seed))
	n := int(float64(b.Dx()*b.Dy()) * density)
	for range n {
		x := rng.Intn(b.Dx())
		y := rng.Intn(b.Dy())
		if rng.Intn(2) == 0 {
			out.SetGray(x, y, color.Gray{Y: 0})
		} else {
			out.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return out
}

// PNGBytes encodes an image as PNG.
func PNGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG fixture: %v", err)
	}
	return buf.Bytes()
}

// JPEGBytes encodes an image as JPEG at the given quality.
func JPEGBytes(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("failed to encode JPEG fixture: %v", err)
	}
	return buf.Bytes()
}
