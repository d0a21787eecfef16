package imgproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRGBNCHW(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{R: 255, G: 0, B: 127, A: 255})
		}
	}

	tensor, err := NormalizeRGBNCHW(src, 4)
	require.NoError(t, err)
	defer ReleaseTensor(&tensor)

	assert.Equal(t, []int64{1, 3, 4, 4}, tensor.Shape)
	require.Len(t, tensor.Data, 3*4*4)

	// Red plane saturated, green plane empty.
	assert.InDelta(t, 1.0, tensor.Data[0], 0.01)
	assert.InDelta(t, 0.0, tensor.Data[16], 0.01)
	assert.InDelta(t, 0.5, tensor.Data[32], 0.01)
}

func TestNormalizeRGBNCHWResizes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	tensor, err := NormalizeRGBNCHW(src, 32)
	require.NoError(t, err)
	defer ReleaseTensor(&tensor)

	assert.Equal(t, []int64{1, 3, 32, 32}, tensor.Shape)
	assert.Len(t, tensor.Data, 3*32*32)
}

func TestReleaseTensorNilSafe(t *testing.T) {
	ReleaseTensor(nil)

	tensor, err := NormalizeRGBNCHW(image.NewRGBA(image.Rect(0, 0, 8, 8)), 8)
	require.NoError(t, err)
	ReleaseTensor(&tensor)
	assert.Nil(t, tensor.Data)
	// Double release is a no-op.
	ReleaseTensor(&tensor)
}

func TestCenterCrop(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	out := CenterCrop(src, 0.5)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())

	// Out-of-range fractions return the input untouched.
	assert.Equal(t, 100, CenterCrop(src, 0).Bounds().Dx())
	assert.Equal(t, 100, CenterCrop(src, 1.5).Bounds().Dx())
}

func TestUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	out := Upscale(src, 2)
	assert.Equal(t, 80, out.Bounds().Dx())
	assert.Equal(t, 60, out.Bounds().Dy())

	assert.Equal(t, 40, Upscale(src, 1).Bounds().Dx())
}

func TestCropRectClamped(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))
	out := CropRect(src, image.Rect(40, 40, 100, 100))
	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, 10, out.Bounds().Dy())

	// Fully outside bounds yields a minimal placeholder, never a panic.
	out = CropRect(src, image.Rect(200, 200, 300, 300))
	assert.False(t, out.Bounds().Empty())
}
