package imgproc

import (
	"image"

	"github.com/andresv-qr/lumqr/internal/mempool"
	"github.com/andresv-qr/lumqr/internal/onnx"
)

// NormalizeRGBNCHW resizes an image to size x size and converts it to a
// planar float32 NCHW tensor with values scaled to [0, 1]. The backing
// buffer comes from the float32 pool; callers release it with ReleaseTensor
// after inference.
func NormalizeRGBNCHW(img image.Image, size int) (onnx.Tensor, error) {
	resized := ResizeExact(img, size, size)

	n := 3 * size * size
	data := mempool.GetFloat32(n)
	data = data[:n]

	plane := size * size
	b := resized.Bounds()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, bl, _ := resized.At(b.Min.X+x, b.Min.Y+y).RGBA()
			idx := y*size + x
			data[idx] = float32(r>>8) / 255.0
			data[plane+idx] = float32(g>>8) / 255.0
			data[2*plane+idx] = float32(bl>>8) / 255.0
		}
	}

	return onnx.NewImageTensor(data, 3, size, size)
}

// ReleaseTensor returns a tensor's backing buffer to the pool. The tensor
// must not be used afterwards.
func ReleaseTensor(t *onnx.Tensor) {
	if t == nil || t.Data == nil {
		return
	}
	mempool.PutFloat32(t.Data)
	t.Data = nil
}
