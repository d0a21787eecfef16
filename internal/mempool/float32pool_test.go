package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFloat32Length(t *testing.T) {
	for _, n := range []int{1, 100, 1024, 1025, 3 * 640 * 640} {
		buf := GetFloat32(n)
		assert.Len(t, buf, n)
		assert.GreaterOrEqual(t, cap(buf), n)
		PutFloat32(buf)
	}
}

func TestSizeClassRounding(t *testing.T) {
	assert.Equal(t, 1024, sizeClass(1))
	assert.Equal(t, 1024, sizeClass(1024))
	assert.Equal(t, 2048, sizeClass(1025))
	assert.Equal(t, 4096, sizeClass(4000))
}

func TestPutFloat32NilSafe(t *testing.T) {
	PutFloat32(nil)
}

func TestReuseRoundTrip(t *testing.T) {
	a := GetFloat32(2048)
	for i := range a {
		a[i] = float32(i)
	}
	PutFloat32(a)

	// Reused buffers are not zeroed; callers must overwrite fully.
	b := GetFloat32(2048)
	assert.GreaterOrEqual(t, cap(b), 2048)
	PutFloat32(b)
}
