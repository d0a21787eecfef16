package detector

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.InputSize = 640
	cfg.RawThreshold = 0.20
	cfg.MaxCandidates = 15
	return cfg
}

// buildOutput lays out anchors as [1, attrs, anchors] with the given
// per-anchor attribute values.
func buildOutput(attrs int, anchorVals [][]float32) ([]float32, []int64) {
	anchors := len(anchorVals)
	data := make([]float32, attrs*anchors)
	for i, vals := range anchorVals {
		for a := range attrs {
			data[a*anchors+i] = vals[a]
		}
	}
	return data, []int64{1, int64(attrs), int64(anchors)}
}

func TestParseYOLOv8Layout(t *testing.T) {
	// One confident anchor at the image center, one below the raw threshold.
	vals := make([][]float32, 2)
	vals[0] = make([]float32, 37)
	vals[0][0], vals[0][1], vals[0][2], vals[0][3], vals[0][4] = 320, 320, 100, 100, 0.9
	vals[1] = make([]float32, 37)
	vals[1][0], vals[1][1], vals[1][2], vals[1][3], vals[1][4] = 100, 100, 50, 50, 0.1

	data, shape := buildOutput(37, vals)
	out, err := parseYOLOOutput(data, shape, testConfig(), 640, 640)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.InDelta(t, 0.9, out[0].Confidence, 1e-6)
	assert.Equal(t, image.Rect(270, 270, 370, 370), out[0].Box)
}

func TestParseYOLOv5LayoutMultipliesScores(t *testing.T) {
	vals := [][]float32{
		{320, 320, 80, 80, 0.8, 0.9},  // conf 0.72
		{100, 100, 40, 40, 0.5, 0.3},  // conf 0.15, below threshold
	}
	data, shape := buildOutput(6, vals)
	out, err := parseYOLOOutput(data, shape, testConfig(), 640, 640)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.72, out[0].Confidence, 1e-5)
}

func TestParseNormalizedCoordinates(t *testing.T) {
	vals := make([][]float32, 1)
	vals[0] = make([]float32, 37)
	// Normalized center at (0.5, 0.5), size 0.25 of the frame.
	vals[0][0], vals[0][1], vals[0][2], vals[0][3], vals[0][4] = 0.5, 0.5, 0.25, 0.25, 0.7

	data, shape := buildOutput(37, vals)
	out, err := parseYOLOOutput(data, shape, testConfig(), 1280, 1280)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, image.Rect(480, 480, 800, 800), out[0].Box)
}

func TestParseSortsAndTruncates(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCandidates = 3

	vals := make([][]float32, 6)
	confs := []float32{0.3, 0.9, 0.5, 0.7, 0.4, 0.6}
	for i, c := range confs {
		vals[i] = make([]float32, 37)
		vals[i][0], vals[i][1], vals[i][2], vals[i][3] = 320, 320, 60, 60
		vals[i][4] = c
	}

	data, shape := buildOutput(37, vals)
	out, err := parseYOLOOutput(data, shape, cfg, 640, 640)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.InDelta(t, 0.9, out[0].Confidence, 1e-6)
	assert.InDelta(t, 0.7, out[1].Confidence, 1e-6)
	assert.InDelta(t, 0.6, out[2].Confidence, 1e-6)
}

func TestParseScalesToOriginalSize(t *testing.T) {
	vals := make([][]float32, 1)
	vals[0] = make([]float32, 37)
	vals[0][0], vals[0][1], vals[0][2], vals[0][3], vals[0][4] = 320, 320, 320, 320, 0.8

	data, shape := buildOutput(37, vals)
	// Original image is half the model input size on each axis.
	out, err := parseYOLOOutput(data, shape, testConfig(), 320, 320)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, image.Rect(80, 80, 240, 240), out[0].Box)
}

func TestParseRejectsBadShapes(t *testing.T) {
	_, err := parseYOLOOutput(make([]float32, 10), []int64{1, 2, 5, 1}, testConfig(), 640, 640)
	assert.Error(t, err)

	_, err = parseYOLOOutput(make([]float32, 9), []int64{1, 2, 5}, testConfig(), 640, 640)
	assert.Error(t, err, "data length mismatch must be rejected")

	_, err = parseYOLOOutput(make([]float32, 20), []int64{1, 4, 5}, testConfig(), 640, 640)
	assert.Error(t, err, "fewer than 5 attributes cannot carry a confidence")
}

func TestPadBox(t *testing.T) {
	bounds := image.Rect(0, 0, 1000, 1000)

	// Small box: fractional padding under the floor clamps up to 20px.
	small := PadBox(image.Rect(500, 500, 540, 540), bounds)
	assert.Equal(t, image.Rect(480, 480, 560, 560), small)

	// Large box: fractional padding over the ceiling clamps down to 50px.
	large := PadBox(image.Rect(100, 100, 600, 600), bounds)
	assert.Equal(t, image.Rect(50, 50, 650, 650), large)

	// Padding never escapes the image bounds.
	edge := PadBox(image.Rect(0, 0, 40, 40), bounds)
	assert.Equal(t, image.Rect(0, 0, 60, 60), edge)
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, validateConfig(cfg))

	bad := cfg
	bad.ModelPath = ""
	assert.Error(t, validateConfig(bad))

	bad = cfg
	bad.MinConfidence = 1.5
	assert.Error(t, validateConfig(bad))

	bad = cfg
	bad.RawThreshold = -0.1
	assert.Error(t, validateConfig(bad))

	bad = cfg
	bad.MaxCandidates = 0
	assert.Error(t, validateConfig(bad))
}
