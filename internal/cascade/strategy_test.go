package cascade

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStrategiesOrder(t *testing.T) {
	ids := StrategyIDs(DefaultStrategies())
	assert.Equal(t, []string{
		"raw_gray",
		"equalized",
		"equalized_otsu",
		"otsu",
		"contrast_boost",
		"rotate_plus10",
		"rotate_minus10",
		"center_crop",
	}, ids)
}

func TestStrategyIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range StrategyIDs(DefaultStrategies()) {
		assert.False(t, seen[id], "duplicate strategy id %q", id)
		seen[id] = true
	}
}

func TestStrategiesDeterministic(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 4), B: 90, A: 255})
		}
	}

	for _, s := range DefaultStrategies() {
		t.Run(s.ID, func(t *testing.T) {
			a := s.Apply(src)
			b := s.Apply(src)
			require.Equal(t, a.Bounds(), b.Bounds())

			bounds := a.Bounds()
			for y := bounds.Min.Y; y < bounds.Max.Y; y += 7 {
				for x := bounds.Min.X; x < bounds.Max.X; x += 7 {
					ar, ag, ab, _ := a.At(x, y).RGBA()
					br, bg, bb, _ := b.At(x, y).RGBA()
					require.Equal(t, [3]uint32{ar, ag, ab}, [3]uint32{br, bg, bb},
						"strategy %s must be pure, differs at (%d,%d)", s.ID, x, y)
				}
			}
		})
	}
}

func TestStrategiesDoNotMutateInput(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range src.Pix {
		src.Pix[i] = uint8(i % 251)
	}
	orig := make([]uint8, len(src.Pix))
	copy(orig, src.Pix)

	for _, s := range DefaultStrategies() {
		_ = s.Apply(src)
		assert.Equal(t, orig, src.Pix, "strategy %s mutated its input", s.ID)
	}
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, CanTransition(StateInit, StatePreprocessing))
	assert.True(t, CanTransition(StatePreprocessing, StateLevel1Attempting))
	assert.True(t, CanTransition(StateLevel1Attempting, StateLevel1Exhausted))
	assert.True(t, CanTransition(StateLevel1Exhausted, StateLevel15Attempting))
	assert.True(t, CanTransition(StateLevel15Attempting, StateTerminal))

	// Every state may fail straight to terminal except terminal itself.
	for _, s := range []State{StateInit, StatePreprocessing, StateLevel1Attempting, StateLevel1Exhausted} {
		assert.True(t, CanTransition(s, StateTerminal), "state %s", s)
	}

	// No backward edges, no self loops, nothing out of terminal.
	assert.False(t, CanTransition(StateLevel1Exhausted, StateLevel1Attempting))
	assert.False(t, CanTransition(StateLevel15Attempting, StateLevel1Attempting))
	assert.False(t, CanTransition(StateTerminal, StateInit))
	assert.False(t, CanTransition(StateInit, StateInit))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "level1_5_attempting", StateLevel15Attempting.String())
	assert.Equal(t, "unknown", State(99).String())
}
