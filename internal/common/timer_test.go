package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerStop(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	d := timer.Stop()
	assert.Greater(t, d, time.Duration(0))
	assert.Equal(t, d, timer.Duration())
}

func TestNamedTimerString(t *testing.T) {
	timer := NewNamedTimer("level1")
	timer.Stop()
	assert.Equal(t, "level1", timer.Name())
	assert.Contains(t, timer.String(), "level1:")
}

func TestElapsedDoesNotStop(t *testing.T) {
	timer := NewTimer()
	first := timer.Elapsed()
	time.Sleep(time.Millisecond)
	assert.Greater(t, timer.Elapsed(), first)
}
