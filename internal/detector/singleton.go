package detector

import (
	"log/slog"
	"sync"
)

// The loaded model is a process-wide singleton keyed by model path. Loading
// takes hundreds of milliseconds and tens of megabytes; concurrent requests
// must share one session rather than load their own.
var (
	sharedMu  sync.Mutex
	sharedDet *Detector
	sharedKey string
	sharedErr error
)

// Shared returns the process-wide detector for the given configuration,
// loading it on first use. A load failure is cached so every later caller
// fails fast with the same ErrModelUnavailable instead of re-stating the
// missing file per request.
func Shared(config Config) (*Detector, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedKey == config.ModelPath {
		return sharedDet, sharedErr
	}

	// Tier or path changed under us; retire the previous session.
	if sharedDet != nil {
		if err := sharedDet.Close(); err != nil {
			slog.Warn("Failed to close previous detector", "error", err)
		}
	}

	sharedKey = config.ModelPath
	sharedDet, sharedErr = NewDetector(config)
	return sharedDet, sharedErr
}

// ResetShared closes and forgets the shared detector. Intended for shutdown
// and tests.
func ResetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedDet != nil {
		if err := sharedDet.Close(); err != nil {
			slog.Warn("Failed to close shared detector", "error", err)
		}
	}
	sharedDet = nil
	sharedKey = ""
	sharedErr = nil
}
