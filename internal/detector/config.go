// Package detector implements the ML fallback stage: a YOLO-based QR
// region detector running on ONNX Runtime, used when the traditional
// decoder bank exhausts without a payload.
package detector

import (
	"errors"
	"fmt"
	"os"

	"github.com/andresv-qr/lumqr/internal/models"
	"github.com/andresv-qr/lumqr/internal/onnx"
)

// Config holds detector configuration.
type Config struct {
	ModelPath        string         // Path to the ONNX detection model
	Tier             models.Tier    // Model size tier the path was resolved from
	InputSize        int            // Square input resolution fed to the model
	MinConfidence    float64        // Acceptance gate for candidate regions
	RawThreshold     float32        // Parse-time floor before sorting and truncation
	MaxCandidates    int            // Candidates kept after sorting by confidence
	NumThreads       int            // Intra-op threads, 0 lets the runtime decide
	WarmupIterations int            // Dummy inferences run at load time
	GPU              onnx.GPUConfig // GPU acceleration settings
}

// DefaultConfig returns the default detector configuration for the medium
// tier. The raw threshold stays deliberately below the acceptance gate so
// near-miss regions still show up in diagnostics.
func DefaultConfig() Config {
	return Config{
		ModelPath:        models.GetDetectorModelPath("", models.DefaultTier),
		Tier:             models.DefaultTier,
		InputSize:        640,
		MinConfidence:    0.5,
		RawThreshold:     0.20,
		MaxCandidates:    15,
		NumThreads:       0,
		WarmupIterations: 2,
		GPU:              onnx.DefaultGPUConfig(),
	}
}

// UpdateModelPath re-resolves ModelPath for a models directory and tier.
func (c Config) UpdateModelPath(modelsDir string, tier models.Tier) Config {
	c.ModelPath = models.GetDetectorModelPath(modelsDir, tier)
	c.Tier = tier
	return c
}

func validateConfig(config Config) error {
	if config.ModelPath == "" {
		return errors.New("model path is required")
	}
	if config.InputSize <= 0 {
		return fmt.Errorf("input size must be positive, got %d", config.InputSize)
	}
	if config.MinConfidence < 0 || config.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be in [0,1], got %f", config.MinConfidence)
	}
	if config.RawThreshold < 0 || config.RawThreshold > 1 {
		return fmt.Errorf("raw threshold must be in [0,1], got %f", config.RawThreshold)
	}
	if config.MaxCandidates <= 0 {
		return fmt.Errorf("max candidates must be positive, got %d", config.MaxCandidates)
	}
	return nil
}

func validateModelFile(modelPath string) error {
	info, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrModelUnavailable, modelPath)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrModelUnavailable, modelPath)
	}
	return nil
}
