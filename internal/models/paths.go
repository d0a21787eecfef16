package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Detector model filenames, one per size tier. These are QReader YOLOv8
// detector exports with a fixed 640x640 input.
const (
	DetectorNano   = "qr_detector_nano.onnx"
	DetectorSmall  = "qr_detector_small.onnx"
	DetectorMedium = "qr_detector_medium.onnx"
	DetectorLarge  = "qr_detector_large.onnx"
)

// Default models directory.
const DefaultModelsDir = "models"

// Environment variable for models directory override.
const EnvModelsDir = "LUMQR_MODELS_DIR"

// Tier selects the ML fallback model size. Chosen once at deployment time;
// the cascade itself only ever sees "the configured model".
type Tier string

const (
	TierNano   Tier = "nano"
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

// DefaultTier is the recommended deployment default.
const DefaultTier = TierMedium

// ParseTier parses a tier name, accepting the short aliases used by
// the upstream QReader exports (n/s/m/l).
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nano", "n":
		return TierNano, nil
	case "small", "s":
		return TierSmall, nil
	case "medium", "m", "":
		return TierMedium, nil
	case "large", "l":
		return TierLarge, nil
	default:
		return "", fmt.Errorf("unknown model tier: %q (want nano, small, medium or large)", s)
	}
}

// Filename returns the ONNX filename for the tier.
func (t Tier) Filename() string {
	switch t {
	case TierNano:
		return DetectorNano
	case TierSmall:
		return DetectorSmall
	case TierLarge:
		return DetectorLarge
	default:
		return DetectorMedium
	}
}

// ApproxMemoryMB returns the approximate resident size of the tier's model.
func (t Tier) ApproxMemoryMB() int {
	switch t {
	case TierNano:
		return 5
	case TierSmall:
		return 12
	case TierLarge:
		return 45
	default:
		return 25
	}
}

// ExpectedLatencyMS returns the rough single-inference CPU latency envelope.
func (t Tier) ExpectedLatencyMS() int {
	switch t {
	case TierNano:
		return 50
	case TierSmall:
		return 100
	case TierLarge:
		return 300
	default:
		return 150
	}
}

func (t Tier) String() string { return string(t) }

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New("could not find project root (go.mod not found)")
}

// GetModelsDir returns the models directory path.
// Priority: 1. explicit modelsDir parameter, 2. environment variable,
// 3. project root + default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}

	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}

	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultModelsDir)
	}

	return DefaultModelsDir
}

// GetDetectorModelPath resolves the full path of the detector model for
// the given tier.
func GetDetectorModelPath(modelsDir string, tier Tier) string {
	return filepath.Join(GetModelsDir(modelsDir), tier.Filename())
}

// ModelInfo describes one available detector model on disk.
type ModelInfo struct {
	Tier      Tier   `json:"tier"`
	Path      string `json:"path"`
	Present   bool   `json:"present"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	MemoryMB  int    `json:"approx_memory_mb"`
	LatencyMS int    `json:"expected_latency_ms"`
}

// ListDetectorModels reports the state of every tier under the models dir.
func ListDetectorModels(modelsDir string) []ModelInfo {
	tiers := []Tier{TierNano, TierSmall, TierMedium, TierLarge}
	infos := make([]ModelInfo, 0, len(tiers))
	for _, t := range tiers {
		path := GetDetectorModelPath(modelsDir, t)
		info := ModelInfo{
			Tier:      t,
			Path:      path,
			MemoryMB:  t.ApproxMemoryMB(),
			LatencyMS: t.ExpectedLatencyMS(),
		}
		if fi, err := os.Stat(path); err == nil {
			info.Present = true
			info.SizeBytes = fi.Size()
		}
		infos = append(infos, info)
	}
	return infos
}
