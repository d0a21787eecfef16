package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/andresv-qr/lumqr/internal/common"
	"github.com/andresv-qr/lumqr/internal/decoder"
	"github.com/andresv-qr/lumqr/internal/imgproc"
	"github.com/yalue/onnxruntime_go"
)

// Detector performs QR region detection using ONNX Runtime.
type Detector struct {
	config     Config
	session    *onnxruntime_go.DynamicAdvancedSession
	inputInfo  onnxruntime_go.InputOutputInfo
	outputInfo onnxruntime_go.InputOutputInfo
	mu         sync.RWMutex
}

// NewDetector creates a new QR region detector with the given configuration.
func NewDetector(config Config) (*Detector, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if err := validateModelFile(config.ModelPath); err != nil {
		return nil, err
	}

	slog.Debug("Initializing QR detector",
		"model_path", config.ModelPath,
		"tier", config.Tier.String(),
		"input_size", config.InputSize,
		"gpu_enabled", config.GPU.UseGPU)

	if err := setupONNXEnvironment(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	inputInfo, outputInfo, err := validateModelInfo(config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	session, err := createSession(config.ModelPath, inputInfo, outputInfo, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	d := &Detector{
		config:     config,
		session:    session,
		inputInfo:  inputInfo,
		outputInfo: outputInfo,
	}

	if config.WarmupIterations > 0 {
		if err := d.Warmup(config.WarmupIterations); err != nil {
			slog.Warn("Detector warmup failed", "error", err)
		}
	}

	slog.Debug("QR detector initialized successfully")
	return d, nil
}

// Close releases resources used by the detector.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		if err := d.session.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to destroy detector session: %v\n", err)
		}
		d.session = nil
	}

	// The runtime environment stays up; it is shared by any other session
	// in the process and torn down only at shutdown.
	return nil
}

// GetConfig returns a copy of the detector's configuration.
func (d *Detector) GetConfig() Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// Detect runs one inference and returns candidate regions in original-image
// coordinates, sorted by descending confidence and truncated to the
// configured maximum. Candidates below the raw parse threshold are dropped
// here; the acceptance gate is applied later so diagnostics can still see
// near misses.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]Candidate, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := common.NewNamedTimer("detector_inference")

	tensor, err := imgproc.NormalizeRGBNCHW(img, d.config.InputSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build input tensor: %w", err)
	}
	defer imgproc.ReleaseTensor(&tensor)

	d.mu.RLock()
	session := d.session
	d.mu.RUnlock()
	if session == nil {
		return nil, fmt.Errorf("%w: session closed", ErrModelUnavailable)
	}

	inputTensor, err := onnxruntime_go.NewTensor(onnxruntime_go.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer func() {
		if err := inputTensor.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying input tensor: %v\n", err)
		}
	}()

	outputs := []onnxruntime_go.Value{nil}
	if err := session.Run([]onnxruntime_go.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	outputTensor := outputs[0]
	defer func() {
		if err := outputTensor.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying output tensor: %v\n", err)
		}
	}()

	floatTensor, ok := outputTensor.(*onnxruntime_go.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("expected float32 tensor, got %T", outputTensor)
	}

	b := img.Bounds()
	candidates, err := parseYOLOOutput(floatTensor.GetData(), outputTensor.GetShape(),
		d.config, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	slog.Debug("Detector inference complete",
		"candidates", len(candidates),
		"duration_ms", timer.Stop().Milliseconds())
	return candidates, nil
}

// DetectAndDecode runs detection, gates candidates by the acceptance
// confidence, and attempts traditional decoding on each accepted region in
// confidence order. It returns the first decoded payload.
func (d *Detector) DetectAndDecode(ctx context.Context, img image.Image, bank *decoder.Bank) (*Detection, error) {
	candidates, err := d.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	accepted := candidates[:0:0]
	for _, c := range candidates {
		if c.Confidence >= d.config.MinConfidence {
			accepted = append(accepted, c)
		}
	}
	if len(accepted) == 0 {
		if len(candidates) > 0 {
			return nil, fmt.Errorf("%w: best %.3f < %.3f",
				ErrLowConfidence, candidates[0].Confidence, d.config.MinConfidence)
		}
		return nil, decoder.ErrNoQR
	}

	totalRotations := 0
	for _, c := range accepted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		region := ExtractRegion(img, c.Box)
		payload, decoderID, rotations, err := DecodeRegion(region, bank)
		totalRotations += rotations
		if err != nil {
			continue
		}
		return &Detection{
			Payload:        payload,
			Confidence:     c.Confidence,
			DecoderID:      decoderID,
			Box:            c.Box,
			RotationsTried: totalRotations,
		}, nil
	}
	return nil, decoder.ErrNoQR
}

func sortByConfidence(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Confidence > cs[j].Confidence
	})
}
