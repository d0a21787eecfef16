package cascade

import "time"

// Detection levels as reported in results and attempt logs.
const (
	LevelTraditional = "1"   // preprocessing + decoder bank
	LevelMLFallback  = "1.5" // ONNX region detector + region re-decode
	LevelNone        = "none"
)

// Failure reason codes. Exactly one is set on an unsuccessful result.
const (
	ReasonDecodeError      = "decode_error"      // input bytes are not a decodable image
	ReasonExhausted        = "exhausted"         // every level ran and found nothing
	ReasonLowConfidence    = "low_confidence"    // detector found regions below the gate
	ReasonModelUnavailable = "model_unavailable" // fallback wanted but model not loadable
	ReasonTimeout          = "timeout"           // wall-clock budget expired
)

// Attempt outcome codes.
const (
	OutcomeSuccess = "success"
	OutcomeNoQR    = "no_qr"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped" // budget expired before the attempt ran
)

// DetectionAttempt is one entry in the append-only attempt log: a single
// (strategy, decoder) pairing at level 1, or the fallback invocation at
// level 1.5.
type DetectionAttempt struct {
	Level      string  `json:"level"`
	Strategy   string  `json:"strategy,omitempty"`
	Decoder    string  `json:"decoder,omitempty"`
	Outcome    string  `json:"outcome"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// PipelineStats aggregates timing and shape information for one request.
// PreprocessingApplied lists strategy IDs in execution order and is
// deterministic for a given input and configuration.
type PipelineStats struct {
	TotalDurationMS      float64  `json:"total_duration_ms"`
	Level1DurationMS     float64  `json:"level1_duration_ms"`
	Level15DurationMS    float64  `json:"level1_5_duration_ms,omitempty"`
	PreprocessingApplied []string `json:"preprocessing_applied"`
	StrategiesTried      int      `json:"strategies_tried"`
	DecodersTried        int      `json:"decoders_tried"`
	RotationAttempts     int      `json:"rotation_attempts"`
	FallbackUsed         bool     `json:"fallback_used"`
	ImageWidth           int      `json:"image_width"`
	ImageHeight          int      `json:"image_height"`
	Downscaled           bool     `json:"downscaled,omitempty"`
	ModelTier            string   `json:"model_tier,omitempty"`
}

// Result is the terminal outcome of one detection request. Detect never
// returns a Go error; every failure mode is encoded here so callers have a
// single shape to consume.
type Result struct {
	RequestID  string             `json:"request_id"`
	Success    bool               `json:"success"`
	Payload    string             `json:"payload,omitempty"`
	Level      string             `json:"level"`
	Strategy   string             `json:"strategy,omitempty"`
	Decoder    string             `json:"decoder,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Attempts   []DetectionAttempt `json:"attempts"`
	Stats      PipelineStats      `json:"stats"`
}

func millis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
