package cascade

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andresv-qr/lumqr/internal/common"
	"github.com/andresv-qr/lumqr/internal/decoder"
	"github.com/andresv-qr/lumqr/internal/detector"
	"github.com/andresv-qr/lumqr/internal/imgproc"
)

// Defaults for cascade configuration.
const (
	DefaultBudget       = 2 * time.Second
	DefaultMaxImageDim  = 2048
	DefaultMaxFallbacks = 2
)

// Fallback is the level 1.5 stage. The production implementation wraps the
// shared ONNX detector; tests substitute deterministic stubs.
type Fallback interface {
	DetectAndDecode(ctx context.Context, img image.Image, bank *decoder.Bank) (*detector.Detection, error)
}

// Config holds cascade configuration.
type Config struct {
	Budget         time.Duration // wall-clock budget per request
	MaxImageDim    int           // longest side after normalization
	EnableFallback bool
	MaxFallbacks   int // concurrent inferences allowed through the gate
	Detector       detector.Config
}

// DefaultConfig returns the default cascade configuration with the ML
// fallback enabled.
func DefaultConfig() Config {
	return Config{
		Budget:         DefaultBudget,
		MaxImageDim:    DefaultMaxImageDim,
		EnableFallback: true,
		MaxFallbacks:   DefaultMaxFallbacks,
		Detector:       detector.DefaultConfig(),
	}
}

// Cascade executes detection requests. It is safe for concurrent use.
type Cascade struct {
	config     Config
	bank       *decoder.Bank
	strategies []Strategy
	fallback   Fallback
	gate       chan struct{}
}

// sharedDetectorFallback adapts the process-wide ONNX detector to the
// Fallback interface. The detector loads lazily on first use so CLI runs
// that resolve at level 1 never pay the model load.
type sharedDetectorFallback struct {
	config detector.Config
}

func (f *sharedDetectorFallback) DetectAndDecode(ctx context.Context, img image.Image,
	bank *decoder.Bank,
) (*detector.Detection, error) {
	d, err := detector.Shared(f.config)
	if err != nil {
		return nil, err
	}
	return d.DetectAndDecode(ctx, img, bank)
}

// Builder assembles a Cascade using a fluent interface.
type Builder struct {
	config     Config
	bank       *decoder.Bank
	strategies []Strategy
	fallback   Fallback
}

// NewBuilder creates a Builder with default configuration, the default
// decoder bank, the default strategy sequence, and the shared ONNX detector
// as fallback.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithBudget sets the per-request wall-clock budget.
func (b *Builder) WithBudget(d time.Duration) *Builder {
	b.config.Budget = d
	return b
}

// WithMaxImageDim sets the normalization size clamp.
func (b *Builder) WithMaxImageDim(n int) *Builder {
	b.config.MaxImageDim = n
	return b
}

// WithBank replaces the decoder bank.
func (b *Builder) WithBank(bank *decoder.Bank) *Builder {
	b.bank = bank
	return b
}

// WithStrategies replaces the preprocessing sequence.
func (b *Builder) WithStrategies(strategies []Strategy) *Builder {
	b.strategies = strategies
	return b
}

// WithFallback replaces the level 1.5 implementation.
func (b *Builder) WithFallback(f Fallback) *Builder {
	b.fallback = f
	b.config.EnableFallback = f != nil
	return b
}

// WithoutFallback disables level 1.5 entirely.
func (b *Builder) WithoutFallback() *Builder {
	b.fallback = nil
	b.config.EnableFallback = false
	return b
}

// Build assembles the cascade.
func (b *Builder) Build() (*Cascade, error) {
	cfg := b.config
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.MaxImageDim <= 0 {
		cfg.MaxImageDim = DefaultMaxImageDim
	}
	if cfg.MaxFallbacks <= 0 {
		cfg.MaxFallbacks = DefaultMaxFallbacks
	}

	bank := b.bank
	if bank == nil {
		bank = decoder.DefaultBank()
	}
	if bank.Len() == 0 {
		return nil, errors.New("decoder bank is empty")
	}

	strategies := b.strategies
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	if len(strategies) == 0 {
		return nil, errors.New("strategy sequence is empty")
	}

	fallback := b.fallback
	if fallback == nil && cfg.EnableFallback {
		fallback = &sharedDetectorFallback{config: cfg.Detector}
	}

	return &Cascade{
		config:     cfg,
		bank:       bank,
		strategies: strategies,
		fallback:   fallback,
		gate:       make(chan struct{}, cfg.MaxFallbacks),
	}, nil
}

// Config returns a copy of the cascade's configuration.
func (c *Cascade) Config() Config { return c.config }

// run tracks the state machine and attempt log of a single request.
type run struct {
	id       string
	state    State
	start    time.Time
	deadline time.Time
	result   *Result
}

func (r *run) transition(to State) {
	if !CanTransition(r.state, to) {
		slog.Error("Invalid cascade transition",
			"request_id", r.id, "from", r.state.String(), "to", to.String())
	}
	r.state = to
}

func (r *run) overBudget() bool {
	return !time.Now().Before(r.deadline)
}

func (r *run) record(a DetectionAttempt) {
	r.result.Attempts = append(r.result.Attempts, a)
}

// Detect runs the full cascade on raw uploaded bytes. It never returns a Go
// error: every outcome, including malformed input and budget expiry, is
// encoded in the Result.
func (c *Cascade) Detect(ctx context.Context, data []byte, declaredMIME string) *Result {
	r := &run{
		id:    uuid.NewString(),
		state: StateInit,
		start: time.Now(),
	}
	r.deadline = r.start.Add(c.config.Budget)
	r.result = &Result{
		RequestID: r.id,
		Level:     LevelNone,
		Attempts:  []DetectionAttempt{},
	}
	r.result.Stats.PreprocessingApplied = []string{}

	ctx, cancel := context.WithDeadline(ctx, r.deadline)
	defer cancel()

	img, meta, err := imgproc.DecodeImage(data, declaredMIME)
	if err != nil {
		slog.Warn("Rejecting undecodable image",
			"request_id", r.id, "declared_mime", declaredMIME, "size_bytes", len(data))
		return c.finish(r, StateTerminal, failure(r.result, ReasonDecodeError))
	}

	img, downscaled := imgproc.ClampSize(img, c.config.MaxImageDim)
	r.result.Stats.ImageWidth = meta.Width
	r.result.Stats.ImageHeight = meta.Height
	r.result.Stats.Downscaled = downscaled

	r.transition(StatePreprocessing)
	r.transition(StateLevel1Attempting)

	if done := c.runLevel1(r, img); done {
		return c.finish(r, StateTerminal, r.result)
	}

	r.transition(StateLevel1Exhausted)

	if c.fallback == nil || !c.config.EnableFallback {
		return c.finish(r, StateTerminal, failure(r.result, ReasonExhausted))
	}
	if r.overBudget() {
		return c.finish(r, StateTerminal, failure(r.result, ReasonTimeout))
	}

	r.transition(StateLevel15Attempting)
	r.result.Stats.FallbackUsed = true
	c.runFallback(ctx, r, img)
	return c.finish(r, StateTerminal, r.result)
}

// runLevel1 iterates strategies and the decoder bank, short-circuiting on
// the first payload. It returns true when the run reached a terminal
// outcome (success or budget expiry).
func (c *Cascade) runLevel1(r *run, img image.Image) bool {
	timer := common.NewNamedTimer("level1")
	defer func() {
		r.result.Stats.Level1DurationMS = millis(timer.Stop())
	}()

	for _, s := range c.strategies {
		if r.overBudget() {
			failure(r.result, ReasonTimeout)
			return true
		}

		variant := s.Apply(img)
		r.result.Stats.StrategiesTried++
		r.result.Stats.PreprocessingApplied = append(r.result.Stats.PreprocessingApplied, s.ID)
		if strings.HasPrefix(s.ID, "rotate") {
			r.result.Stats.RotationAttempts++
		}

		for _, d := range c.bank.Decoders() {
			if r.overBudget() {
				r.record(DetectionAttempt{
					Level: LevelTraditional, Strategy: s.ID, Decoder: d.ID(),
					Outcome: OutcomeSkipped,
				})
				failure(r.result, ReasonTimeout)
				return true
			}

			t0 := time.Now()
			payload, err := decoder.SafeDecode(d, variant)
			dur := millis(time.Since(t0))

			switch {
			case err == nil:
				r.record(DetectionAttempt{
					Level: LevelTraditional, Strategy: s.ID, Decoder: d.ID(),
					Outcome: OutcomeSuccess, DurationMS: dur,
				})
				r.result.Success = true
				r.result.Payload = payload
				r.result.Level = LevelTraditional
				r.result.Strategy = s.ID
				r.result.Decoder = d.ID()
				return true
			case errors.Is(err, decoder.ErrNoQR):
				r.record(DetectionAttempt{
					Level: LevelTraditional, Strategy: s.ID, Decoder: d.ID(),
					Outcome: OutcomeNoQR, DurationMS: dur,
				})
			default:
				r.record(DetectionAttempt{
					Level: LevelTraditional, Strategy: s.ID, Decoder: d.ID(),
					Outcome: OutcomeError, Error: err.Error(), DurationMS: dur,
				})
			}
		}
	}
	return false
}

// runFallback runs level 1.5 behind the inference gate and maps its
// outcome onto the result.
func (c *Cascade) runFallback(ctx context.Context, r *run, img image.Image) {
	select {
	case c.gate <- struct{}{}:
		defer func() { <-c.gate }()
	case <-ctx.Done():
		r.record(DetectionAttempt{Level: LevelMLFallback, Outcome: OutcomeSkipped})
		failure(r.result, ReasonTimeout)
		return
	}

	inferenceInFlight.Inc()
	defer inferenceInFlight.Dec()

	timer := common.NewNamedTimer("level1_5")
	det, err := c.fallback.DetectAndDecode(ctx, img, c.bank)
	dur := timer.Stop()
	r.result.Stats.Level15DurationMS = millis(dur)
	fallbackDuration.Observe(dur.Seconds())

	if err == nil && det != nil {
		r.record(DetectionAttempt{
			Level: LevelMLFallback, Decoder: det.DecoderID,
			Outcome: OutcomeSuccess, DurationMS: millis(dur),
		})
		r.result.Stats.RotationAttempts += det.RotationsTried
		r.result.Success = true
		r.result.Payload = det.Payload
		r.result.Level = LevelMLFallback
		r.result.Decoder = det.DecoderID
		r.result.Confidence = det.Confidence
		return
	}

	attempt := DetectionAttempt{Level: LevelMLFallback, DurationMS: millis(dur)}
	switch {
	case errors.Is(err, detector.ErrModelUnavailable):
		attempt.Outcome = OutcomeError
		attempt.Error = err.Error()
		failure(r.result, ReasonModelUnavailable)
	case errors.Is(err, detector.ErrLowConfidence):
		attempt.Outcome = OutcomeNoQR
		attempt.Error = err.Error()
		failure(r.result, ReasonLowConfidence)
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil:
		attempt.Outcome = OutcomeSkipped
		failure(r.result, ReasonTimeout)
	case errors.Is(err, decoder.ErrNoQR):
		attempt.Outcome = OutcomeNoQR
		failure(r.result, ReasonExhausted)
	default:
		attempt.Outcome = OutcomeError
		if err != nil {
			attempt.Error = err.Error()
		}
		failure(r.result, ReasonExhausted)
	}
	r.record(attempt)
}

// finish transitions to terminal, seals the stats, records metrics and logs
// the outcome.
func (c *Cascade) finish(r *run, to State, res *Result) *Result {
	if r.state != StateTerminal {
		r.transition(to)
	}
	res.Stats.TotalDurationMS = millis(time.Since(r.start))
	res.Stats.DecodersTried = len(res.Attempts)
	res.Stats.ModelTier = c.config.Detector.Tier.String()

	recordResult(res)

	attrs := []any{
		"request_id", res.RequestID,
		"success", res.Success,
		"level", res.Level,
		"attempts", len(res.Attempts),
		"duration_ms", res.Stats.TotalDurationMS,
	}
	if res.Success {
		slog.Info("Detection resolved", attrs...)
	} else {
		slog.Info("Detection failed", append(attrs, "reason", res.Reason)...)
	}
	return res
}

// failure marks a result unsuccessful with the given reason code. The first
// reason wins; later calls never overwrite it.
func failure(res *Result, reason string) *Result {
	res.Success = false
	if res.Reason == "" {
		res.Reason = reason
	}
	res.Level = LevelNone
	return res
}
