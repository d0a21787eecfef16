// Package config defines the application configuration structures and the
// loader that populates them from files, environment variables and flags.
package config

import (
	"fmt"
	"time"

	"github.com/andresv-qr/lumqr/internal/cascade"
	"github.com/andresv-qr/lumqr/internal/detector"
	"github.com/andresv-qr/lumqr/internal/models"
)

// Config is the root configuration structure.
type Config struct {
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`

	Cascade  CascadeConfig  `mapstructure:"cascade" yaml:"cascade" json:"cascade"`
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector" json:"detector"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
}

// CascadeConfig configures the detection cascade.
type CascadeConfig struct {
	BudgetMS       int  `mapstructure:"budget_ms" yaml:"budget_ms" json:"budget_ms"`
	MaxImageDim    int  `mapstructure:"max_image_dim" yaml:"max_image_dim" json:"max_image_dim"`
	EnableFallback bool `mapstructure:"enable_fallback" yaml:"enable_fallback" json:"enable_fallback"`
	MaxFallbacks   int  `mapstructure:"max_fallbacks" yaml:"max_fallbacks" json:"max_fallbacks"`
}

// DetectorConfig configures the ONNX fallback detector.
type DetectorConfig struct {
	Tier             string  `mapstructure:"tier" yaml:"tier" json:"tier"`
	MinConfidence    float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	NumThreads       int     `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
	WarmupIterations int     `mapstructure:"warmup_iterations" yaml:"warmup_iterations" json:"warmup_iterations"`
	UseGPU           bool    `mapstructure:"use_gpu" yaml:"use_gpu" json:"use_gpu"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host              string  `mapstructure:"host" yaml:"host" json:"host"`
	Port              int     `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB       int     `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	RateLimitRPS      float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst    int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst" json:"rate_limit_burst"`
	ShutdownTimeoutMS int     `mapstructure:"shutdown_timeout_ms" yaml:"shutdown_timeout_ms" json:"shutdown_timeout_ms"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		ModelsDir: "",
		LogLevel:  "info",
		LogFormat: "json",
		Cascade: CascadeConfig{
			BudgetMS:       int(cascade.DefaultBudget / time.Millisecond),
			MaxImageDim:    cascade.DefaultMaxImageDim,
			EnableFallback: true,
			MaxFallbacks:   cascade.DefaultMaxFallbacks,
		},
		Detector: DetectorConfig{
			Tier:             models.DefaultTier.String(),
			MinConfidence:    0.5,
			NumThreads:       0,
			WarmupIterations: 2,
			UseGPU:           false,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			MaxUploadMB:       10,
			RateLimitRPS:      20,
			RateLimitBurst:    40,
			ShutdownTimeoutMS: 5000,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Cascade.BudgetMS <= 0 {
		return fmt.Errorf("cascade.budget_ms must be positive, got %d", c.Cascade.BudgetMS)
	}
	if c.Cascade.MaxImageDim < 32 {
		return fmt.Errorf("cascade.max_image_dim must be at least 32, got %d", c.Cascade.MaxImageDim)
	}
	if c.Cascade.MaxFallbacks <= 0 {
		return fmt.Errorf("cascade.max_fallbacks must be positive, got %d", c.Cascade.MaxFallbacks)
	}
	if _, err := models.ParseTier(c.Detector.Tier); err != nil {
		return fmt.Errorf("detector.tier: %w", err)
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return fmt.Errorf("detector.min_confidence must be in [0,1], got %f", c.Detector.MinConfidence)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

// BuildCascadeConfig materializes the cascade configuration, resolving the
// model path from the models directory and tier.
func (c *Config) BuildCascadeConfig() (cascade.Config, error) {
	tier, err := models.ParseTier(c.Detector.Tier)
	if err != nil {
		return cascade.Config{}, err
	}

	det := detector.DefaultConfig().UpdateModelPath(c.ModelsDir, tier)
	det.MinConfidence = c.Detector.MinConfidence
	det.NumThreads = c.Detector.NumThreads
	det.WarmupIterations = c.Detector.WarmupIterations
	det.GPU.UseGPU = c.Detector.UseGPU

	return cascade.Config{
		Budget:         time.Duration(c.Cascade.BudgetMS) * time.Millisecond,
		MaxImageDim:    c.Cascade.MaxImageDim,
		EnableFallback: c.Cascade.EnableFallback,
		MaxFallbacks:   c.Cascade.MaxFallbacks,
		Detector:       det,
	}, nil
}
