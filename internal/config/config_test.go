package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresv-qr/lumqr/internal/models"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Cascade.EnableFallback)
	assert.Equal(t, models.DefaultTier.String(), cfg.Detector.Tier)
	assert.InDelta(t, 0.5, cfg.Detector.MinConfidence, 1e-9)
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero budget", func(c *Config) { c.Cascade.BudgetMS = 0 }},
		{"tiny max dim", func(c *Config) { c.Cascade.MaxImageDim = 10 }},
		{"zero fallbacks", func(c *Config) { c.Cascade.MaxFallbacks = 0 }},
		{"bad tier", func(c *Config) { c.Detector.Tier = "gigantic" }},
		{"confidence over 1", func(c *Config) { c.Detector.MinConfidence = 1.2 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }},
	}
	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			cfg := DefaultConfig()
			m.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBuildCascadeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelsDir = "/opt/lumqr/models"
	cfg.Cascade.BudgetMS = 750
	cfg.Cascade.EnableFallback = false
	cfg.Detector.Tier = "small"
	cfg.Detector.MinConfidence = 0.65
	cfg.Detector.NumThreads = 4

	out, err := cfg.BuildCascadeConfig()
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, out.Budget)
	assert.False(t, out.EnableFallback)
	assert.Equal(t, models.TierSmall, out.Detector.Tier)
	assert.Equal(t, models.GetDetectorModelPath("/opt/lumqr/models", models.TierSmall), out.Detector.ModelPath)
	assert.InDelta(t, 0.65, out.Detector.MinConfidence, 1e-9)
	assert.Equal(t, 4, out.Detector.NumThreads)
}

func TestBuildCascadeConfigBadTier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detector.Tier = "not-a-tier"
	_, err := cfg.BuildCascadeConfig()
	assert.Error(t, err)
}
