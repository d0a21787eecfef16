package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumqr.yaml")
	content := []byte("log_level: debug\ncascade:\n  budget_ms: 900\ndetector:\n  tier: small\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 900, cfg.Cascade.BudgetMS)
	assert.Equal(t, "small", cfg.Detector.Tier)
	// Unset keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := NewLoader().LoadWithFile("/nonexistent/lumqr.yaml")
	assert.Error(t, err)
}

func TestLoadWithFileInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumqr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detector:\n  tier: colossal\n"), 0o600))

	_, err := NewLoader().LoadWithFile(path)
	assert.Error(t, err)
}
