package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresv-qr/lumqr/internal/config"
)

func TestApplyDetectFlagsTierOverride(t *testing.T) {
	// Both detect and serve register a --tier flag; the override must come
	// from the detect command's own flag set, not a shared viper key that
	// the last-registered command shadows.
	require.NoError(t, detectCmd.Flags().Set("tier", "small"))
	t.Cleanup(func() {
		_ = detectCmd.Flags().Set("tier", "")
	})

	cfg := config.DefaultConfig()
	applyDetectFlags(detectCmd, cfg)

	assert.Equal(t, "small", cfg.Detector.Tier)
}

func TestApplyDetectFlagsDefaultsUntouched(t *testing.T) {
	cfg := config.DefaultConfig()
	applyDetectFlags(detectCmd, cfg)

	assert.Equal(t, config.DefaultConfig().Detector.Tier, cfg.Detector.Tier)
	assert.True(t, cfg.Cascade.EnableFallback)
	assert.Equal(t, config.DefaultConfig().Cascade.BudgetMS, cfg.Cascade.BudgetMS)
}

func TestApplyDetectFlagsFallbackAndBudget(t *testing.T) {
	require.NoError(t, detectCmd.Flags().Set("no-fallback", "true"))
	require.NoError(t, detectCmd.Flags().Set("budget-ms", "750"))
	t.Cleanup(func() {
		_ = detectCmd.Flags().Set("no-fallback", "false")
		_ = detectCmd.Flags().Set("budget-ms", "0")
	})

	cfg := config.DefaultConfig()
	applyDetectFlags(detectCmd, cfg)

	assert.False(t, cfg.Cascade.EnableFallback)
	assert.Equal(t, 750, cfg.Cascade.BudgetMS)
}
