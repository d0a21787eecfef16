package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andresv-qr/lumqr/internal/cascade"
	"github.com/andresv-qr/lumqr/internal/config"
	"github.com/andresv-qr/lumqr/internal/detector"
)

var detectCmd = &cobra.Command{
	Use:   "detect [image files...]",
	Short: "Decode QR codes from image files",
	Long: `Run the detection cascade on one or more image files and print the
results as JSON, one object per input file.

The traditional decoder bank runs first; the ONNX fallback loads lazily
and only when a file needs it, so clean captures never pay the model
load cost.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().String("tier", "", "detector model tier (nano, small, medium, large)")
	detectCmd.Flags().Bool("no-fallback", false, "disable the ML fallback stage")
	detectCmd.Flags().Int("budget-ms", 0, "wall-clock budget per image in milliseconds")
	detectCmd.Flags().Bool("attempts", false, "include the full attempt log in output")

	rootCmd.AddCommand(detectCmd)
}

// applyDetectFlags overlays explicit command-line flags onto the loaded
// configuration. Flags are read directly from the command rather than bound
// to viper keys because serve registers its own --tier flag and a shared
// key would let one command's binding shadow the other's.
func applyDetectFlags(cmd *cobra.Command, cfg *config.Config) {
	if tier, _ := cmd.Flags().GetString("tier"); tier != "" {
		cfg.Detector.Tier = tier
	}
	if noFallback, _ := cmd.Flags().GetBool("no-fallback"); noFallback {
		cfg.Cascade.EnableFallback = false
	}
	if budget, _ := cmd.Flags().GetInt("budget-ms"); budget > 0 {
		cfg.Cascade.BudgetMS = budget
	}
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyDetectFlags(cmd, cfg)

	cascadeCfg, err := cfg.BuildCascadeConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	casc, err := cascade.NewBuilder().WithConfig(cascadeCfg).Build()
	if err != nil {
		return fmt.Errorf("failed to build cascade: %w", err)
	}
	defer detector.ResetShared()

	includeAttempts, _ := cmd.Flags().GetBool("attempts")
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	var failed bool
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result := casc.Detect(cmd.Context(), data, "")
		if !includeAttempts {
			result.Attempts = nil
		}
		if err := enc.Encode(struct {
			File string `json:"file"`
			*cascade.Result
		}{File: path, Result: result}); err != nil {
			return err
		}
		if !result.Success {
			failed = true
		}
	}

	if failed {
		// Nonzero exit lets shell pipelines distinguish misses from errors
		// without parsing JSON.
		detector.ResetShared()
		os.Exit(2)
	}
	return nil
}
