package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andresv-qr/lumqr/internal/cascade"
	"github.com/andresv-qr/lumqr/internal/detector"
	"github.com/andresv-qr/lumqr/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP detection service",
	Long: `Start an HTTP server exposing the detection cascade.

Endpoints:
  POST /api/v1/detect   multipart upload (file/image field) or raw body
  GET  /api/v1/models   detector models available on disk
  GET  /healthz         liveness and build info
  GET  /metrics         Prometheus metrics

The ONNX detector loads eagerly at startup so the first request does not
pay the model load cost; a missing model logs a warning and the service
runs with the traditional bank only.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "0.0.0.0", "host interface to bind")
	serveCmd.Flags().Int("port", 8080, "port to listen on")
	serveCmd.Flags().String("tier", "", "detector model tier (nano, small, medium, large)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("detector.tier", serveCmd.Flags().Lookup("tier"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig()

	cascadeCfg, err := cfg.BuildCascadeConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Eager model load: a server should fail its first request fast, not
	// spend it loading.
	if cascadeCfg.EnableFallback {
		if _, err := detector.Shared(cascadeCfg.Detector); err != nil {
			slog.Warn("ML fallback unavailable, serving with traditional bank only",
				"model_path", cascadeCfg.Detector.ModelPath, "error", err)
		}
	}
	defer detector.ResetShared()

	casc, err := cascade.NewBuilder().WithConfig(cascadeCfg).Build()
	if err != nil {
		return fmt.Errorf("failed to build cascade: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, casc)
	return srv.Start(ctx)
}
