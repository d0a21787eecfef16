package cascade

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	detectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumqr_detections_total",
		Help: "Detection requests by terminal outcome and resolving level.",
	}, []string{"outcome", "level"})

	detectionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumqr_detection_failures_total",
		Help: "Failed detection requests by reason code.",
	}, []string{"reason"})

	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumqr_decode_attempts_total",
		Help: "Individual decode attempts by level, strategy and decoder.",
	}, []string{"level", "strategy", "decoder", "outcome"})

	detectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lumqr_detection_duration_seconds",
		Help:    "End-to-end detection request duration.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"outcome"})

	fallbackDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lumqr_fallback_duration_seconds",
		Help:    "Duration of the ML fallback stage when it runs.",
		Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	inferenceInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lumqr_fallback_in_flight",
		Help: "Fallback inferences currently holding the inference gate.",
	})
)

func recordResult(r *Result) {
	outcome := "failure"
	if r.Success {
		outcome = "success"
	}
	detectionsTotal.WithLabelValues(outcome, r.Level).Inc()
	if !r.Success && r.Reason != "" {
		detectionFailures.WithLabelValues(r.Reason).Inc()
	}
	detectionDuration.WithLabelValues(outcome).Observe(r.Stats.TotalDurationMS / 1000)
	for _, a := range r.Attempts {
		attemptsTotal.WithLabelValues(a.Level, a.Strategy, a.Decoder, a.Outcome).Inc()
	}
}
