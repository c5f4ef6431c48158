// Package metrics holds the Prometheus collectors for the acquisition
// pipeline and an optional HTTP endpoint that serves them.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/pulseship/internal/domain"
)

const namespace = "pulseship"

// Metrics contains the pipeline collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	FramesProcessed prometheus.Counter
	SinkPushes      *prometheus.CounterVec
	HeartRate       prometheus.Gauge
	ScanAttempts    *prometheus.CounterVec
	SessionState    prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "frames_processed_total",
			Help:      "Total number of frames handled by the pipeline",
		}),
		SinkPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "pushes_total",
			Help:      "Samples pushed to the telemetry sink",
		}, []string{"status"}),
		HeartRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "heart_rate_bpm",
			Help:      "Current heart-rate estimate (-1 while training)",
		}),
		ScanAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arbiter",
			Name:      "attempts_total",
			Help:      "Connection attempts by outcome",
		}, []string{"outcome"}),
		SessionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "state",
			Help:      "Device state (0=none, 1=connecting, 2=connected, 3=streaming)",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesProcessed,
		m.SinkPushes,
		m.HeartRate,
		m.ScanAttempts,
		m.SessionState,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// FrameProcessed records one handled frame and the bpm it produced.
func (m *Metrics) FrameProcessed(bpm int) {
	if m == nil {
		return
	}
	m.FramesProcessed.Inc()
	m.HeartRate.Set(float64(bpm))
}

// SinkPush records a sink push outcome.
func (m *Metrics) SinkPush(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SinkPushes.WithLabelValues(status).Inc()
}

// ScanAttempt records a connection attempt outcome
// ("connected", "rejected", "timeout", "error").
func (m *Metrics) ScanAttempt(outcome string) {
	if m == nil {
		return
	}
	m.ScanAttempts.WithLabelValues(outcome).Inc()
}

// StateChanged records the current device state.
func (m *Metrics) StateChanged(s domain.DeviceState) {
	if m == nil {
		return
	}
	m.SessionState.Set(float64(s))
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
