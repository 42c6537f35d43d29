// evtship/agent/internal/telemetry/metrics.go
// Package telemetry exposes the agent's own operational counters via
// Prometheus.

package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evtship/agent/internal/logger"
)

var (
	EventsCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evtship_events_collected_total",
			Help: "Total number of log records collected per source",
		},
		[]string{"source"},
	)
	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evtship_events_dropped_total",
			Help: "Total number of records dropped on a full buffer or queue",
		},
		[]string{"stage"},
	)
	TailRecoveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evtship_tail_recoveries_total",
			Help: "Total number of unexpected tail loop failures followed by backoff",
		},
	)
	TransientRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evtship_tail_transient_retries_total",
			Help: "Total number of transient wait failures retried without delay",
		},
	)
	PayloadsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evtship_payloads_sent_total",
			Help: "Total number of payloads delivered per sink",
		},
		[]string{"sink"},
	)
	SendErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evtship_send_errors_total",
			Help: "Total number of payload publish failures per sink",
		},
		[]string{"sink"},
	)
)

var registerOnce sync.Once

// Init registers the counters with the default registry. Idempotent so
// construction paths that run more than once in tests stay safe.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EventsCollected,
			EventsDropped,
			TailRecoveries,
			TransientRetries,
			PayloadsSent,
			SendErrors,
		)
	})
}

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine; errors are logged rather than returned since telemetry is
// never worth stopping the agent over.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("Telemetry endpoint listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Telemetry endpoint failed: %v", err)
	}
}
