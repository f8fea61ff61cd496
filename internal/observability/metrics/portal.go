// Package metrics exposes Prometheus collectors for the portal.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/naidizakupku/portal/internal/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Proxy sources.
const (
	SourceLive     = "live"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Edge filter decisions.
const (
	EdgePass     = "pass"
	EdgeRedirect = "redirect"
)

// Recorder groups the portal collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	backendAttempts *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	authOps         *prometheus.CounterVec
	proxyResponses  *prometheus.CounterVec
	edgeDecisions   *prometheus.CounterVec
	fenceConflicts  prometheus.Counter
}

// NewRecorder creates the collectors and registers them on reg
// (prometheus.DefaultRegisterer when nil).
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		backendAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_backend_attempts_total",
			Help: "Backend candidate attempts by logical endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_backend_attempt_seconds",
			Help:    "Latency of single backend candidate attempts.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"endpoint"}),
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_auth_operations_total",
			Help: "Session engine operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		proxyResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_proxy_responses_total",
			Help: "Degrading proxy responses by resource and payload source.",
		}, []string{"resource", "source"}),
		edgeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_edge_decisions_total",
			Help: "Edge access filter decisions on protected paths.",
		}, []string{"decision"}),
		fenceConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_auth_fence_conflicts_total",
			Help: "Auth operations refused because another one held the device fence.",
		}),
	}

	reg.MustRegister(
		r.backendAttempts,
		r.backendLatency,
		r.authOps,
		r.proxyResponses,
		r.edgeDecisions,
		r.fenceConflicts,
	)
	return r
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// BackendAttempt records one candidate attempt. err == nil counts as success;
// otherwise the outcome is the error's code (timeout, rejected, ...).
func (r *Recorder) BackendAttempt(endpoint string, err error, took time.Duration) {
	if r == nil {
		return
	}
	outcome := ResultSuccess
	if err != nil {
		outcome = string(apperrors.CodeOf(err))
	}
	r.backendAttempts.WithLabelValues(endpoint, outcome).Inc()
	r.backendLatency.WithLabelValues(endpoint).Observe(took.Seconds())
}

// AuthOperation records a finished engine operation.
func (r *Recorder) AuthOperation(op, outcome string) {
	if r == nil {
		return
	}
	r.authOps.WithLabelValues(op, outcome).Inc()
}

// ProxyServed records which source answered a degrading proxy request.
func (r *Recorder) ProxyServed(resource, source string) {
	if r == nil {
		return
	}
	r.proxyResponses.WithLabelValues(resource, source).Inc()
}

// EdgeDecision records an edge filter decision.
func (r *Recorder) EdgeDecision(decision string) {
	if r == nil {
		return
	}
	r.edgeDecisions.WithLabelValues(decision).Inc()
}

// FenceConflict records an auth operation refused by the device fence.
func (r *Recorder) FenceConflict() {
	if r == nil {
		return
	}
	r.fenceConflicts.Inc()
}
