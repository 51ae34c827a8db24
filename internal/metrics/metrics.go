// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service
type Metrics struct {
	ActionPacksBuilt      *prometheus.CounterVec
	ExperimentsStarted    *prometheus.CounterVec
	ExperimentsReset      prometheus.Counter
	ExperimentsCompleted  prometheus.Counter
	ExperimentEvaluations *prometheus.CounterVec
	WhatIfRuns            *prometheus.CounterVec
	WhatIfCacheHits       prometheus.Counter
	UpstreamRequests      *prometheus.CounterVec
	UpstreamLatency       *prometheus.HistogramVec
	HTTPRequests          *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ActionPacksBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_action_packs_built_total",
			Help: "Action packs synthesized, by primary tag",
		}, []string{"tag"}),
		ExperimentsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_experiments_started_total",
			Help: "Experiments started, by kind",
		}, []string{"kind"}),
		ExperimentsReset: f.NewCounter(prometheus.CounterOpts{
			Name: "wellness_experiments_reset_total",
			Help: "Experiments cleared by the user",
		}),
		ExperimentsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "wellness_experiments_completed_total",
			Help: "Experiments whose window completed",
		}),
		ExperimentEvaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_experiment_evaluations_total",
			Help: "Experiment evaluations, by whether the result was ready",
		}, []string{"ready"}),
		WhatIfRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_whatif_runs_total",
			Help: "What-If projections, by outcome (ok, blocked, insufficient)",
		}, []string{"outcome"}),
		WhatIfCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "wellness_whatif_cache_hits_total",
			Help: "What-If projections served from cache",
		}),
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_upstream_requests_total",
			Help: "Dashboard API requests, by endpoint and status class",
		}, []string{"endpoint", "status"}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wellness_upstream_request_seconds",
			Help:    "Dashboard API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		}, []string{"route", "code"}),
	}
}

// NewNop returns collectors registered nowhere, for tests and the CLI.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
