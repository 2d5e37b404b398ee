package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments shared across the orchestrator,
// adapter layer, pipeline, and store.
type Metrics struct {
	SessionsStarted   prometheus.Counter
	SessionsCompleted *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge

	AdapterRequests  *prometheus.CounterVec
	AdapterErrors    *prometheus.CounterVec
	AdapterLatency   *prometheus.HistogramVec
	CircuitState     *prometheus.GaugeVec

	PipelineStageOutcomes *prometheus.CounterVec
	CandidatesCreated     *prometheus.CounterVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	DeadLettersPublished *prometheus.CounterVec
}

// New constructs and registers every metric.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundingdiscovery_sessions_started_total",
			Help: "Total number of discovery sessions started.",
		}),
		SessionsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundingdiscovery_sessions_completed_total",
			Help: "Total number of discovery sessions reaching a terminal status.",
		}, []string{"status"}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fundingdiscovery_active_sessions",
			Help: "Number of sessions currently RUNNING.",
		}),
		AdapterRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundingdiscovery_adapter_requests_total",
			Help: "Total search requests issued per engine.",
		}, []string{"engine"}),
		AdapterErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundingdiscovery_adapter_errors_total",
			Help: "Total search adapter errors per engine and category.",
		}, []string{"engine", "category"}),
		AdapterLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fundingdiscovery_adapter_latency_seconds",
			Help:    "Search adapter call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
		CircuitState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fundingdiscovery_adapter_circuit_state",
			Help: "Per-engine circuit breaker state (0=closed, 1=half_open, 2=open).",
		}, []string{"engine"}),
		PipelineStageOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundingdiscovery_pipeline_stage_outcomes_total",
			Help: "Result-processing pipeline outcomes per stage.",
		}, []string{"stage", "outcome"}),
		CandidatesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundingdiscovery_candidates_created_total",
			Help: "Candidates persisted, by status.",
		}, []string{"status"}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundingdiscovery_cache_hits_total",
			Help: "Cache hits by cache name.",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundingdiscovery_cache_misses_total",
			Help: "Cache misses by cache name.",
		}, []string{"cache"}),
		DeadLettersPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundingdiscovery_dead_letters_total",
			Help: "WorkflowErrorEvents published, by stage.",
		}, []string{"stage"}),
	}
}
