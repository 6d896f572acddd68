package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the content assistant.
type Metrics struct {
	RequestTotal       *prometheus.CounterVec
	RequestDurationMs  *prometheus.HistogramVec
	UpstreamDurationMs *prometheus.HistogramVec
	UpstreamErrorTotal *prometheus.CounterVec
	CacheTotal         *prometheus.CounterVec
	TokensTotal        *prometheus.CounterVec
	FilterActionTotal  *prometheus.CounterVec
	RateLimitHitTotal  prometheus.Counter
}

// NewMetrics creates all metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics on reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_request_total",
			Help: "Total number of API requests handled.",
		}, []string{"endpoint", "kind", "status"}),

		RequestDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_request_duration_ms",
			Help:    "Request duration in milliseconds, including upstream latency.",
			Buckets: []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"endpoint"}),

		UpstreamDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_upstream_duration_ms",
			Help:    "Upstream provider call duration in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"provider", "operation"}),

		UpstreamErrorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_upstream_error_total",
			Help: "Failed upstream provider calls.",
		}, []string{"provider", "operation", "reason"}),

		CacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_cache_total",
			Help: "Cache operations by result (hit, miss, error, stored).",
		}, []string{"operation", "result"}),

		TokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_tokens_total",
			Help: "Tokens consumed upstream.",
		}, []string{"kind", "direction"}),

		FilterActionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_filter_action_total",
			Help: "Total filter actions taken.",
		}, []string{"filter", "action"}),

		RateLimitHitTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_rate_limit_hit_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
}

// RecordRequest records metrics for a completed API request.
func (m *Metrics) RecordRequest(labels RequestLabels) {
	m.RequestTotal.WithLabelValues(labels.Endpoint, labels.Kind, labels.Status).Inc()
	m.RequestDurationMs.WithLabelValues(labels.Endpoint).Observe(labels.DurationMs)
}

// RecordUpstream records one provider call. reason is empty on success.
func (m *Metrics) RecordUpstream(provider, operation string, durationMs float64, reason string) {
	m.UpstreamDurationMs.WithLabelValues(provider, operation).Observe(durationMs)
	if reason != "" {
		m.UpstreamErrorTotal.WithLabelValues(provider, operation, reason).Inc()
	}
}

// RecordCache records a cache lookup or write outcome.
func (m *Metrics) RecordCache(operation, result string) {
	m.CacheTotal.WithLabelValues(operation, result).Inc()
}

// RecordTokens adds prompt and completion token counts for a kind.
func (m *Metrics) RecordTokens(kind string, prompt, completion int) {
	if prompt > 0 {
		m.TokensTotal.WithLabelValues(kind, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		m.TokensTotal.WithLabelValues(kind, "completion").Add(float64(completion))
	}
}

// RecordFilterAction records a filter action metric.
func (m *Metrics) RecordFilterAction(filter, action string) {
	m.FilterActionTotal.WithLabelValues(filter, action).Inc()
}

// RecordRateLimitHit counts a request rejected with 429.
func (m *Metrics) RecordRateLimitHit() {
	m.RateLimitHitTotal.Inc()
}

// RequestLabels holds the label values for recording a request.
type RequestLabels struct {
	Endpoint   string
	Kind       string
	Status     string
	DurationMs float64
}
