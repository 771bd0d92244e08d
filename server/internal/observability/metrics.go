package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agenda"

// Metrics holds the Prometheus collectors for event resolution.
type Metrics struct {
	requestTotal   *prometheus.CounterVec
	signalTotal    *prometheus.CounterVec
	llmCallTotal   *prometheus.CounterVec
	llmDuration    prometheus.Histogram
	cacheHitTotal  prometheus.Counter
	requestLatency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "API requests by operation and result code",
		}, []string{"operation", "code"}),
		signalTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolved_signal_total",
			Help:      "Resolved events by the temporal signal that decided the date",
		}, []string{"signal"}),
		llmCallTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "LLM extraction calls by outcome",
		}, []string{"outcome"}),
		llmDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Time spent in LLM extraction calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		cacheHitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cache_hits_total",
			Help:      "Extractions answered from the LLM reply cache",
		}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "API request latency by operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.requestTotal, m.signalTotal, m.llmCallTotal, m.llmDuration, m.cacheHitTotal, m.requestLatency)
	}
	return m
}

// RecordRequest records a finished API request.
func (m *Metrics) RecordRequest(operation, code string, duration time.Duration) {
	m.requestTotal.WithLabelValues(operation, code).Inc()
	m.requestLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSignal records the branch that resolved an event.
func (m *Metrics) RecordSignal(signal string) {
	m.signalTotal.WithLabelValues(signal).Inc()
}

// RecordLLMCall records an extraction call. Cache hits are counted apart
// and do not observe a duration.
func (m *Metrics) RecordLLMCall(cached bool, err error, duration time.Duration) {
	if cached {
		m.cacheHitTotal.Inc()
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.llmCallTotal.WithLabelValues(outcome).Inc()
	m.llmDuration.Observe(duration.Seconds())
}
