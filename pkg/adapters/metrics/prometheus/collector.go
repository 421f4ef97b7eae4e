// Package prometheus implements the metrics boundary with Prometheus
// collectors registered on the default registry.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	requestsSubmitted *prometheus.CounterVec
	requestsCompleted *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	stepsExecuted     *prometheus.CounterVec
	stepDuration      *prometheus.HistogramVec
	llmCalls          *prometheus.CounterVec
	llmLatency        *prometheus.HistogramVec
	eventsPublished   *prometheus.CounterVec
	eventsDelivered   prometheus.Counter
	eventsDropped     prometheus.Counter
	liveConnections   prometheus.Gauge
	workerPoolIdle    prometheus.Gauge
	workerPoolBusy    prometheus.Gauge
	workerPoolStopped prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector
func NewCollector() *Collector {
	return &Collector{
		requestsSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivium_requests_submitted_total",
				Help: "Total number of requests submitted",
			},
			[]string{"status"},
		),
		requestsCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivium_requests_completed_total",
				Help: "Total number of requests completed",
			},
			[]string{"status"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trivium_request_duration_seconds",
				Help:    "End-to-end request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),
		stepsExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivium_steps_executed_total",
				Help: "Total number of plan steps executed",
			},
			[]string{"kind", "status"},
		),
		stepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trivium_step_duration_seconds",
				Help:    "Step execution duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"kind"},
		),
		llmCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivium_llm_calls_total",
				Help: "Total number of LLM inference calls",
			},
			[]string{"model"},
		),
		llmLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trivium_llm_latency_seconds",
				Help:    "LLM call latency in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"model"},
		),
		eventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trivium_events_published_total",
				Help: "Total number of progress events published",
			},
			[]string{"namespace"},
		),
		eventsDelivered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trivium_events_delivered_total",
				Help: "Total number of events delivered to live connections",
			},
		),
		eventsDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trivium_events_dropped_total",
				Help: "Total number of events dropped for absent clients",
			},
		),
		liveConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "trivium_live_connections",
				Help: "Number of live WebSocket connections",
			},
		),
		workerPoolIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "trivium_worker_pool_idle",
				Help: "Number of idle workers",
			},
		),
		workerPoolBusy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "trivium_worker_pool_busy",
				Help: "Number of busy workers",
			},
		),
		workerPoolStopped: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "trivium_worker_pool_stopped",
				Help: "Number of stopped workers",
			},
		),
	}
}

// RecordRequestSubmitted records a request submission
func (c *Collector) RecordRequestSubmitted(status string) {
	c.requestsSubmitted.WithLabelValues(status).Inc()
}

// RecordRequestCompleted records a completed request with its duration
func (c *Collector) RecordRequestCompleted(status string, duration time.Duration) {
	c.requestsCompleted.WithLabelValues(status).Inc()
	c.requestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordStepExecuted records one executed plan step
func (c *Collector) RecordStepExecuted(kind, status string, duration time.Duration) {
	c.stepsExecuted.WithLabelValues(kind, status).Inc()
	c.stepDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordLLMCall records one inference call
func (c *Collector) RecordLLMCall(model string, duration time.Duration) {
	c.llmCalls.WithLabelValues(model).Inc()
	c.llmLatency.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordEventPublished records one published progress event
func (c *Collector) RecordEventPublished(namespace string) {
	c.eventsPublished.WithLabelValues(namespace).Inc()
}

// RecordEventDelivered records one event forwarded to a live connection
func (c *Collector) RecordEventDelivered() {
	c.eventsDelivered.Inc()
}

// RecordEventDropped records one event dropped for an absent client
func (c *Collector) RecordEventDropped() {
	c.eventsDropped.Inc()
}

// SetLiveConnections updates the live connection gauge
func (c *Collector) SetLiveConnections(count int) {
	c.liveConnections.Set(float64(count))
}

// RecordWorkerPoolStatus updates worker pool gauges
func (c *Collector) RecordWorkerPoolStatus(idle, busy, stopped int) {
	c.workerPoolIdle.Set(float64(idle))
	c.workerPoolBusy.Set(float64(busy))
	c.workerPoolStopped.Set(float64(stopped))
}
