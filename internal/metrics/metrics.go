// Package metrics exposes Prometheus collectors for the analysis engine, the
// classifier client and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the lifeline collectors. A nil *Metrics is valid and records
// nothing, which keeps tests and the CLI free of registration concerns.
type Metrics struct {
	AnalysisDuration prometheus.Histogram
	AnalysesTotal    *prometheus.CounterVec
	EventsIngested   prometheus.Counter
	RecordsRejected  prometheus.Counter
	AnomaliesTotal   *prometheus.CounterVec

	ClassifierRequests *prometheus.CounterVec
	ClassifierLatency  prometheus.Histogram
	BreakerState       prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers the collectors once per process.
//
// Metrics:
//   - lifeline_analysis_duration_seconds - engine run time
//   - lifeline_analyses_total{cache} - analyses served, "hit" or "miss"
//   - lifeline_events_ingested_total - accepted events
//   - lifeline_records_rejected_total - records skipped during ingestion
//   - lifeline_anomalies_detected_total{kind} - high_activity or low_activity
//   - lifeline_classifier_requests_total{outcome} - success, error, empty, circuit_open
//   - lifeline_classifier_latency_seconds - classifier round trip
//   - lifeline_classifier_breaker_state - 0 closed, 1 half-open, 2 open
//   - lifeline_http_requests_total{method,route,status}
//   - lifeline_http_request_duration_seconds{method,route}
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "lifeline_analysis_duration_seconds",
				Help:    "Duration of a full analysis run in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			}),
			AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "lifeline_analyses_total",
				Help: "Total number of analysis requests served",
			}, []string{"cache"}),
			EventsIngested: promauto.NewCounter(prometheus.CounterOpts{
				Name: "lifeline_events_ingested_total",
				Help: "Total number of events accepted by the event store",
			}),
			RecordsRejected: promauto.NewCounter(prometheus.CounterOpts{
				Name: "lifeline_records_rejected_total",
				Help: "Total number of input records rejected during ingestion",
			}),
			AnomaliesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "lifeline_anomalies_detected_total",
				Help: "Total number of volume anomalies detected",
			}, []string{"kind"}),
			ClassifierRequests: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "lifeline_classifier_requests_total",
				Help: "Total number of classifier requests by outcome",
			}, []string{"outcome"}),
			ClassifierLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "lifeline_classifier_latency_seconds",
				Help:    "Latency of classifier calls in seconds",
				Buckets: prometheus.DefBuckets,
			}),
			BreakerState: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "lifeline_classifier_breaker_state",
				Help: "Classifier circuit breaker state (0 closed, 1 half-open, 2 open)",
			}),
			HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "lifeline_http_requests_total",
				Help: "Total number of HTTP requests",
			}, []string{"method", "route", "status"}),
			HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "lifeline_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "route"}),
		}
	})

	return globalMetrics
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAnalysis records one engine run.
func (m *Metrics) ObserveAnalysis(d time.Duration, ingested, rejected int) {
	if m == nil {
		return
	}
	m.AnalysisDuration.Observe(d.Seconds())
	m.EventsIngested.Add(float64(ingested))
	m.RecordsRejected.Add(float64(rejected))
}

// RecordCache records whether a report came from the cache.
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if hit {
		label = "hit"
	}
	m.AnalysesTotal.WithLabelValues(label).Inc()
}

// RecordAnomaly counts one detected anomaly of the given kind.
func (m *Metrics) RecordAnomaly(kind string) {
	if m == nil {
		return
	}
	m.AnomaliesTotal.WithLabelValues(kind).Inc()
}

// RecordClassifierRequest counts one classifier call.
func (m *Metrics) RecordClassifierRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ClassifierRequests.WithLabelValues(outcome).Inc()
	m.ClassifierLatency.Observe(d.Seconds())
}

// SetBreakerState publishes the circuit breaker state.
func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.BreakerState.Set(float64(state))
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
