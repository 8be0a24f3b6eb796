package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the registration engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	accepted        *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	ledgerRead      prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_accepted_total",
		Help: "Registrations committed to the ledger",
	}, []string{"period", "origin"})

	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_rejected_total",
		Help: "Registration attempts rejected before or at commit",
	}, []string{"reason"})

	ledgerRead := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_read_duration_seconds",
		Help:    "Duration of full registration ledger reads",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, accepted, rejected, ledgerRead, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		accepted:        accepted,
		rejected:        rejected,
		ledgerRead:      ledgerRead,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAccepted counts a committed registration.
func (m *MetricsService) RecordAccepted(period string, origin string) {
	if m == nil {
		return
	}
	m.accepted.WithLabelValues(period, origin).Inc()
}

// RecordRejected counts a rejected registration attempt by reason code.
func (m *MetricsService) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// ObserveLedgerRead records the duration of a full ledger read.
func (m *MetricsService) ObserveLedgerRead(duration time.Duration) {
	if m == nil || m.ledgerRead == nil {
		return
	}
	m.ledgerRead.Observe(duration.Seconds())
}
