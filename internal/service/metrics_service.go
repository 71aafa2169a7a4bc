package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hadirku/presensi-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the intake
// pipeline and the HTTP surface.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	submissionsTotal *prometheus.CounterVec
	duplicatesTotal  *prometheus.CounterVec
	mockRejections   prometheus.Counter
	tapOutcomes      *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
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

	submissionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_submissions_total",
		Help: "Ledger records written, by intake channel",
	}, []string{"method"})

	duplicatesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_duplicates_total",
		Help: "Submissions rejected by the uniqueness constraint, by intake channel",
	}, []string{"method"})

	mockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "location_mock_rejections_total",
		Help: "Submissions rejected for suspected fake GPS",
	})

	tapOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nfc_tap_outcomes_total",
		Help: "Per-session outcomes of card taps",
	}, []string{"state"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, submissionsTotal, duplicatesTotal, mockRejections, tapOutcomes, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		submissionsTotal: submissionsTotal,
		duplicatesTotal:  duplicatesTotal,
		mockRejections:   mockRejections,
		tapOutcomes:      tapOutcomes,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveRequest records one HTTP request.
func (m *MetricsService) ObserveRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

// RecordSubmission counts one accepted ledger write.
func (m *MetricsService) RecordSubmission(method models.AttendanceMethod) {
	m.submissionsTotal.WithLabelValues(string(method)).Inc()
}

// RecordDuplicate counts one uniqueness rejection.
func (m *MetricsService) RecordDuplicate(method models.AttendanceMethod) {
	m.duplicatesTotal.WithLabelValues(string(method)).Inc()
}

// RecordMockRejection counts one suspected fake GPS rejection.
func (m *MetricsService) RecordMockRejection() {
	m.mockRejections.Inc()
}

// RecordTapOutcome counts one per-session tap result.
func (m *MetricsService) RecordTapOutcome(state models.TapOutcomeState) {
	m.tapOutcomes.WithLabelValues(string(state)).Inc()
}
