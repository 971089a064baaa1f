package service

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/healthclarity/lead-intake-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the intake
// flow: HTTP traffic, sheet store operations, and notification outcomes.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	sheetOpDuration *prometheus.HistogramVec
	sheetOpErrors   *prometheus.CounterVec

	notificationsSent    prometheus.Counter
	notificationsFailed  prometheus.Counter
	notificationsSkipped prometheus.Counter
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

	sheetOpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sheet_operation_duration_seconds",
		Help:    "Duration of spreadsheet store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	sheetOpErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheet_operation_errors_total",
		Help: "Total failed spreadsheet store operations",
	}, []string{"operation"})

	notificationsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total chat notifications delivered",
	})

	notificationsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total chat notification attempts that failed",
	})

	notificationsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_skipped_total",
		Help: "Total notifications skipped because the channel is unconfigured",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, sheetOpDuration, sheetOpErrors,
		notificationsSent, notificationsFailed, notificationsSkipped, goroutines)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		sheetOpDuration:      sheetOpDuration,
		sheetOpErrors:        sheetOpErrors,
		notificationsSent:    notificationsSent,
		notificationsFailed:  notificationsFailed,
		notificationsSkipped: notificationsSkipped,
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

// ObserveSheetOp records a store operation's latency and outcome.
func (m *MetricsService) ObserveSheetOp(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.sheetOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.sheetOpErrors.WithLabelValues(operation).Inc()
	}
}

// NotificationSent increments the delivered counter.
func (m *MetricsService) NotificationSent() {
	if m == nil {
		return
	}
	m.notificationsSent.Inc()
}

// NotificationFailed increments the failure counter.
func (m *MetricsService) NotificationFailed() {
	if m == nil {
		return
	}
	m.notificationsFailed.Inc()
}

// NotificationSkipped increments the unconfigured-channel counter.
func (m *MetricsService) NotificationSkipped() {
	if m == nil {
		return
	}
	m.notificationsSkipped.Inc()
}

// measuredStore decorates a leadStore with operation metrics.
type measuredStore struct {
	inner   leadStore
	metrics *MetricsService
}

// WithStoreMetrics wraps a store so fetch/append latency is observed.
func WithStoreMetrics(store leadStore, metrics *MetricsService) leadStore {
	if metrics == nil {
		return store
	}
	return &measuredStore{inner: store, metrics: metrics}
}

func (m *measuredStore) FetchAll(ctx context.Context) ([]models.SheetRow, error) {
	start := time.Now()
	rows, err := m.inner.FetchAll(ctx)
	m.metrics.ObserveSheetOp("fetch_all", time.Since(start), err)
	return rows, err
}

func (m *measuredStore) Append(ctx context.Context, row []interface{}) error {
	start := time.Now()
	err := m.inner.Append(ctx, row)
	m.metrics.ObserveSheetOp("append", time.Since(start), err)
	return err
}
