package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
// All observation helpers are safe to call on a nil manager.
type MetricsManager struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestLatency   *prometheus.HistogramVec
	APIErrorsTotal       *prometheus.CounterVec
	FavoriteTogglesTotal *prometheus.CounterVec
	CounterDeltasTotal   *prometheus.CounterVec

	ReconcileRunsTotal     *prometheus.CounterVec
	ReconcileBucketsTotal  *prometheus.CounterVec
	ReconcileListingsTotal *prometheus.CounterVec
	ReconcileDuration      *prometheus.HistogramVec
}

// NewMetricsManager creates and registers all collectors on a private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	namespace := sanitize(serviceName)
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by kind.",
		}, []string{"kind"}),
		FavoriteTogglesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Favorite and unfavorite operations by outcome.",
		}, []string{"op", "outcome"}),
		CounterDeltasTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_deltas_recorded_total",
			Help:      "Deltas written into counter buckets.",
		}, []string{"counter"}),
		ReconcileRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_reconcile_runs_total",
			Help:      "Counter reconciliation runs by counter and outcome.",
		}, []string{"counter", "outcome"}),
		ReconcileBucketsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_reconcile_buckets_deleted_total",
			Help:      "Counter buckets flushed and deleted.",
		}, []string{"counter"}),
		ReconcileListingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_reconcile_listings_updated_total",
			Help:      "Listings whose durable counter was incremented.",
		}, []string{"counter"}),
		ReconcileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "counter_reconcile_duration_seconds",
			Help:      "Duration of a reconciliation run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"counter"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		m.APIErrorsTotal,
		m.FavoriteTogglesTotal,
		m.CounterDeltasTotal,
		m.ReconcileRunsTotal,
		m.ReconcileBucketsTotal,
		m.ReconcileListingsTotal,
		m.ReconcileDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *MetricsManager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *MetricsManager) ObserveAPIError(kind string) {
	if m == nil {
		return
	}
	m.APIErrorsTotal.WithLabelValues(kind).Inc()
}

func (m *MetricsManager) ObserveFavoriteToggle(op, outcome string) {
	if m == nil {
		return
	}
	m.FavoriteTogglesTotal.WithLabelValues(op, outcome).Inc()
}

func (m *MetricsManager) ObserveCounterDelta(counter string) {
	if m == nil {
		return
	}
	m.CounterDeltasTotal.WithLabelValues(counter).Inc()
}

// ObserveReconcile records the outcome of one reconciliation run for a counter.
func (m *MetricsManager) ObserveReconcile(counter string, err error, bucketsDeleted, listingsUpdated int, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ReconcileRunsTotal.WithLabelValues(counter, outcome).Inc()
	m.ReconcileBucketsTotal.WithLabelValues(counter).Add(float64(bucketsDeleted))
	m.ReconcileListingsTotal.WithLabelValues(counter).Add(float64(listingsUpdated))
	m.ReconcileDuration.WithLabelValues(counter).Observe(elapsed.Seconds())
}

// NewMetricsServer builds the /metrics HTTP server. It returns nil when port is empty.
func NewMetricsServer(port string, registry *prometheus.Registry) *http.Server {
	if port == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartMetricsServer serves metrics until the server is closed.
func StartMetricsServer(srv *http.Server, appLogger *logger.Logger) error {
	if srv == nil {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}
	appLogger.Info("Prometheus metrics server starting", zap.String("addr", srv.Addr), zap.String("path", "/metrics"))
	return srv.ListenAndServe()
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
