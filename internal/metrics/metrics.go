// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the view service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. It implements core.Observer.
type Metrics struct {
	gatherer prometheus.Gatherer

	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal *prometheus.CounterVec
	// RequestDuration is the latency of HTTP requests.
	RequestDuration *prometheus.HistogramVec

	// ViewsComputed counts view computations per table.
	ViewsComputed *prometheus.CounterVec
	// ViewComputeSeconds is the time spent in the engine per computation.
	ViewComputeSeconds *prometheus.HistogramVec
	// TableLoads counts source loads by table and outcome.
	TableLoads *prometheus.CounterVec
	// CacheLookups counts record cache lookups by table and result.
	CacheLookups *prometheus.CounterVec
	// Sessions is the number of open view sessions.
	Sessions prometheus.Gauge
}

// New registers the collectors with reg. A nil reg selects a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		RequestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridview_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridview_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ViewsComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridview_views_computed_total",
				Help: "Total number of computed table views",
			},
			[]string{"table"},
		),
		ViewComputeSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridview_view_compute_seconds",
				Help:    "Time spent sorting, filtering and paginating a view",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"table"},
		),
		TableLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridview_table_loads_total",
				Help: "Total number of table loads from a data source",
			},
			[]string{"table", "status"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridview_cache_lookups_total",
				Help: "Total number of record cache lookups",
			},
			[]string{"table", "result"},
		),
		Sessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gridview_sessions_active",
			Help: "Number of open view sessions",
		}),
	}
}

// ViewComputed records one view computation.
func (m *Metrics) ViewComputed(table string, elapsed time.Duration, _ int) {
	m.ViewsComputed.WithLabelValues(table).Inc()
	m.ViewComputeSeconds.WithLabelValues(table).Observe(elapsed.Seconds())
}

// TableLoaded records one source load.
func (m *Metrics) TableLoaded(table string, _ time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TableLoads.WithLabelValues(table, status).Inc()
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(table string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(table, result).Inc()
}

// SessionsActive sets the open session gauge.
func (m *Metrics) SessionsActive(n int) {
	m.Sessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and latency. The path label is the chi
// route pattern so ids in URLs do not create new series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		m.RequestTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
