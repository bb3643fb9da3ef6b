// Package metrics exposes the BFF's Prometheus series.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	backendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_backend_calls_total",
			Help: "Total number of calls to the REST backend",
		},
		[]string{"method", "route", "status"},
	)

	backendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_backend_call_duration_seconds",
			Help:    "Duration of calls to the REST backend",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_operations_total",
			Help: "Total number of checkout and admin operations",
		},
		[]string{"operation", "status"},
	)

	eventsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_total",
			Help: "Orders-changed events by origin",
		},
		[]string{"origin"},
	)
)

// Middleware records every request under its chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		status := strconv.Itoa(code)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// ObserveBackend matches api.Observer. status is 0 when the backend was not
// reached.
func ObserveBackend(method, route string, status int, d time.Duration) {
	backendCallsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	backendCallDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	operations.WithLabelValues(operation, status).Inc()
}

// RecordEvent counts an orders-changed event; origin is "local" or "remote".
func RecordEvent(origin string) {
	eventsRelayed.WithLabelValues(origin).Inc()
}
