// Package metrics exposes Prometheus instrumentation for catalog API calls
// and the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// APIRequestsTotal counts outgoing catalog API requests by method and
	// status class. Requests that never got a response use "error".
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chamus_api_requests_total",
			Help: "Catalog API requests",
		},
		[]string{"method", "status"},
	)

	// APIRequestDuration records catalog API latency in seconds.
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chamus_api_request_duration_seconds",
			Help:    "Catalog API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// SessionInvalidationsTotal counts sessions dropped after a 401/403.
	SessionInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chamus_session_invalidations_total",
			Help: "Sessions cleared after an authorization failure",
		},
	)

	// SessionAuthenticated is 1 while the process holds a verified session.
	SessionAuthenticated = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chamus_session_authenticated",
			Help: "Whether the session is authenticated",
		},
	)

	// DashboardRequestsTotal counts dashboard requests by method and status class.
	DashboardRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chamus_dashboard_requests_total",
			Help: "Dashboard requests",
		},
		[]string{"method", "status"},
	)

	// LoginRejectedTotal counts dashboard logins refused by the rate limiter.
	LoginRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chamus_dashboard_login_rate_limited_total",
			Help: "Login attempts rejected by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal,
		APIRequestDuration,
		SessionInvalidationsTotal,
		SessionAuthenticated,
		DashboardRequestsTotal,
		LoginRejectedTotal,
	)
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// Transport wraps next so every round trip is counted and timed.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)
		APIRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
		if err != nil {
			APIRequestsTotal.WithLabelValues(req.Method, "error").Inc()
			return nil, err
		}
		APIRequestsTotal.WithLabelValues(req.Method, statusClass(resp.StatusCode)).Inc()
		return resp, nil
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware records dashboard request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		DashboardRequestsTotal.WithLabelValues(r.Method, statusClass(sw.status)).Inc()
	})
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
