package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors live on the default registry so that /metrics also serves the
// sieve counters registered by the sieve package.
var (
	inFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "primegen_http_active_requests",
		Help: "Requests currently being served.",
	})
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "primegen_http_requests_total",
		Help: "Finished requests by route and status code.",
	}, []string{"route", "code"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "primegen_http_request_duration_seconds",
		Help:    "Request latency by route. Sieve requests dominate the upper buckets.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"route"})
)

// Metrics records per-route request statistics and serves the registry.
type Metrics struct {
	handler http.Handler
}

// NewMetrics creates a Metrics backed by the default Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{handler: promhttp.Handler()}
}

// begin marks a request of route as in flight. The returned function must
// be called with the final status code once the response is written.
func (m *Metrics) begin(route string) func(code int) {
	start := time.Now()
	inFlightRequests.Inc()
	return func(code int) {
		inFlightRequests.Dec()
		requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.handler.ServeHTTP(w, r)
}

// metricsMiddleware labels samples with the registered route rather than the
// raw URL path, which keeps label cardinality bounded.
func (s *Server) metricsMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		done := s.metrics.begin(route)
		defer func() { done(rec.status) }()
		next(rec, r)
	}
}
