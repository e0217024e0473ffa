package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP holds request-level collectors for the scoring server.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTP creates the HTTP collectors and registers them with reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	f := promauto.With(reg)
	return &HTTP{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, endpoint and status",
		}, []string{"method", "endpoint", "status"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "endpoint"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of requests being served",
		}),
	}
}

// Begin marks a request as started. The returned func records it as
// finished with the given status.
func (h *HTTP) Begin(method, endpoint string) func(status int) {
	if h == nil {
		return func(int) {}
	}
	start := time.Now()
	h.InFlight.Inc()
	return func(status int) {
		h.InFlight.Dec()
		h.Requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
		h.Duration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}
