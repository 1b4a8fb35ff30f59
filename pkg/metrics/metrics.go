package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OUTCOME_ACCEPTED     = "accepted"
	OUTCOME_INVALID      = "invalid"
	OUTCOME_REJECTED     = "rejected"
	OUTCOME_DUPLICATE    = "duplicate"
	OUTCOME_RATE_LIMITED = "rate_limited"
	OUTCOME_CLOSED       = "closed"

	NAMESPACE = "quran_fest"
)

// Metrics is safe to use through a nil pointer, which records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	registrations *prometheus.CounterVec
	intake        *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: NAMESPACE,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		intake: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: NAMESPACE,
			Name:      "intake_request_duration_seconds",
			Help:      "Latency of calls to the registration intake endpoint.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.requests, m.duration, m.registrations, m.intake)
	return m
}

func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Intake(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.intake.WithLabelValues(outcome).Observe(d.Seconds())
}

// RequestsMetricsMiddleware labels requests with the matched chi route pattern
// so that path parameters do not blow up cardinality.
func (m *Metrics) RequestsMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
