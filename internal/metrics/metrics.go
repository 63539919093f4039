package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate outcomes.
const (
	OutcomePublic        = "public"
	OutcomeAuthenticated = "authenticated"
	OutcomeRejected      = "rejected"
	OutcomeError         = "error"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry *prometheus.Registry

	GateDecisions   *prometheus.CounterVec
	RoleDenials     *prometheus.CounterVec
	LoginAttempts   *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	FlightSearches  *prometheus.CounterVec
	FlightsReturned prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		GateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_auth_gate_decisions_total",
				Help: "Requests seen by the auth gate, by outcome",
			},
			[]string{"outcome"},
		),
		RoleDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_role_denials_total",
				Help: "Requests rejected by a role requirement",
			},
			[]string{"required_role"},
		),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_login_attempts_total",
				Help: "Login attempts, by result",
			},
			[]string{"result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_http_requests_total",
				Help: "HTTP requests, by route pattern, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightdesk_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		FlightSearches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightdesk_flight_searches_total",
				Help: "Flight searches, by trip type",
			},
			[]string{"trip_type"},
		),
		FlightsReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flightdesk_flight_search_results",
				Help:    "Number of flights returned per search",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gate records one auth gate decision. A nil receiver is a no-op.
func (m *Metrics) Gate(outcome string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RoleDenied(required string) {
	if m == nil {
		return
	}
	m.RoleDenials.WithLabelValues(required).Inc()
}

func (m *Metrics) Login(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) Search(tripType string, results int) {
	if m == nil {
		return
	}
	m.FlightSearches.WithLabelValues(tripType).Inc()
	m.FlightsReturned.Observe(float64(results))
}

// Middleware records request counts and latency keyed by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
