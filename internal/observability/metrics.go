// Package observability owns the Prometheus registry and the service's metrics.
//
// Every *Metrics method is safe on a nil receiver, so services and tests
// that do not care about metrics can pass nil.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for login attempts.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Metrics holds the collectors recorded by middleware and services.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Registrations   prometheus.Counter
	Logins          *prometheus.CounterVec
	AccountsCreated *prometheus.CounterVec
}

// NewMetrics creates a private registry with the Go and process collectors
// plus the service's own metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dailyreal_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dailyreal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Registrations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dailyreal_user_registrations_total",
				Help: "Total number of successful user registrations",
			},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dailyreal_login_attempts_total",
				Help: "Total number of password login attempts by outcome",
			},
			[]string{"outcome"},
		),
		AccountsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dailyreal_accounts_created_total",
				Help: "Total number of accounts created by type",
			},
			[]string{"type"},
		),
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.Registrations)
	reg.MustRegister(m.Logins)
	reg.MustRegister(m.AccountsCreated)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// UserRegistered counts a successful registration.
func (m *Metrics) UserRegistered() {
	if m == nil {
		return
	}
	m.Registrations.Inc()
}

// LoginAttempt counts a login by outcome.
func (m *Metrics) LoginAttempt(ok bool) {
	if m == nil {
		return
	}
	outcome := LoginFailure
	if ok {
		outcome = LoginSuccess
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// AccountCreated counts a created account by its type.
func (m *Metrics) AccountCreated(accountType string) {
	if m == nil {
		return
	}
	m.AccountsCreated.WithLabelValues(accountType).Inc()
}
