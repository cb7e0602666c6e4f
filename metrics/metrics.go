// Package metrics holds the Prometheus collectors of the patient records API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "patient_records"

// Error kinds counted by QueryErrors.
const (
	KindLoad       = "load"
	KindValidation = "validation"
	KindNotFound   = "not_found"
)

type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	queryErrors  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route template and status code.",
		}, []string{"route", "code"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent loading the full patient collection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		queryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Failed queries, by error kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.requests, m.loadDuration, m.queryErrors)
	return m
}

func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveLoad(source string, d time.Duration) {
	m.loadDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) QueryError(kind string) {
	m.queryErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
