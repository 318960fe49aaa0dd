// Package metrics holds the Prometheus collectors the service exports on
// /metrics. Each Metrics value owns its own registry so tests can build as many
// as they like.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "askbrooks"

type Metrics struct {
	Registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	asks             *prometheus.CounterVec
	askDuration      prometheus.Histogram
	connectorInits   *prometheus.CounterVec
	connectorInitDur prometheus.Histogram
	rateLimited      prometheus.Counter
}

func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, registry)

	m := &Metrics{
		Registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		asks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asks_total",
			Help:      "Questions handled by outcome.",
		}, []string{"outcome"}),
		askDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ask_duration_seconds",
			Help:      "Time spent answering a question, including connector startup.",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		connectorInits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_inits_total",
			Help:      "NotebookLM connector constructions by result.",
		}, []string{"result"}),
		connectorInitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connector_init_duration_seconds",
			Help:      "Time spent constructing the NotebookLM connector.",
			Buckets:   prometheus.DefBuckets,
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	wrapped.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.asks,
		m.askDuration,
		m.connectorInits,
		m.connectorInitDur,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) ObserveAsk(outcome string, d time.Duration) {
	m.asks.WithLabelValues(outcome).Inc()
	m.askDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveConnectorInit(err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.connectorInits.WithLabelValues(result).Inc()
	m.connectorInitDur.Observe(d.Seconds())
}

func (m *Metrics) IncRateLimited() {
	m.rateLimited.Inc()
}
