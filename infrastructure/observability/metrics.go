package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Query bus metrics
	Queries        *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	GraphNodes     prometheus.Histogram
	DomainEvents   *prometheus.CounterVec
	EventFailures  prometheus.Counter
	BreakerChanges *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry so tests and
// multiple containers never collide on registration.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of dispatched queries by outcome",
			},
			[]string{"query", "outcome"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query handler duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		GraphNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "local_graph_nodes",
				Help:      "Number of nodes returned by local graph expansions",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		DomainEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "domain_events_total",
				Help:      "Total number of published domain events by type",
			},
			[]string{"type"},
		),
		EventFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "domain_event_failures_total",
				Help:      "Total number of failed event publish calls",
			},
		),
		BreakerChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_transitions_total",
				Help:      "Circuit breaker state transitions",
			},
			[]string{"name", "to"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.Queries,
		c.QueryDuration,
		c.GraphNodes,
		c.DomainEvents,
		c.EventFailures,
		c.BreakerChanges,
	)
	return c
}

// ObserveQuery records the latency and outcome of a dispatched query
func (c *Collector) ObserveQuery(queryType string, duration time.Duration, err error) {
	c.QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
	c.Queries.WithLabelValues(queryType, outcome(err)).Inc()
}

// ObserveGraph records the size of an expanded local graph
func (c *Collector) ObserveGraph(nodes int) {
	c.GraphNodes.Observe(float64(nodes))
}

// ObserveBreaker records a circuit breaker state change
func (c *Collector) ObserveBreaker(name, to string) {
	c.BreakerChanges.WithLabelValues(name, to).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return "error"
}

// EventPublished counts a delivered domain event
func (c *Collector) EventPublished(eventType string) {
	c.DomainEvents.WithLabelValues(eventType).Inc()
}

// EventFailed counts a failed publish call
func (c *Collector) EventFailed() {
	c.EventFailures.Inc()
}
