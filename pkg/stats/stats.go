package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the prometheus instruments for OJP traffic.
//
// A nil *Collector is valid and records nothing, so callers that do not
// care about metrics can pass one through without guarding every call.
type Collector struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	EntryFaults     *prometheus.CounterVec
	Retries         *prometheus.CounterVec
}

// NewCollector registers the OJP instruments on the default registry.
func NewCollector() *Collector {
	return newCollector(prometheus.DefaultRegisterer)
}

// NewCollectorWith registers the instruments on the given registry, which
// keeps tests independent of the process-wide default.
func NewCollectorWith(registerer prometheus.Registerer) *Collector {
	return newCollector(registerer)
}

func newCollector(registerer prometheus.Registerer) *Collector {
	factory := promauto.With(registerer)

	return &Collector{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ojpilot",
			Subsystem: "ojp",
			Name:      "requests_total",
			Help:      "OJP requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ojpilot",
			Subsystem: "ojp",
			Name:      "request_duration_seconds",
			Help:      "Round trip time of OJP requests including parsing",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		EntryFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ojpilot",
			Subsystem: "ojp",
			Name:      "entry_faults_total",
			Help:      "Result entries skipped during response parsing",
		}, []string{"operation", "kind"}),
		Retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ojpilot",
			Subsystem: "ojp",
			Name:      "transport_retries_total",
			Help:      "HTTP requests retried after a transient status",
		}, []string{"status"}),
	}
}

// ObserveRequest records one finished operation and its duration.
func (c *Collector) ObserveRequest(operation string, outcome string, seconds float64) {
	if c == nil {
		return
	}

	c.Requests.WithLabelValues(operation, outcome).Inc()
	c.RequestDuration.WithLabelValues(operation).Observe(seconds)
}

// CountEntryFault records a skipped result entry.
func (c *Collector) CountEntryFault(operation string, kind string) {
	if c == nil {
		return
	}

	c.EntryFaults.WithLabelValues(operation, kind).Inc()
}

// CountRetry records a transport retry for the given HTTP status.
func (c *Collector) CountRetry(status string) {
	if c == nil {
		return
	}

	c.Retries.WithLabelValues(status).Inc()
}
