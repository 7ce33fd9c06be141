// Package telemetry exposes Prometheus metrics for the sync.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PratikDhanave/crm-sync-service/internal/models"
)

const namespace = "crm_sync"

// Metrics records sync outcomes and HubSpot call latencies.
type Metrics struct {
	registry *prometheus.Registry
	records  *prometheus.CounterVec
	calls    *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a fresh registry together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Trigger records processed, by record type and status.",
		}, []string{"record_type", "status"}),
		calls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hubspot_request_duration_seconds",
			Help:      "HubSpot API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "object_class", "result"}),
	}
	reg.MustRegister(
		m.records,
		m.calls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Record counts a processed record.
func (m *Metrics) Record(_ context.Context, out models.SyncOutcome) error {
	m.records.WithLabelValues(recordTypeLabel(out.RecordType), string(out.Status)).Inc()
	return nil
}

// ObserveCall records the latency of a HubSpot API call.
func (m *Metrics) ObserveCall(op, class string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calls.WithLabelValues(op, class, result).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// recordTypeLabel keeps label cardinality bounded when callers send
// arbitrary types.
func recordTypeLabel(t string) string {
	switch models.RecordType(t) {
	case models.RecordTypeContact, models.RecordTypeAccount, models.RecordTypeLead:
		return t
	default:
		return "unknown"
	}
}
