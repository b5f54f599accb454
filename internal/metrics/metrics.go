// Package metrics exposes registry activity in the Prometheus text format.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-inventory/internal/device"
)

const metricPrefix = "inventory_"

// StatsFunc returns a registry snapshot. (*device.Registry).Stats satisfies it.
type StatsFunc func() device.Stats

// Metrics bundles the inventory collectors on a private registry so tests
// and multiple instances never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	Operations       *prometheus.CounterVec
	LowBatteryAlerts prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New constructs and registers the collectors. Device gauges are read from
// stats at scrape time; stats may be nil when no registry is available.
func New(stats StatsFunc) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "operations_total",
				Help: "Registry operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		LowBatteryAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "low_battery_alerts_total",
			Help: "Smartwatch battery drops below the low battery threshold",
		}),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.Operations,
		m.LowBatteryAlerts,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
	)
	if stats != nil {
		m.registerDeviceGauges(stats)
	}
	return m
}

func (m *Metrics) registerDeviceGauges(stats StatsFunc) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "devices_capacity",
			Help: "Maximum number of devices the registry holds",
		}, func() float64 { return float64(stats().Capacity) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricPrefix + "devices_powered_on",
			Help: "Devices currently switched on",
		}, func() float64 { return float64(stats().PoweredOn) }),
	)
	for _, kind := range device.AllKinds() {
		kind := kind
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        metricPrefix + "devices",
			Help:        "Devices in the registry by kind",
			ConstLabels: prometheus.Labels{"kind": string(kind)},
		}, func() float64 { return float64(stats().ByKind[kind]) }))
	}
}

// Record counts a registry outcome. It implements device.Recorder.
func (m *Metrics) Record(_ context.Context, ev device.Event) {
	m.Operations.WithLabelValues(string(ev.Operation), string(ev.Outcome)).Inc()
}

// LowBattery counts a low battery alert. It implements device.Notifier.
func (m *Metrics) LowBattery(string, int) {
	m.LowBatteryAlerts.Inc()
}

// ObserveHTTP records one served request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
