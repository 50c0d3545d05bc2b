package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusOK             = "ok"
	statusRPCError       = "rpc_error"
	statusHTTPError      = "http_error"
	statusTransportError = "transport_error"
)

type providerMetrics struct {
	requestsTotal   *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newProviderMetrics(registerer prometheus.Registerer) *providerMetrics {
	m := &providerMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "icon",
				Subsystem: "provider",
				Name:      "requests_total",
				Help:      "Total number of JSON-RPC requests.",
			},
			[]string{"method", "status"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "icon",
				Subsystem: "provider",
				Name:      "retries_total",
				Help:      "Total number of repeated JSON-RPC requests.",
			},
			[]string{"method"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "icon",
				Subsystem: "provider",
				Name:      "request_duration_seconds",
				Help:      "JSON-RPC request latency distributions.",
				Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"method"},
		),
	}

	registerer.MustRegister(m.requestsTotal, m.retriesTotal, m.requestDuration)

	return m
}

func (m *providerMetrics) observe(method string, status string, start time.Time) {
	if m == nil {
		return
	}

	m.requestsTotal.WithLabelValues(method, status).Inc()
	m.requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (m *providerMetrics) retried(method string) {
	if m == nil {
		return
	}

	m.retriesTotal.WithLabelValues(method).Inc()
}
