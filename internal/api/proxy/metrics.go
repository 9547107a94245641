package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"strconv"
)

// Metrics holds the Prometheus collectors of the proxy
type Metrics struct {
	requests         *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	upstreamFailures *prometheus.CounterVec
}

// NewMetrics creates the proxy collectors and registers them at the given registerer
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deeplink_proxy",
			Name:      "requests_total",
			Help:      "Number of requests handled by the proxy, partitioned by response status.",
		}, []string{"status"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "deeplink_proxy",
			Name:      "upstream_duration_seconds",
			Help:      "Duration of upstream calls that produced a response.",
			Buckets:   prometheus.DefBuckets,
		}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deeplink_proxy",
			Name:      "upstream_failures_total",
			Help:      "Number of upstream calls that did not produce a response, partitioned by kind.",
		}, []string{"kind"}),
	}
	registerer.MustRegister(metrics.requests, metrics.upstreamDuration, metrics.upstreamFailures)
	return metrics
}

func (metrics *Metrics) observeRequest(status int) {
	metrics.requests.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (metrics *Metrics) observeFailure(kind string) {
	metrics.upstreamFailures.WithLabelValues(kind).Inc()
}
