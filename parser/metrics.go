package parser

import (
	"github.com/defistate/balancer-sdk-go/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics for the parser.
type Metrics struct {
	parsedTotal  *prometheus.CounterVec
	droppedTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics for the parser.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		parsedTotal: metrics.MustRegister(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balancer_parser_pools_parsed_total",
			Help: "Total number of raw pools parsed into typed pools, labeled by pool type.",
		}, []string{"pool_type"})),
		droppedTotal: metrics.MustRegister(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balancer_parser_pools_dropped_total",
			Help: "Total number of raw pools skipped (unmatched) or rejected (invalid), labeled by reason.",
		}, []string{"reason"})),
	}
}
