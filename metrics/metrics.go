// Package metrics holds the Prometheus instrumentation shared by the parser
// and the query engines.
package metrics

import (
	"errors"
	"time"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "balancer"

// MustRegister registers c with reg. When an identical collector is already
// registered, for instance by a second engine sharing the registry, the
// existing one is returned instead.
func MustRegister[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Metrics holds the metrics of one query engine.
type Metrics struct {
	queryDuration *prometheus.HistogramVec
	queriesTotal  *prometheus.CounterVec
	buildsTotal   *prometheus.CounterVec
}

// New creates and registers the metrics for the engine named subsystem, e.g.
// "add_liquidity".
func New(reg prometheus.Registerer, subsystem string) *Metrics {
	return &Metrics{
		queryDuration: MustRegister(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "query_duration_seconds",
			Help:      "Time taken to compute a query.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "pool_type"})),
		queriesTotal: MustRegister(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queries_total",
			Help:      "Total number of queries, labeled by kind, pool type and result.",
		}, []string{"kind", "pool_type", "result"})),
		buildsTotal: MustRegister(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "builds_total",
			Help:      "Total number of call builds, labeled by kind and result.",
		}, []string{"kind", "result"})),
	}
}

// ObserveQuery records one query that started at start and ended with err.
func (m *Metrics) ObserveQuery(kind, poolType string, start time.Time, err error) {
	m.queryDuration.WithLabelValues(kind, poolType).Observe(time.Since(start).Seconds())
	m.queriesTotal.WithLabelValues(kind, poolType, poolerrors.Reason(err)).Inc()
}

// ObserveBuild records one call build.
func (m *Metrics) ObserveBuild(kind string, err error) {
	m.buildsTotal.WithLabelValues(kind, poolerrors.Reason(err)).Inc()
}
