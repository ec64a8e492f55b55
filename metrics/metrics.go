// Package metrics implements Prometheus collectors for the engine's own
// hot paths (column scans, index probes, seqlock retries, executor
// DNF-group combination), exposed through a Registerer the embedding host
// attaches to its own registry rather than a package-global default. The
// arena feeds the seqlock and index-upgrade collectors; the executor feeds
// the scan, probe, and group collectors via SetMetrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registerer is the subset of prometheus.Registerer Collectors need; hosts
// pass their own *prometheus.Registry (or prometheus.DefaultRegisterer).
type Registerer interface {
	MustRegister(...prometheus.Collector)
}

// Collectors bundles every metric Memris emits.
type Collectors struct {
	ScansTotal           *prometheus.CounterVec
	IndexProbesTotal     *prometheus.CounterVec
	SeqlockRetriesTotal  prometheus.Counter
	SeqlockEscalations   prometheus.Counter
	ExecutorGroupsTotal  prometheus.Counter
	IndexUpgradesTotal   *prometheus.CounterVec
}

// New builds a fresh Collectors set under namespace "memris".
func New() *Collectors {
	return &Collectors{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memris",
			Name:      "column_scans_total",
			Help:      "Full or predicate column scans performed, by entity and column.",
		}, []string{"entity", "column"}),
		IndexProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memris",
			Name:      "index_probes_total",
			Help:      "Index probes performed, labeled by index name and hit/miss outcome.",
		}, []string{"index", "outcome"}),
		SeqlockRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memris",
			Name:      "seqlock_retries_total",
			Help:      "Optimistic seqlock read retries across all tables.",
		}),
		SeqlockEscalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memris",
			Name:      "seqlock_fallback_total",
			Help:      "Reads that exhausted the seqlock retry budget and fell back to the shared lock.",
		}),
		ExecutorGroupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memris",
			Name:      "executor_dnf_groups_total",
			Help:      "DNF condition groups evaluated by the executor across all queries.",
		}),
		IndexUpgradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memris",
			Name:      "index_bucket_upgrades_total",
			Help:      "RowIdSet buckets upgraded from sparse to dense representation.",
		}, []string{"index"}),
	}
}

// MustRegister registers every collector with reg.
func (c *Collectors) MustRegister(reg Registerer) {
	reg.MustRegister(
		c.ScansTotal,
		c.IndexProbesTotal,
		c.SeqlockRetriesTotal,
		c.SeqlockEscalations,
		c.ExecutorGroupsTotal,
		c.IndexUpgradesTotal,
	)
}

// ObserveScan records a column scan.
func (c *Collectors) ObserveScan(entity, column string) {
	c.ScansTotal.WithLabelValues(entity, column).Inc()
}

// ObserveIndexProbe records an index probe outcome ("hit" or "miss").
func (c *Collectors) ObserveIndexProbe(index, outcome string) {
	c.IndexProbesTotal.WithLabelValues(index, outcome).Inc()
}

// ObserveIndexUpgrade records a sparse->dense bucket upgrade for index.
func (c *Collectors) ObserveIndexUpgrade(index string) {
	c.IndexUpgradesTotal.WithLabelValues(index).Inc()
}
