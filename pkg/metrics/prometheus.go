package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric exported by a PrometheusBridge
// unless the caller overrides it.
const DefaultNamespace = "dbconn"

type bridgeMetric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	read      func(s *Snapshot) float64
}

// PrometheusBridge exports a Collector's statistics on a Prometheus
// registry. The bridge reads the collector on every scrape; it keeps no
// state of its own, so one collector may back any number of bridges.
type PrometheusBridge struct {
	c       *Collector
	metrics []bridgeMetric
}

// NewPrometheusBridge wraps a collector for registration with a Prometheus
// registry. An empty namespace falls back to DefaultNamespace.
func NewPrometheusBridge(c *Collector, namespace string) *PrometheusBridge {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	seconds := func(d time.Duration) float64 { return d.Seconds() }

	return &PrometheusBridge{
		c: c,
		metrics: []bridgeMetric{
			{desc("connections_opened_total", "Handles that reached the open state."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.ConnectionsOpened) }},
			{desc("connections_closed_total", "Handles that reached the closed state."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.ConnectionsClosed) }},
			{desc("connections_open", "Handles currently open."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return float64(s.ConnectionsOpen) }},
			{desc("connections_peak", "Historical maximum of concurrently open handles."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return float64(s.ConnectionsPeak) }},
			{desc("connections_created_total", "Acquisitions satisfied by a new handle."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.ConnectionsCreated) }},
			{desc("connections_reused_total", "Acquisitions satisfied by the pinned handle."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.ConnectionsReused) }},
			{desc("connection_failures_total", "Failed acquisition attempts."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.ConnectionFailures) }},
			{desc("connection_timeouts_total", "Failed acquisitions classified as timeouts."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.ConnectionTimeouts) }},
			{desc("pool_efficiency_ratio", "Reused acquisitions divided by created handles."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return s.PoolEfficiency }},

			{desc("commands_executed_total", "Statement attempts, successful or not."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.CommandsExecuted) }},
			{desc("commands_failed_total", "Statements that returned an error."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.CommandsFailed) }},
			{desc("commands_timed_out_total", "Statements that failed on a deadline."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.CommandsTimedOut) }},
			{desc("commands_cancelled_total", "Statements aborted by context cancellation."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.CommandsCancelled) }},
			{desc("rows_read_total", "Rows scanned by queries."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.RowsRead) }},
			{desc("rows_affected_total", "Rows changed by statements."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.RowsAffected) }},

			{desc("stmt_cache_hits_total", "Prepared statements served from a handle cache."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.StmtCacheHits) }},
			{desc("stmt_cache_evictions_total", "Prepared statements displaced by cache pressure."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.StmtCacheEvictions) }},

			{desc("transactions_active", "Transactions currently open."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return float64(s.TransactionsActive) }},
			{desc("transactions_peak", "Historical maximum of concurrently open transactions."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return float64(s.TransactionsPeak) }},
			{desc("transactions_committed_total", "Transactions that committed."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.TransactionsCommitted) }},
			{desc("transactions_rolled_back_total", "Transactions that rolled back."),
				prometheus.CounterValue, func(s *Snapshot) float64 { return float64(s.TransactionsRolledBack) }},

			{desc("command_duration_avg_seconds", "Moving average of successful statement durations."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return seconds(s.AvgCommandDuration) }},
			{desc("command_duration_p95_seconds", "95th percentile of recent successful statement durations."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return seconds(s.CommandDurationP95) }},
			{desc("command_duration_p99_seconds", "99th percentile of recent successful statement durations."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return seconds(s.CommandDurationP99) }},
			{desc("connection_hold_avg_seconds", "Moving average of handle hold durations."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return seconds(s.AvgConnectionHold) }},
			{desc("transaction_duration_avg_seconds", "Moving average of transaction durations."),
				prometheus.GaugeValue, func(s *Snapshot) float64 { return seconds(s.AvgTransactionTime) }},
		},
	}
}

// Describe implements prometheus.Collector.
func (b *PrometheusBridge) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range b.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (b *PrometheusBridge) Collect(ch chan<- prometheus.Metric) {
	s := b.c.Snapshot()
	for _, m := range b.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.valueType, m.read(&s))
	}
}
