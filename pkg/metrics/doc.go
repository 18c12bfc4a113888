// Package metrics provides lock-free counters and smoothed statistics for
// connection and command activity. A single Collector instance is owned by
// each connection manager and updated from every acquire/release and command
// execution path.
//
// Every counter update is individually atomic. Historical-max gauges and the
// moving averages use a compare-and-retry loop instead of a lock, so the
// collector never blocks a caller. The price is that Snapshot is consistent
// per field only: each field reflects a valid value at some instant, but two
// fields of the same snapshot may come from different instants. Callers that
// need exact cross-field arithmetic must derive it from a single field.
package metrics
