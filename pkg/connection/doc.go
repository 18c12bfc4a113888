// Package connection manages connection and session lifecycles for any
// relational engine reachable through database/sql.
//
// A Manager is constructed once per data source. During construction it opens
// a probe connection, detects the database product and its topology, resolves
// the requested connection mode into one the engine can actually support, and
// builds the matching strategy: Standard (pool-backed ephemeral handles),
// KeepAlive (ephemeral handles plus a sentinel that keeps lazy-starting
// servers warm), SingleConnection (one pinned handle for everything), or
// SingleWriter (pinned writes, ephemeral reads). After construction the
// Manager's state is fixed; steady-state operation synchronizes through
// atomics only.
package connection
