package metrics

import (
	"sync/atomic"
	"time"
)

// Defaults for the smoothing knobs when an Options field is left zero.
const (
	DefaultHalfLifeSamples = 64
	DefaultRingCapacity    = 256
)

// Options tunes the smoothed statistics of a Collector.
type Options struct {
	// HalfLifeSamples is the number of observations after which an old
	// value's weight in the moving averages decays to one half.
	HalfLifeSamples int

	// RingCapacity is how many recent successful-command durations are
	// retained for percentile approximation.
	RingCapacity int
}

// Collector accumulates connection, command, and transaction activity.
// All methods are safe for concurrent use and never block.
type Collector struct {
	// Connection state transitions.
	connOpened  atomic.Int64
	connClosed  atomic.Int64
	connCurrent atomic.Int64
	connPeak    atomic.Int64

	// Connection acquisition outcomes.
	connCreated  atomic.Int64
	connReused   atomic.Int64
	connFailures atomic.Int64
	connTimeouts atomic.Int64

	// Command outcomes. Executed counts every attempt; failed, timed out,
	// and cancelled are disjoint error buckets.
	cmdExecuted  atomic.Int64
	cmdFailed    atomic.Int64
	cmdTimedOut  atomic.Int64
	cmdCancelled atomic.Int64

	rowsRead     atomic.Int64
	rowsAffected atomic.Int64

	stmtCacheHits      atomic.Int64
	stmtCacheEvictions atomic.Int64

	txActive     atomic.Int64
	txPeak       atomic.Int64
	txCommitted  atomic.Int64
	txRolledBack atomic.Int64

	cmdDuration  *ewma
	connHold     *ewma
	txDuration   *ewma
	successTimes *durationRing
}

// NewCollector returns a collector with the given smoothing options.
func NewCollector(opts Options) *Collector {
	if opts.HalfLifeSamples <= 0 {
		opts.HalfLifeSamples = DefaultHalfLifeSamples
	}
	if opts.RingCapacity <= 0 {
		opts.RingCapacity = DefaultRingCapacity
	}
	return &Collector{
		cmdDuration:  newEWMA(opts.HalfLifeSamples),
		connHold:     newEWMA(opts.HalfLifeSamples),
		txDuration:   newEWMA(opts.HalfLifeSamples),
		successTimes: newDurationRing(opts.RingCapacity),
	}
}

// raiseMax lifts a historical-max register to at least v. Lock-free: read,
// compare, attempt swap, retry on contention.
func raiseMax(max *atomic.Int64, v int64) {
	for {
		cur := max.Load()
		if v <= cur {
			return
		}
		if max.CompareAndSwap(cur, v) {
			return
		}
	}
}

// ConnectionOpened records a handle transitioning to the open state.
func (c *Collector) ConnectionOpened() {
	c.connOpened.Add(1)
	raiseMax(&c.connPeak, c.connCurrent.Add(1))
}

// ConnectionClosed records a handle transitioning to the closed state,
// with the time it was held open.
func (c *Collector) ConnectionClosed(held time.Duration) {
	c.connClosed.Add(1)
	c.connCurrent.Add(-1)
	c.connHold.Observe(held)
}

// ConnectionCreated records a successful acquisition of a new handle.
func (c *Collector) ConnectionCreated() {
	c.connCreated.Add(1)
}

// ConnectionReused records an acquisition satisfied by the pinned handle.
func (c *Collector) ConnectionReused() {
	c.connReused.Add(1)
}

// ConnectionFailed records an acquisition failure. Timeout failures are
// additionally tracked in their own counter.
func (c *Collector) ConnectionFailed(timeout bool) {
	c.connFailures.Add(1)
	if timeout {
		c.connTimeouts.Add(1)
	}
}

// CommandSucceeded records a completed statement with its duration. Only
// successful durations feed the moving average and the percentile ring.
func (c *Collector) CommandSucceeded(d time.Duration) {
	c.cmdExecuted.Add(1)
	c.cmdDuration.Observe(d)
	c.successTimes.Record(d)
}

// CommandFailed records a statement that returned an error.
func (c *Collector) CommandFailed() {
	c.cmdExecuted.Add(1)
	c.cmdFailed.Add(1)
}

// CommandTimedOut records a statement that failed on a deadline.
func (c *Collector) CommandTimedOut() {
	c.cmdExecuted.Add(1)
	c.cmdTimedOut.Add(1)
}

// CommandCancelled records a statement aborted by context cancellation.
func (c *Collector) CommandCancelled() {
	c.cmdExecuted.Add(1)
	c.cmdCancelled.Add(1)
}

// RowsRead adds to the cumulative count of rows scanned by queries.
func (c *Collector) RowsRead(n int64) {
	if n > 0 {
		c.rowsRead.Add(n)
	}
}

// RowsAffected adds to the cumulative count of rows changed by statements.
func (c *Collector) RowsAffected(n int64) {
	if n > 0 {
		c.rowsAffected.Add(n)
	}
}

// StmtCacheHit records a prepared statement served from a handle cache.
func (c *Collector) StmtCacheHit() {
	c.stmtCacheHits.Add(1)
}

// StmtCacheEviction records a prepared statement displaced from a handle
// cache by capacity pressure.
func (c *Collector) StmtCacheEviction() {
	c.stmtCacheEvictions.Add(1)
}

// TransactionStarted records a transaction beginning.
func (c *Collector) TransactionStarted() {
	raiseMax(&c.txPeak, c.txActive.Add(1))
}

// TransactionCommitted records a committed transaction with its duration.
func (c *Collector) TransactionCommitted(d time.Duration) {
	c.txActive.Add(-1)
	c.txCommitted.Add(1)
	c.txDuration.Observe(d)
}

// TransactionRolledBack records a rolled-back transaction with its duration.
func (c *Collector) TransactionRolledBack(d time.Duration) {
	c.txActive.Add(-1)
	c.txRolledBack.Add(1)
	c.txDuration.Observe(d)
}

// ConnectionsOpen returns the current number of open handles.
func (c *Collector) ConnectionsOpen() int64 { return c.connCurrent.Load() }

// ConnectionsPeak returns the historical maximum of open handles. The stored
// maximum is raised after the gauge, so this accessor lifts the result to the
// live gauge value; the peak a caller observes is never below the gauge it
// reads next.
func (c *Collector) ConnectionsPeak() int64 {
	peak := c.connPeak.Load()
	if cur := c.connCurrent.Load(); cur > peak {
		return cur
	}
	return peak
}

// ConnectionsCreated returns the total number of handles acquired new.
func (c *Collector) ConnectionsCreated() int64 { return c.connCreated.Load() }

// ConnectionsReused returns the total number of pinned-handle acquisitions.
func (c *Collector) ConnectionsReused() int64 { return c.connReused.Load() }

// ConnectionFailures returns the total number of failed acquisitions.
func (c *Collector) ConnectionFailures() int64 { return c.connFailures.Load() }

// ConnectionTimeouts returns the failed acquisitions classified as timeouts.
func (c *Collector) ConnectionTimeouts() int64 { return c.connTimeouts.Load() }

// PoolEfficiency is reused divided by created, and zero before anything has
// been created.
func (c *Collector) PoolEfficiency() float64 {
	created := c.connCreated.Load()
	if created == 0 {
		return 0
	}
	return float64(c.connReused.Load()) / float64(created)
}

// TransactionsActive returns the number of transactions currently open.
func (c *Collector) TransactionsActive() int64 { return c.txActive.Load() }

// TransactionsPeak returns the historical maximum of concurrently open
// transactions, lifted to the live gauge like ConnectionsPeak.
func (c *Collector) TransactionsPeak() int64 {
	peak := c.txPeak.Load()
	if cur := c.txActive.Load(); cur > peak {
		return cur
	}
	return peak
}

// Snapshot is a point-in-time copy of every statistic the collector holds.
// Each field is individually consistent; the snapshot as a whole is not
// taken under a lock, so fields may reflect slightly different instants.
type Snapshot struct {
	ConnectionsOpened  int64
	ConnectionsClosed  int64
	ConnectionsOpen    int64
	ConnectionsPeak    int64
	ConnectionsCreated int64
	ConnectionsReused  int64
	ConnectionFailures int64
	ConnectionTimeouts int64
	PoolEfficiency     float64

	CommandsExecuted  int64
	CommandsFailed    int64
	CommandsTimedOut  int64
	CommandsCancelled int64
	RowsRead          int64
	RowsAffected      int64

	StmtCacheHits      int64
	StmtCacheEvictions int64

	TransactionsActive     int64
	TransactionsPeak       int64
	TransactionsCommitted  int64
	TransactionsRolledBack int64

	AvgCommandDuration time.Duration
	AvgConnectionHold  time.Duration
	AvgTransactionTime time.Duration
	CommandDurationP95 time.Duration
	CommandDurationP99 time.Duration
}

// Snapshot captures the current statistics.
func (c *Collector) Snapshot() Snapshot {
	ps := c.successTimes.Percentiles(0.95, 0.99)
	return Snapshot{
		ConnectionsOpened:  c.connOpened.Load(),
		ConnectionsClosed:  c.connClosed.Load(),
		ConnectionsOpen:    c.ConnectionsOpen(),
		ConnectionsPeak:    c.ConnectionsPeak(),
		ConnectionsCreated: c.connCreated.Load(),
		ConnectionsReused:  c.connReused.Load(),
		ConnectionFailures: c.connFailures.Load(),
		ConnectionTimeouts: c.connTimeouts.Load(),
		PoolEfficiency:     c.PoolEfficiency(),

		CommandsExecuted:  c.cmdExecuted.Load(),
		CommandsFailed:    c.cmdFailed.Load(),
		CommandsTimedOut:  c.cmdTimedOut.Load(),
		CommandsCancelled: c.cmdCancelled.Load(),
		RowsRead:          c.rowsRead.Load(),
		RowsAffected:      c.rowsAffected.Load(),

		StmtCacheHits:      c.stmtCacheHits.Load(),
		StmtCacheEvictions: c.stmtCacheEvictions.Load(),

		TransactionsActive:     c.txActive.Load(),
		TransactionsPeak:       c.TransactionsPeak(),
		TransactionsCommitted:  c.txCommitted.Load(),
		TransactionsRolledBack: c.txRolledBack.Load(),

		AvgCommandDuration: c.cmdDuration.Value(),
		AvgConnectionHold:  c.connHold.Value(),
		AvgTransactionTime: c.txDuration.Value(),
		CommandDurationP95: ps[0],
		CommandDurationP99: ps[1],
	}
}
