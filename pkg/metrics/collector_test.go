package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	t.Run("Connections", func(t *testing.T) {
		c := NewCollector(Options{})

		c.ConnectionOpened()
		c.ConnectionOpened()
		c.ConnectionClosed(40 * time.Millisecond)
		c.ConnectionOpened()

		assert.Equal(t, int64(2), c.ConnectionsOpen())
		assert.Equal(t, int64(2), c.ConnectionsPeak())

		s := c.Snapshot()
		assert.Equal(t, int64(3), s.ConnectionsOpened)
		assert.Equal(t, int64(1), s.ConnectionsClosed)
		assert.Equal(t, 40*time.Millisecond, s.AvgConnectionHold)
	})

	t.Run("Acquisitions", func(t *testing.T) {
		c := NewCollector(Options{})

		c.ConnectionCreated()
		c.ConnectionCreated()
		c.ConnectionReused()
		c.ConnectionReused()
		c.ConnectionReused()
		c.ConnectionFailed(false)
		c.ConnectionFailed(true)

		assert.Equal(t, int64(2), c.ConnectionsCreated())
		assert.Equal(t, int64(3), c.ConnectionsReused())
		assert.Equal(t, int64(2), c.ConnectionFailures())
		assert.Equal(t, int64(1), c.ConnectionTimeouts())
		assert.Equal(t, 1.5, c.PoolEfficiency())
	})

	t.Run("PoolEfficiencyBeforeFirstCreate", func(t *testing.T) {
		c := NewCollector(Options{})
		c.ConnectionReused()
		assert.Equal(t, 0.0, c.PoolEfficiency())
	})

	t.Run("Commands", func(t *testing.T) {
		c := NewCollector(Options{})

		c.CommandSucceeded(10 * time.Millisecond)
		c.CommandSucceeded(10 * time.Millisecond)
		c.CommandFailed()
		c.CommandTimedOut()
		c.CommandCancelled()

		s := c.Snapshot()
		assert.Equal(t, int64(5), s.CommandsExecuted)
		assert.Equal(t, int64(1), s.CommandsFailed)
		assert.Equal(t, int64(1), s.CommandsTimedOut)
		assert.Equal(t, int64(1), s.CommandsCancelled)
		assert.Equal(t, 10*time.Millisecond, s.AvgCommandDuration)
		assert.Equal(t, 10*time.Millisecond, s.CommandDurationP95)
		assert.Equal(t, 10*time.Millisecond, s.CommandDurationP99)
	})

	t.Run("Rows", func(t *testing.T) {
		c := NewCollector(Options{})

		c.RowsRead(5)
		c.RowsRead(0)
		c.RowsRead(-3)
		c.RowsAffected(7)
		c.RowsAffected(-1)

		s := c.Snapshot()
		assert.Equal(t, int64(5), s.RowsRead)
		assert.Equal(t, int64(7), s.RowsAffected)
	})

	t.Run("StatementCache", func(t *testing.T) {
		c := NewCollector(Options{})

		c.StmtCacheHit()
		c.StmtCacheHit()
		c.StmtCacheEviction()

		s := c.Snapshot()
		assert.Equal(t, int64(2), s.StmtCacheHits)
		assert.Equal(t, int64(1), s.StmtCacheEvictions)
	})

	t.Run("Transactions", func(t *testing.T) {
		c := NewCollector(Options{})

		c.TransactionStarted()
		c.TransactionStarted()
		assert.Equal(t, int64(2), c.TransactionsActive())
		assert.Equal(t, int64(2), c.TransactionsPeak())

		c.TransactionCommitted(20 * time.Millisecond)
		c.TransactionRolledBack(20 * time.Millisecond)

		s := c.Snapshot()
		assert.Equal(t, int64(0), s.TransactionsActive)
		assert.Equal(t, int64(2), s.TransactionsPeak)
		assert.Equal(t, int64(1), s.TransactionsCommitted)
		assert.Equal(t, int64(1), s.TransactionsRolledBack)
		assert.Equal(t, 20*time.Millisecond, s.AvgTransactionTime)
	})
}

func TestCollectorConcurrent(t *testing.T) {
	const goroutines = 100
	const iterations = 200

	c := NewCollector(Options{})

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				c.ConnectionCreated()
				c.ConnectionOpened()
				c.CommandSucceeded(time.Millisecond)
				c.ConnectionClosed(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	const total = goroutines * iterations
	s := c.Snapshot()
	assert.Equal(t, int64(total), s.ConnectionsCreated)
	assert.Equal(t, int64(total), s.ConnectionsOpened)
	assert.Equal(t, int64(total), s.ConnectionsClosed)
	assert.Equal(t, int64(total), s.CommandsExecuted)
	assert.Equal(t, int64(0), s.ConnectionsOpen)
	assert.GreaterOrEqual(t, s.ConnectionsPeak, int64(1))
	assert.LessOrEqual(t, s.ConnectionsPeak, int64(goroutines))
}

func TestEWMA(t *testing.T) {
	t.Run("Unseeded", func(t *testing.T) {
		e := newEWMA(1)
		assert.Equal(t, time.Duration(0), e.Value())
	})

	t.Run("HalfLifeOne", func(t *testing.T) {
		e := newEWMA(1)

		e.Observe(100 * time.Millisecond)
		assert.Equal(t, 100*time.Millisecond, e.Value())

		e.Observe(200 * time.Millisecond)
		assert.Equal(t, 150*time.Millisecond, e.Value())

		e.Observe(300 * time.Millisecond)
		assert.Equal(t, 225*time.Millisecond, e.Value())
	})

	t.Run("ClampsHalfLife", func(t *testing.T) {
		e := newEWMA(0)
		e.Observe(100 * time.Millisecond)
		e.Observe(200 * time.Millisecond)
		assert.Equal(t, 150*time.Millisecond, e.Value())
	})

	t.Run("StaysWithinBounds", func(t *testing.T) {
		e := newEWMA(64)
		e.Observe(10 * time.Millisecond)
		for i := 0; i < 500; i++ {
			e.Observe(50 * time.Millisecond)
		}
		v := e.Value()
		assert.Greater(t, v, 10*time.Millisecond)
		assert.LessOrEqual(t, v, 50*time.Millisecond)
	})
}

func TestDurationRing(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		r := newDurationRing(8)
		assert.Equal(t, time.Duration(0), r.Percentile(0.95))
		assert.Equal(t, []time.Duration{0, 0}, r.Percentiles(0.95, 0.99))
	})

	t.Run("Percentiles", func(t *testing.T) {
		r := newDurationRing(16)
		for i := 1; i <= 10; i++ {
			r.Record(time.Duration(i) * 10 * time.Millisecond)
		}

		assert.Equal(t, 50*time.Millisecond, r.Percentile(0.5))
		assert.Equal(t, 90*time.Millisecond, r.Percentile(0.95))
		assert.Equal(t, 100*time.Millisecond, r.Percentile(1.0))
	})

	t.Run("OverwritesOldest", func(t *testing.T) {
		r := newDurationRing(4)
		for i := 0; i < 4; i++ {
			r.Record(time.Millisecond)
		}
		for i := 0; i < 4; i++ {
			r.Record(time.Second)
		}

		assert.Equal(t, time.Second, r.Percentile(0.5))
		assert.Equal(t, time.Second, r.Percentile(1.0))
	})
}
