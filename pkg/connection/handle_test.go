package connection

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pengdows/pengdows.crud-sub014/internal/fakedb"
)

func TestPrepareCaching(t *testing.T) {
	e := pgEngine()
	m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})
	ctx := context.Background()

	h, err := m.GetConnection(ctx, PurposeWrite, false)
	require.NoError(t, err)
	defer func() { _ = m.ReleaseConnection(h) }()

	const q = "SELECT id FROM orders WHERE ref = $1"
	st1, err := h.PrepareContext(ctx, q)
	require.NoError(t, err)
	st2, err := h.PrepareContext(ctx, q)
	require.NoError(t, err)

	// The repeat prepare is served from the cache: same statement, one
	// driver-side prepare, one recorded hit.
	assert.Same(t, st1, st2)
	assert.EqualValues(t, 1, e.Prepares())
	assert.EqualValues(t, 1, m.Metrics().StmtCacheHits)
}

func TestStmtCacheEviction(t *testing.T) {
	e := pgEngine()
	m := newManager(t, Config{
		ConnectionString: "postgres://app@db1/orders",
		Factory:          e,
		StmtCacheSize:    2,
	})
	ctx := context.Background()

	h, err := m.GetConnection(ctx, PurposeWrite, false)
	require.NoError(t, err)

	for _, q := range []string{
		"SELECT 1 FROM customers",
		"SELECT 1 FROM orders",
		"SELECT 1 FROM invoices",
	} {
		_, err := h.PrepareContext(ctx, q)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, e.Prepares())

	// The third prepare displaced the oldest entry from the two-slot cache.
	assert.EqualValues(t, 1, e.StmtCloses())
	assert.EqualValues(t, 1, m.Metrics().StmtCacheEvictions)

	// Releasing the handle closes the survivors without counting them as
	// evictions.
	require.NoError(t, m.ReleaseConnection(h))
	assert.EqualValues(t, 3, e.StmtCloses())
	assert.EqualValues(t, 1, m.Metrics().StmtCacheEvictions)
}

func TestForcePrepare(t *testing.T) {
	e := pgEngine()
	m := newManager(t, Config{
		ConnectionString: "postgres://app@db1/orders",
		Factory:          e,
		ForcePrepare:     true,
	})
	ctx := context.Background()

	h, err := m.GetConnection(ctx, PurposeWrite, false)
	require.NoError(t, err)
	defer func() { _ = m.ReleaseConnection(h) }()

	const q = "UPDATE orders SET status = $1 WHERE id = $2"
	_, err = h.ExecContext(ctx, q, "shipped", 7)
	require.NoError(t, err)
	_, err = h.ExecContext(ctx, q, "returned", 8)
	require.NoError(t, err)

	// Both executions rode one prepared statement.
	assert.EqualValues(t, 1, e.Prepares())

	snap := m.Metrics()
	assert.EqualValues(t, 1, snap.StmtCacheHits)
	assert.EqualValues(t, 2, snap.CommandsExecuted)
	assert.EqualValues(t, 2, snap.RowsAffected)

	var runs int
	for _, s := range e.Statements() {
		if s.SQL == q {
			runs++
		}
	}
	assert.Equal(t, 2, runs)
}

func TestDisablePrepare(t *testing.T) {
	e := pgEngine()
	m := newManager(t, Config{
		ConnectionString: "postgres://app@db1/orders",
		Factory:          e,
		DisablePrepare:   true,
	})
	ctx := context.Background()

	h, err := m.GetConnection(ctx, PurposeWrite, false)
	require.NoError(t, err)
	defer func() { _ = m.ReleaseConnection(h) }()

	assert.Nil(t, h.stmts)

	const q = "SELECT id FROM orders"
	st1, err := h.PrepareContext(ctx, q)
	require.NoError(t, err)
	st2, err := h.PrepareContext(ctx, q)
	require.NoError(t, err)

	// No cache: every prepare reaches the driver and the caller owns the
	// statements.
	assert.NotSame(t, st1, st2)
	assert.EqualValues(t, 2, e.Prepares())
	assert.EqualValues(t, 0, m.Metrics().StmtCacheHits)

	require.NoError(t, st1.Close())
	assert.EqualValues(t, 1, e.StmtCloses())
	_ = st2.Close()
}

func TestHandleQueryContext(t *testing.T) {
	e := pgEngine(
		fakedb.WithQueryResult("FROM parts", []string{"id", "name"}, [][]driver.Value{
			{int64(1), "anvil"},
			{int64(2), "rocket"},
		}),
	)
	m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})
	ctx := context.Background()

	h, err := m.GetConnection(ctx, PurposeRead, false)
	require.NoError(t, err)
	defer func() { _ = m.ReleaseConnection(h) }()
	assert.True(t, h.ReadOnly())

	rows, err := h.QueryContext(ctx, "SELECT id, name FROM parts")
	require.NoError(t, err)

	var names []string
	for rows.Next() {
		var (
			id   int64
			name string
		)
		require.NoError(t, rows.Scan(&id, &name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())

	assert.Equal(t, []string{"anvil", "rocket"}, names)

	snap := m.Metrics()
	assert.EqualValues(t, 2, snap.RowsRead)
	assert.EqualValues(t, 1, snap.CommandsExecuted)
}

func TestQueryRowContext(t *testing.T) {
	e := pgEngine(
		fakedb.WithQueryResult("FROM widgets", []string{"name"}, [][]driver.Value{{"anvil"}}),
		fakedb.WithQueryResult("FROM nothing", []string{"name"}, nil),
	)
	m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})
	ctx := context.Background()

	h, err := m.GetConnection(ctx, PurposeRead, false)
	require.NoError(t, err)
	defer func() { _ = m.ReleaseConnection(h) }()

	var name string
	require.NoError(t, h.QueryRowContext(ctx, "SELECT name FROM widgets WHERE id = 1").Scan(&name))
	assert.Equal(t, "anvil", name)

	// An empty result surfaces at Scan time; the command itself succeeded.
	err = h.QueryRowContext(ctx, "SELECT name FROM nothing").Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	snap := m.Metrics()
	assert.EqualValues(t, 2, snap.CommandsExecuted)
	assert.EqualValues(t, 0, snap.CommandsFailed)
}

func TestExecFailureCounting(t *testing.T) {
	boom := errors.New("relation does not exist")
	e := pgEngine(fakedb.WithExecError("busted", boom))
	m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})
	ctx := context.Background()

	h, err := m.GetConnection(ctx, PurposeWrite, false)
	require.NoError(t, err)
	defer func() { _ = m.ReleaseConnection(h) }()

	_, err = h.ExecContext(ctx, "UPDATE busted SET x = 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	snap := m.Metrics()
	assert.EqualValues(t, 1, snap.CommandsExecuted)
	assert.EqualValues(t, 1, snap.CommandsFailed)
	assert.EqualValues(t, 0, snap.RowsAffected)
}
