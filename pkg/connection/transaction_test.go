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
	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

func TestBeginTransactionValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadOnAWriteOnlyContext", func(t *testing.T) {
		m := newManager(t, Config{
			ConnectionString: "postgres://app@db1/orders",
			Factory:          pgEngine(),
			Access:           AccessWriteOnly,
		})
		_, err := m.BeginTransaction(ctx, TxOptions{ReadOnly: true})
		require.Error(t, err)
		assert.True(t, IsInvalidOperation(err))
		assert.Contains(t, err.Error(), "write-only")
	})

	t.Run("WriteOnAReadOnlyContext", func(t *testing.T) {
		m := newManager(t, Config{
			ConnectionString: "postgres://app@db1/orders",
			Factory:          pgEngine(),
			Access:           AccessReadOnly,
		})
		_, err := m.BeginTransaction(ctx, TxOptions{})
		require.Error(t, err)
		assert.True(t, IsInvalidOperation(err))
		assert.Contains(t, err.Error(), "read-only")

		// Access restricts transactions, not raw acquisition.
		h, err := m.GetConnection(ctx, PurposeWrite, false)
		require.NoError(t, err)
		require.NoError(t, m.ReleaseConnection(h))
	})

	t.Run("UnsupportedIsolationLevel", func(t *testing.T) {
		m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: pgEngine()})
		_, err := m.BeginTransaction(ctx, TxOptions{Isolation: sql.LevelSnapshot})
		require.Error(t, err)
		assert.True(t, IsInvalidOperation(err))
		assert.Contains(t, err.Error(), "postgres")
		assert.Contains(t, err.Error(), "Snapshot")
	})

	t.Run("SupportedIsolationLevel", func(t *testing.T) {
		e := pgEngine()
		m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})
		tx, err := m.BeginTransaction(ctx, TxOptions{Isolation: sql.LevelSerializable})
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())
		assert.EqualValues(t, 1, e.Begins())
	})
}

func TestTransactionCommit(t *testing.T) {
	e := pgEngine()
	m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})
	ctx := context.Background()

	tx, err := m.BeginTransaction(ctx, TxOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.Begins())
	assert.EqualValues(t, 1, m.Collector().TransactionsActive())
	assert.False(t, tx.Handle().Pinned())

	res, err := tx.ExecContext(ctx, "UPDATE widgets SET n = n + 1")
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	require.NoError(t, tx.Commit())
	assert.EqualValues(t, 1, e.Commits())
	assert.EqualValues(t, 0, m.Collector().TransactionsActive())
	assert.EqualValues(t, 0, m.CurrentConnections(), "commit releases the handle")

	snap := m.Metrics()
	assert.EqualValues(t, 1, snap.TransactionsCommitted)
	assert.EqualValues(t, 0, snap.TransactionsRolledBack)

	// A finished transaction rejects a second commit but tolerates the
	// deferred rollback idiom.
	err = tx.Commit()
	require.Error(t, err)
	assert.True(t, IsInvalidOperation(err))
	assert.NoError(t, tx.Rollback())
	assert.EqualValues(t, 1, e.Commits())
	assert.EqualValues(t, 0, e.Rollbacks())
}

func TestTransactionRollback(t *testing.T) {
	e := pgEngine()
	m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})
	ctx := context.Background()

	tx, err := m.BeginTransaction(ctx, TxOptions{})
	require.NoError(t, err)

	_, err = tx.ExecContext(ctx, "DELETE FROM widgets")
	require.NoError(t, err)

	require.NoError(t, tx.Rollback())
	assert.EqualValues(t, 1, e.Rollbacks())
	assert.EqualValues(t, 0, m.CurrentConnections())

	snap := m.Metrics()
	assert.EqualValues(t, 1, snap.TransactionsRolledBack)
	assert.EqualValues(t, 0, snap.TransactionsCommitted)

	// Second rollback is a quiet no-op.
	require.NoError(t, tx.Rollback())
	assert.EqualValues(t, 1, e.Rollbacks())
}

func TestTransactionBeginFailureReleasesHandle(t *testing.T) {
	e := pgEngine(fakedb.WithBeginError(errors.New("deadlock detected")))
	m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})

	_, err := m.BeginTransaction(context.Background(), TxOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
	assert.EqualValues(t, 0, e.Begins())
	assert.EqualValues(t, 0, m.CurrentConnections(), "failed begin must not leak its handle")
	assert.EqualValues(t, 0, m.Collector().TransactionsActive())
}

func TestTransactionQuery(t *testing.T) {
	e := pgEngine(fakedb.WithQueryResult("FROM widgets",
		[]string{"id", "name"},
		[][]driver.Value{{int64(1), "anvil"}, {int64(2), "rocket"}},
	))
	m := newManager(t, Config{ConnectionString: "postgres://app@db1/orders", Factory: e})
	ctx := context.Background()

	tx, err := m.BeginTransaction(ctx, TxOptions{ReadOnly: true})
	require.NoError(t, err)
	assert.True(t, tx.Handle().ReadOnly())

	rows, err := tx.QueryContext(ctx, "SELECT id, name FROM widgets")
	require.NoError(t, err)

	var got []string
	for rows.Next() {
		var id int64
		var name string
		require.NoError(t, rows.Scan(&id, &name))
		got = append(got, name)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"anvil", "rocket"}, got)

	require.NoError(t, tx.Commit())

	snap := m.Metrics()
	assert.EqualValues(t, 2, snap.RowsRead, "only caller-facing rows count")
	assert.EqualValues(t, 1, snap.CommandsExecuted)
}

func TestTransactionOnPinnedHandle(t *testing.T) {
	e := fakedb.New("duckdb-fake", fakedb.WithProductHint(dbcapabilities.DuckDB))
	m := newManager(t, Config{ConnectionString: ":memory:", Factory: e})
	ctx := context.Background()

	// Writes and shared reads run on the pinned writer; finishing the
	// transaction must not dispose it.
	tx, err := m.BeginTransaction(ctx, TxOptions{})
	require.NoError(t, err)
	assert.True(t, tx.Handle().Pinned())
	require.NoError(t, tx.Commit())
	assert.EqualValues(t, 1, m.CurrentConnections())

	shared, err := m.BeginTransaction(ctx, TxOptions{ReadOnly: true, Shared: true})
	require.NoError(t, err)
	assert.Same(t, tx.Handle(), shared.Handle())
	require.NoError(t, shared.Rollback())
	assert.EqualValues(t, 1, m.CurrentConnections())

	// A plain read transaction runs on an ephemeral handle and disposes it.
	plain, err := m.BeginTransaction(ctx, TxOptions{ReadOnly: true})
	require.NoError(t, err)
	assert.False(t, plain.Handle().Pinned())
	require.NoError(t, plain.Commit())
	assert.EqualValues(t, 1, m.CurrentConnections())
}
