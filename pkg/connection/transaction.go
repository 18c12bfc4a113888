package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// TxOptions shape a transaction. The zero value is a read-write transaction
// at the engine's default isolation on a dedicated connection.
type TxOptions struct {
	// Isolation is the requested isolation level. Levels the detected
	// product does not support are rejected before any connection is
	// acquired; LevelDefault is always accepted.
	Isolation sql.IsolationLevel

	// ReadOnly routes the transaction through the read pool where the
	// mode allows it.
	ReadOnly bool

	// Shared requests the pinned handle under SingleWriter, serializing
	// this transaction with writes instead of running on an ephemeral
	// reader.
	Shared bool
}

// Transaction wraps a sql.Tx together with the handle it runs on, so that
// finishing the transaction releases the connection exactly once.
type Transaction struct {
	tx      *sql.Tx
	handle  *Handle
	mgr     *Manager
	started time.Time
	done    atomic.Bool
}

// BeginTransaction validates the request against the configured access mode
// and the product's isolation support, acquires a connection through the
// strategy, and starts the transaction on it.
func (m *Manager) BeginTransaction(ctx context.Context, opts TxOptions) (*Transaction, error) {
	if m.closed.Load() {
		return nil, NewInvalidOperationError("BeginTransaction", "manager is closed")
	}
	if opts.ReadOnly && !m.access.Readable() {
		return nil, NewInvalidOperationError("BeginTransaction", "read transaction on a write-only context")
	}
	if !opts.ReadOnly && !m.access.Writable() {
		return nil, NewInvalidOperationError("BeginTransaction", "write transaction on a read-only context")
	}
	if opts.Isolation != sql.LevelDefault && !dbcapabilities.SupportsIsolation(m.product, opts.Isolation) {
		return nil, NewInvalidOperationError("BeginTransaction",
			fmt.Sprintf("%s does not support isolation level %s", m.product, opts.Isolation))
	}

	purpose := PurposeWrite
	if opts.ReadOnly {
		purpose = PurposeRead
	}
	h, err := m.strategy.GetConnection(ctx, purpose, opts.Shared)
	if err != nil {
		return nil, err
	}
	tx, err := h.conn.BeginTx(ctx, &sql.TxOptions{Isolation: opts.Isolation, ReadOnly: opts.ReadOnly})
	if err != nil {
		_ = m.ReleaseConnection(h)
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	m.metrics.TransactionStarted()
	return &Transaction{tx: tx, handle: h, mgr: m, started: time.Now()}, nil
}

// Handle returns the connection the transaction runs on.
func (t *Transaction) Handle() *Handle { return t.handle }

// Commit commits the transaction and releases its connection. A commit the
// engine rejects counts as rolled back, since that is the state it leaves
// behind.
func (t *Transaction) Commit() error {
	if !t.done.CompareAndSwap(false, true) {
		return NewInvalidOperationError("Commit", "transaction already finished")
	}
	err := t.tx.Commit()
	if err != nil {
		t.mgr.metrics.TransactionRolledBack(time.Since(t.started))
	} else {
		t.mgr.metrics.TransactionCommitted(time.Since(t.started))
	}
	relErr := t.mgr.ReleaseConnection(t.handle)
	if err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return relErr
}

// Rollback aborts the transaction and releases its connection. Rolling back
// a finished transaction is a no-op so the call can sit in a defer.
func (t *Transaction) Rollback() error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}
	err := t.tx.Rollback()
	t.mgr.metrics.TransactionRolledBack(time.Since(t.started))
	relErr := t.mgr.ReleaseConnection(t.handle)
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return relErr
}

// ExecContext runs a statement inside the transaction.
func (t *Transaction) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err := t.mgr.observeCommand(start, err); err != nil {
		return nil, err
	}
	if n, raErr := res.RowsAffected(); raErr == nil {
		t.mgr.metrics.RowsAffected(n)
	}
	return res, nil
}

// QueryContext runs a query inside the transaction. The returned rows count
// reads as they are consumed.
func (t *Transaction) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err := t.mgr.observeCommand(start, err); err != nil {
		return nil, err
	}
	return &Rows{Rows: rows, mgr: t.mgr}, nil
}

// QueryRowContext runs a single-row query inside the transaction.
func (t *Transaction) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	_ = t.mgr.observeCommand(start, row.Err())
	return row
}
