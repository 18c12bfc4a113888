package connection

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	handleOpen int32 = iota
	handleClosed
)

// Handle wraps one dedicated physical connection checked out of the
// manager's pool. Every command run through it feeds the metrics collector.
// A Handle is safe for concurrent use; the underlying connection serializes
// whatever flows through it.
type Handle struct {
	id       uuid.UUID
	conn     *sql.Conn
	mgr      *Manager
	readOnly bool
	opened   time.Time

	pinned  atomic.Bool
	state   atomic.Int32
	applied atomic.Bool
	closing atomic.Bool
	stmts   *lru.Cache[string, *sql.Stmt]
}

func newHandle(m *Manager, conn *sql.Conn, readOnly bool) *Handle {
	h := &Handle{
		id:       uuid.New(),
		conn:     conn,
		mgr:      m,
		readOnly: readOnly,
		opened:   time.Now(),
	}
	if !m.disablePrepare {
		h.stmts, _ = lru.NewWithEvict[string, *sql.Stmt](m.stmtCacheSize, func(_ string, stmt *sql.Stmt) {
			if !h.closing.Load() {
				m.metrics.StmtCacheEviction()
			}
			_ = stmt.Close()
		})
	}
	m.metrics.ConnectionOpened()
	return h
}

// ID returns the handle's identifier, used for log correlation.
func (h *Handle) ID() string { return h.id.String() }

// ReadOnly reports whether the handle was acquired for read work.
func (h *Handle) ReadOnly() bool { return h.readOnly }

// Pinned reports whether this is the manager's persistent handle.
func (h *Handle) Pinned() bool { return h.pinned.Load() }

// ExecContext executes a statement. With ForcePrepare set, execution routes
// through the prepared-statement cache.
func (h *Handle) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	var (
		res sql.Result
		err error
	)
	if h.mgr.forcePrepare && h.stmts != nil {
		var stmt *sql.Stmt
		if stmt, err = h.prepared(ctx, query); err == nil {
			res, err = stmt.ExecContext(ctx, args...)
		}
	} else {
		res, err = h.conn.ExecContext(ctx, query, args...)
	}
	if err := h.mgr.observeCommand(start, err); err != nil {
		return nil, err
	}
	if n, raErr := res.RowsAffected(); raErr == nil {
		h.mgr.metrics.RowsAffected(n)
	}
	return res, nil
}

// QueryContext runs a query. The returned Rows counts rows read as the
// caller iterates.
func (h *Handle) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	start := time.Now()
	var (
		rows *sql.Rows
		err  error
	)
	if h.mgr.forcePrepare && h.stmts != nil {
		var stmt *sql.Stmt
		if stmt, err = h.prepared(ctx, query); err == nil {
			rows, err = stmt.QueryContext(ctx, args...)
		}
	} else {
		rows, err = h.conn.QueryContext(ctx, query, args...)
	}
	if err := h.mgr.observeCommand(start, err); err != nil {
		return nil, err
	}
	return &Rows{Rows: rows, mgr: h.mgr}, nil
}

// QueryRowContext runs a query expected to return at most one row. The query
// executes here; errors are deferred to Scan as with database/sql.
func (h *Handle) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := h.conn.QueryRowContext(ctx, query, args...)
	_ = h.mgr.observeCommand(start, row.Err())
	return row
}

// PrepareContext returns a prepared statement. Cached statements are owned
// by the handle and must not be closed by the caller; with DisablePrepare
// the statement is uncached and caller-owned.
func (h *Handle) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	if h.stmts == nil {
		return h.conn.PrepareContext(ctx, query)
	}
	return h.prepared(ctx, query)
}

// PingContext verifies the underlying connection is alive.
func (h *Handle) PingContext(ctx context.Context) error {
	return h.conn.PingContext(ctx)
}

// prepared serves a statement from the cache, preparing and caching it on
// miss. A concurrent preparer of the same text may win the insert; the
// loser's statement is closed and the cached one returned.
func (h *Handle) prepared(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := h.stmts.Get(query); ok {
		h.mgr.metrics.StmtCacheHit()
		return stmt, nil
	}
	stmt, err := h.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	if prev, found, _ := h.stmts.PeekOrAdd(query, stmt); found {
		_ = stmt.Close()
		return prev, nil
	}
	return stmt, nil
}

// applySettings runs the session-settings batch once for the life of the
// handle. Later calls are no-ops.
func (h *Handle) applySettings(ctx context.Context, settings []string) error {
	if len(settings) == 0 || !h.applied.CompareAndSwap(false, true) {
		return nil
	}
	for _, stmt := range settings {
		if _, err := h.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply session setting %q: %w", stmt, err)
		}
	}
	return nil
}

// Close releases the handle. Releasing a pinned handle is a no-op: the
// manager owns it for the life of the context. Close is idempotent.
func (h *Handle) Close() error {
	if h == nil || h.pinned.Load() {
		return nil
	}
	return h.forceClose()
}

// forceClose disposes the handle regardless of pinning. Cached statements
// are closed first; their closes do not count as cache evictions.
func (h *Handle) forceClose() error {
	if h == nil || !h.state.CompareAndSwap(handleOpen, handleClosed) {
		return nil
	}
	h.closing.Store(true)
	if h.stmts != nil {
		h.stmts.Purge()
	}
	err := h.conn.Close()
	h.mgr.metrics.ConnectionClosed(time.Since(h.opened))
	return err
}

// Rows decorates *sql.Rows with row-read accounting.
type Rows struct {
	*sql.Rows
	mgr *Manager
}

// Next advances to the next row, counting each row read.
func (r *Rows) Next() bool {
	ok := r.Rows.Next()
	if ok {
		r.mgr.metrics.RowsRead(1)
	}
	return ok
}
