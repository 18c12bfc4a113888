// Package fakedb is a scriptable database/sql driver used by tests. An
// Engine poses as a driver factory; options script how its connections
// answer version probes, queries, statements, and transactions, and the
// engine records everything that happened for assertions.
package fakedb

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// Statement is one statement seen by a connection, in arrival order.
type Statement struct {
	Conn int64
	SQL  string
}

type patternErr struct {
	substr string
	err    error
}

type queryScript struct {
	substr  string
	columns []string
	rows    [][]driver.Value
}

// Engine is the shared state behind every connection the fake driver hands
// out. It satisfies the driver-factory surface the connection manager
// expects, so tests pass an Engine wherever a real engine factory would go.
type Engine struct {
	name string

	mu             sync.Mutex
	probeResponses map[string]string
	probeErr       error
	hint           dbcapabilities.Product
	connectErr     error
	connectDelay   time.Duration
	failAfter      int64
	failAfterErr   error
	pingErr        error
	beginErr       error
	execErrs       []patternErr
	queryScripts   []queryScript
	statements     []Statement
	dsns           []string

	connects   atomic.Int64
	opens      atomic.Int64
	closes     atomic.Int64
	pings      atomic.Int64
	resets     atomic.Int64
	prepares   atomic.Int64
	stmtCloses atomic.Int64
	begins     atomic.Int64
	commits    atomic.Int64
	rollbacks  atomic.Int64
	nextConnID atomic.Int64
}

// Option scripts an Engine.
type Option func(*Engine)

// WithVersionString makes the first version probe succeed with v. All other
// probes keep failing.
func WithVersionString(v string) Option {
	return func(e *Engine) { e.probeResponses[dbcapabilities.VersionProbes[0]] = v }
}

// WithProbeResponse makes one specific version probe succeed with v.
func WithProbeResponse(probe, v string) Option {
	return func(e *Engine) { e.probeResponses[probe] = v }
}

// WithProbeError fails every version probe with err instead of the default
// not-scripted error.
func WithProbeError(err error) Option {
	return func(e *Engine) { e.probeErr = err }
}

// WithProductHint makes the engine advertise a product without any probing.
func WithProductHint(p dbcapabilities.Product) Option {
	return func(e *Engine) { e.hint = p }
}

// WithConnectError fails every physical connect with err.
func WithConnectError(err error) Option {
	return func(e *Engine) { e.connectErr = err }
}

// WithConnectFailAfter lets the first n physical connects succeed and fails
// the rest with err.
func WithConnectFailAfter(n int, err error) Option {
	return func(e *Engine) { e.failAfter, e.failAfterErr = int64(n), err }
}

// WithConnectDelay makes every physical connect wait for d or the caller's
// context, whichever ends first.
func WithConnectDelay(d time.Duration) Option {
	return func(e *Engine) { e.connectDelay = d }
}

// WithPingError fails every ping with err.
func WithPingError(err error) Option {
	return func(e *Engine) { e.pingErr = err }
}

// WithBeginError fails every transaction begin with err.
func WithBeginError(err error) Option {
	return func(e *Engine) { e.beginErr = err }
}

// WithExecError fails statements whose text contains substr with err.
func WithExecError(substr string, err error) Option {
	return func(e *Engine) { e.execErrs = append(e.execErrs, patternErr{substr, err}) }
}

// WithQueryResult answers queries whose text contains substr with the given
// result set. Scripts are consulted in the order they were added.
func WithQueryResult(substr string, columns []string, rows [][]driver.Value) Option {
	return func(e *Engine) {
		e.queryScripts = append(e.queryScripts, queryScript{substr, columns, rows})
	}
}

// New returns an engine that poses as a driver factory named name.
func New(name string, opts ...Option) *Engine {
	e := &Engine{
		name:           name,
		probeResponses: make(map[string]string),
		failAfter:      -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements the factory surface.
func (e *Engine) Name() string { return e.name }

// OpenConnector implements the factory surface.
func (e *Engine) OpenConnector(dsn string) (driver.Connector, error) {
	e.mu.Lock()
	e.dsns = append(e.dsns, dsn)
	e.mu.Unlock()
	return &connector{engine: e, dsn: dsn}, nil
}

// ConnectionStringBuilder implements the factory surface.
func (e *Engine) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return dbcapabilities.NewAutoBuilder()
}

// ProductHint reports the scripted product, or Unknown when none was set.
func (e *Engine) ProductHint() dbcapabilities.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hint == "" {
		return dbcapabilities.Unknown
	}
	return e.hint
}

// Connects returns how many physical connects were attempted.
func (e *Engine) Connects() int64 { return e.connects.Load() }

// Opens returns how many physical connections were established.
func (e *Engine) Opens() int64 { return e.opens.Load() }

// Closes returns how many physical connections were closed.
func (e *Engine) Closes() int64 { return e.closes.Load() }

// Pings returns how many pings were issued across all connections.
func (e *Engine) Pings() int64 { return e.pings.Load() }

// Resets returns how many pool session resets the driver saw.
func (e *Engine) Resets() int64 { return e.resets.Load() }

// Prepares returns how many statements were prepared.
func (e *Engine) Prepares() int64 { return e.prepares.Load() }

// StmtCloses returns how many prepared statements were closed.
func (e *Engine) StmtCloses() int64 { return e.stmtCloses.Load() }

// Begins returns how many transactions were started.
func (e *Engine) Begins() int64 { return e.begins.Load() }

// Commits returns how many transactions committed.
func (e *Engine) Commits() int64 { return e.commits.Load() }

// Rollbacks returns how many transactions rolled back.
func (e *Engine) Rollbacks() int64 { return e.rollbacks.Load() }

// Statements returns a copy of every statement seen, in arrival order.
func (e *Engine) Statements() []Statement {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Statement, len(e.statements))
	copy(out, e.statements)
	return out
}

// StatementsOn returns the statement texts seen by one connection.
func (e *Engine) StatementsOn(conn int64) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, s := range e.statements {
		if s.Conn == conn {
			out = append(out, s.SQL)
		}
	}
	return out
}

// DSNs returns every connection string the engine was opened with.
func (e *Engine) DSNs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.dsns))
	copy(out, e.dsns)
	return out
}

func (e *Engine) record(conn int64, query string) {
	e.mu.Lock()
	e.statements = append(e.statements, Statement{Conn: conn, SQL: query})
	e.mu.Unlock()
}

func (e *Engine) execError(query string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, pe := range e.execErrs {
		if strings.Contains(query, pe.substr) {
			return pe.err
		}
	}
	return nil
}

func (e *Engine) queryResult(query string) (*queryScript, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.probeResponses[query]; ok {
		return &queryScript{columns: []string{"version"}, rows: [][]driver.Value{{v}}}, nil
	}
	if isVersionProbe(query) {
		if e.probeErr != nil {
			return nil, e.probeErr
		}
		return nil, fmt.Errorf("fakedb: probe not scripted: %s", query)
	}
	for i := range e.queryScripts {
		if strings.Contains(query, e.queryScripts[i].substr) {
			return &e.queryScripts[i], nil
		}
	}
	return nil, fmt.Errorf("fakedb: query not scripted: %s", query)
}

func isVersionProbe(query string) bool {
	for _, p := range dbcapabilities.VersionProbes {
		if query == p {
			return true
		}
	}
	return false
}

type connector struct {
	engine *Engine
	dsn    string
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	e := c.engine
	n := e.connects.Add(1)

	e.mu.Lock()
	delay := e.connectDelay
	connectErr := e.connectErr
	failAfter := e.failAfter
	failAfterErr := e.failAfterErr
	e.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if connectErr != nil {
		return nil, connectErr
	}
	if failAfter >= 0 && n > failAfter {
		return nil, failAfterErr
	}
	e.opens.Add(1)
	return &conn{engine: e, id: e.nextConnID.Add(1)}, nil
}

func (c *connector) Driver() driver.Driver { return drv{engine: c.engine, dsn: c.dsn} }

type drv struct {
	engine *Engine
	dsn    string
}

func (d drv) Open(string) (driver.Conn, error) {
	return (&connector{engine: d.engine, dsn: d.dsn}).Connect(context.Background())
}

type conn struct {
	engine *Engine
	id     int64
	closed bool
}

// ID exposes the connection identity to tests via driver.Conn assertions.
func (c *conn) ID() int64 { return c.id }

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.engine.prepares.Add(1)
	return &stmt{conn: c, query: query}, nil
}

func (c *conn) Close() error {
	if c.closed {
		return errors.New("fakedb: connection closed twice")
	}
	c.closed = true
	c.engine.closes.Add(1)
	return nil
}

func (c *conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.engine.mu.Lock()
	beginErr := c.engine.beginErr
	c.engine.mu.Unlock()
	if beginErr != nil {
		return nil, beginErr
	}
	c.engine.begins.Add(1)
	return &tx{engine: c.engine}, nil
}

func (c *conn) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.engine.pings.Add(1)
	c.engine.mu.Lock()
	pingErr := c.engine.pingErr
	c.engine.mu.Unlock()
	return pingErr
}

func (c *conn) ResetSession(ctx context.Context) error {
	c.engine.resets.Add(1)
	return nil
}

func (c *conn) IsValid() bool { return !c.closed }

func (c *conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.engine.record(c.id, query)
	if err := c.engine.execError(query); err != nil {
		return nil, err
	}
	return result{}, nil
}

func (c *conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.engine.record(c.id, query)
	if err := c.engine.execError(query); err != nil {
		return nil, err
	}
	script, err := c.engine.queryResult(query)
	if err != nil {
		return nil, err
	}
	return newRows(script), nil
}

type stmt struct {
	conn  *conn
	query string
}

func (s *stmt) Close() error {
	s.conn.engine.stmtCloses.Add(1)
	return nil
}

func (s *stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

func (s *stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.conn.ExecContext(ctx, s.query, args)
}

func (s *stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.conn.QueryContext(ctx, s.query, args)
}

func namedValues(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, a := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: a}
	}
	return out
}

type tx struct {
	engine *Engine
	done   bool
}

func (t *tx) Commit() error {
	if t.done {
		return errors.New("fakedb: transaction finished twice")
	}
	t.done = true
	t.engine.commits.Add(1)
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return errors.New("fakedb: transaction finished twice")
	}
	t.done = true
	t.engine.rollbacks.Add(1)
	return nil
}

type result struct{}

func (result) LastInsertId() (int64, error) { return 0, nil }
func (result) RowsAffected() (int64, error) { return 1, nil }

type rows struct {
	columns []string
	data    [][]driver.Value
	pos     int
}

func newRows(script *queryScript) *rows {
	return &rows{columns: script.columns, data: script.rows}
}

func (r *rows) Columns() []string { return r.columns }

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}
