package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/dialect"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
	"github.com/pengdows/pengdows.crud-sub014/pkg/health"
	"github.com/pengdows/pengdows.crud-sub014/pkg/logger"
	"github.com/pengdows/pengdows.crud-sub014/pkg/metrics"
)

const (
	// DefaultStmtCacheSize bounds each handle's prepared-statement cache.
	DefaultStmtCacheSize = 32

	// defaultMaxIdleConns mirrors database/sql's default so the
	// initialization idle flush can restore it.
	defaultMaxIdleConns = 2

	// healthCheckTimeout bounds the ping issued by HealthCheck.
	healthCheckTimeout = 5 * time.Second
)

// Config carries everything a Manager needs at construction.
type Config struct {
	// ConnectionString is the DSN handed to the factory. Required.
	ConnectionString string

	// Factory opens connectors for the target engine. Either Factory or
	// DriverName is required; Factory wins when both are set.
	Factory drivers.Factory

	// DriverName looks the factory up in the global registry.
	DriverName string

	// Mode is the requested connection mode. The zero value is ModeBest.
	Mode Mode

	// Access restricts transaction kinds. The zero value is
	// AccessReadWrite.
	Access AccessMode

	// SearchPath sets the session's default schema search path on every
	// physical connection. Engines without a session-scoped equivalent
	// ignore it.
	SearchPath string

	// ForcePrepare routes every command through the prepared-statement
	// cache. DisablePrepare turns the cache off. Setting both is a
	// configuration error.
	ForcePrepare   bool
	DisablePrepare bool

	// StmtCacheSize bounds the per-handle statement cache. Zero means
	// DefaultStmtCacheSize.
	StmtCacheSize int

	// AcquireTimeout bounds each connection acquisition. Zero means no
	// bound beyond the caller's context.
	AcquireTimeout time.Duration

	// Pool knobs passed through to database/sql. Zero values keep the
	// database/sql defaults.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// EWMAHalfLife and RingCapacity tune the metrics collector; zero
	// values take the collector defaults.
	EWMAHalfLife int
	RingCapacity int

	// Logger receives lifecycle diagnostics. Nil means silent.
	Logger *logger.Logger
}

// Manager is the aggregate root: it owns the pools, the resolved mode, the
// strategy, the dialect, and the pinned handle of the persistent modes. All
// of that state is fixed during New; afterwards only atomics move.
type Manager struct {
	factory     drivers.Factory
	redactedDSN string
	log         *logger.Logger
	metrics     *metrics.Collector

	product    dbcapabilities.Product
	topology   dbcapabilities.Topology
	requested  Mode
	mode       Mode
	access     AccessMode
	dialect    dialect.Dialect
	serverInfo *dialect.ServerInfo
	strategy   Strategy
	rcsi       bool

	primary *sql.DB
	read    *sql.DB

	pinned           atomic.Pointer[Handle]
	closed           atomic.Bool
	dialectReady     atomic.Bool
	settingsPoisoned atomic.Bool

	forcePrepare   bool
	disablePrepare bool
	stmtCacheSize  int
	acquireTimeout time.Duration
	searchPath     string
}

// New builds a Manager: it opens a probe connection, detects product and
// topology, resolves the mode, builds the strategy, detects the dialect,
// settles the probe's session, and hands the probe to the strategy to pin
// or discard. A probe open failure is fatal only for a recognized product.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.ConnectionString == "" {
		return nil, NewConfigurationError("ConnectionString", "must not be empty")
	}
	if cfg.ForcePrepare && cfg.DisablePrepare {
		return nil, NewConfigurationError("ForcePrepare", "conflicts with DisablePrepare")
	}
	factory := cfg.Factory
	if factory == nil {
		if cfg.DriverName == "" {
			return nil, NewConfigurationError("Factory", "either Factory or DriverName is required")
		}
		f, err := drivers.GetByName(cfg.DriverName)
		if err != nil {
			return nil, NewConfigurationError("DriverName", err.Error())
		}
		factory = f
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	stmtCacheSize := cfg.StmtCacheSize
	if stmtCacheSize <= 0 {
		stmtCacheSize = DefaultStmtCacheSize
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}

	m := &Manager{
		factory:     factory,
		redactedDSN: redactDSN(factory, cfg.ConnectionString),
		log:         log,
		metrics: metrics.NewCollector(metrics.Options{
			HalfLifeSamples: cfg.EWMAHalfLife,
			RingCapacity:    cfg.RingCapacity,
		}),
		requested:      cfg.Mode,
		access:         cfg.Access,
		forcePrepare:   cfg.ForcePrepare,
		disablePrepare: cfg.DisablePrepare,
		stmtCacheSize:  stmtCacheSize,
		acquireTimeout: cfg.AcquireTimeout,
		searchPath:     cfg.SearchPath,
	}

	connector, err := factory.OpenConnector(cfg.ConnectionString)
	if err != nil {
		return nil, NewConfigurationError("ConnectionString", err.Error())
	}
	m.primary = sql.OpenDB(&sessionConnector{inner: connector, mgr: m})
	configurePool(m.primary, cfg, maxIdle)

	probe, probeErr := m.acquireHandle(ctx, false)
	if probeErr != nil {
		if p, _ := detectProduct(ctx, nil, factory); p != dbcapabilities.Unknown {
			_ = m.primary.Close()
			return nil, NewConnectionFailedError(p, m.redactedDSN, probeErr)
		}
		log.Warnf("probe connection failed, continuing with unknown product: %v", probeErr)
	}

	product, version := detectProduct(ctx, probe, factory)
	m.product = product
	m.topology = dbcapabilities.DeriveTopology(product, cfg.ConnectionString)

	mode, reason := ResolveExplain(cfg.Mode, product, m.topology)
	m.mode = mode
	if reason != "" {
		if cfg.Mode == ModeBest {
			log.Debugf("resolved connection mode: requested=%s effective=%s (%s)", cfg.Mode, mode, reason)
		} else {
			log.Warnf("coerced connection mode: requested=%s effective=%s (%s)", cfg.Mode, mode, reason)
		}
	}

	// Embedded engines get one pool: a second connector can mean a second
	// in-process database instance.
	if m.topology.Embedded {
		m.read = m.primary
	} else {
		readConnector, rcErr := factory.OpenConnector(cfg.ConnectionString)
		if rcErr != nil {
			_ = probe.forceClose()
			_ = m.primary.Close()
			return nil, NewConfigurationError("ConnectionString", rcErr.Error())
		}
		m.read = sql.OpenDB(&sessionConnector{inner: readConnector, mgr: m, readOnly: true})
		configurePool(m.read, cfg, maxIdle)
	}

	m.strategy = buildStrategy(mode, m)

	d, info := m.strategy.DetectDialect(ctx, probe, factory, log)
	if d == nil {
		d = dialect.NewSQL92()
		log.Debugf("dialect detection unavailable, using SQL-92 defaults")
	}
	if info == nil {
		info = &dialect.ServerInfo{Product: product, Version: version}
	}
	m.dialect = d
	m.serverInfo = info
	m.dialectReady.Store(true)

	// Physical connections opened before the dialect was known carry no
	// session settings; drop the idle ones so the pool replaces them.
	m.primary.SetMaxIdleConns(0)
	m.primary.SetMaxIdleConns(maxIdle)

	if probe != nil {
		if err := probe.applySettings(ctx, m.sessionSettings(false)); err != nil {
			log.Warnf("session settings failed, disabling for this manager: %v", err)
			m.settingsPoisoned.Store(true)
		}
		m.rcsi = d.IsReadCommittedSnapshotOn(ctx, probe.conn)
	}

	if err := m.strategy.PostInitialize(ctx, probe); err != nil {
		_ = m.Close()
		return nil, err
	}

	log.Infof("connection manager ready: product=%s mode=%s dialect=%s", product, mode, d.Name())
	return m, nil
}

func configurePool(db *sql.DB, cfg Config, maxIdle int) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// redactDSN renders a loggable connection string through the factory's
// builder, falling back to the generic parser. Credentials never survive.
func redactDSN(f drivers.Factory, dsn string) string {
	if b := f.ConnectionStringBuilder(); b != nil {
		if err := b.Parse(dsn); err == nil {
			return b.Redacted()
		}
	}
	if cs, err := dbcapabilities.ParseConnString(dsn); err == nil {
		return cs.Redacted()
	}
	return "(unparseable dsn)"
}

// sessionSettings is the batch applied to new physical connections: the
// dialect's settings plus the configured search path when the engine has a
// statement for it.
func (m *Manager) sessionSettings(readOnly bool) []string {
	settings := m.dialect.SessionSettings(readOnly)
	if m.searchPath != "" {
		if stmt := m.dialect.SearchPathStatement(m.searchPath); stmt != "" {
			settings = append(settings, stmt)
		}
	}
	return settings
}

// acquireHandle checks a dedicated connection out of the pool and wraps it.
// Failures feed the failure counters; callers classify and wrap the error.
func (m *Manager) acquireHandle(ctx context.Context, readOnly bool) (*Handle, error) {
	if m.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.acquireTimeout)
		defer cancel()
	}
	db := m.primary
	if readOnly && m.read != nil {
		db = m.read
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		m.metrics.ConnectionFailed(IsTimeout(err))
		return nil, err
	}
	return newHandle(m, conn, readOnly), nil
}

// GetConnection acquires a handle for the given purpose through the active
// strategy. Under persistent modes this may return the pinned handle.
func (m *Manager) GetConnection(ctx context.Context, purpose Purpose, shared bool) (*Handle, error) {
	if m.closed.Load() {
		return nil, NewInvalidOperationError("GetConnection", "manager is closed")
	}
	return m.strategy.GetConnection(ctx, purpose, shared)
}

// ReleaseConnection returns a handle. Releasing the pinned handle or nil is
// a no-op.
func (m *Manager) ReleaseConnection(h *Handle) error {
	return m.strategy.ReleaseConnection(h)
}

// SetConnectionString always fails: the connection string is fixed at
// construction and immutable afterwards.
func (m *Manager) SetConnectionString(string) error {
	return NewInvalidOperationError("SetConnectionString", "connection string is immutable once set")
}

// observeCommand classifies one command outcome into the disjoint
// failed/timed-out/cancelled buckets. Only successes feed the duration
// statistics.
func (m *Manager) observeCommand(start time.Time, err error) error {
	switch {
	case err == nil:
		m.metrics.CommandSucceeded(time.Since(start))
	case errors.Is(err, context.Canceled):
		m.metrics.CommandCancelled()
	case IsTimeout(err):
		m.metrics.CommandTimedOut()
	default:
		m.metrics.CommandFailed()
	}
	return err
}

// Ping verifies connectivity, preferring the pinned handle since that is
// the connection real work depends on.
func (m *Manager) Ping(ctx context.Context) error {
	if m.closed.Load() {
		return NewInvalidOperationError("Ping", "manager is closed")
	}
	if pinned := m.pinned.Load(); pinned != nil {
		return pinned.conn.PingContext(ctx)
	}
	return m.primary.PingContext(ctx)
}

// HealthCheck returns a check function for a health.Checker. The error
// names the product and mode so a shared checker can attribute it, and a
// manager whose session settings failed to apply reports unhealthy.
func (m *Manager) HealthCheck() health.CheckFunc {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		defer cancel()
		if err := m.Ping(ctx); err != nil {
			return fmt.Errorf("%s (%s) ping: %w", m.product, m.mode, err)
		}
		if m.settingsPoisoned.Load() {
			return fmt.Errorf("%s (%s): session settings disabled after apply failure", m.product, m.mode)
		}
		return nil
	}
}

// Close disposes the pinned handle and both pools. It is idempotent.
func (m *Manager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	if pinned := m.pinned.Load(); pinned != nil {
		errs = append(errs, pinned.forceClose())
	}
	if m.read != nil && m.read != m.primary {
		errs = append(errs, m.read.Close())
	}
	if m.primary != nil {
		errs = append(errs, m.primary.Close())
	}
	return errors.Join(errs...)
}

// Product returns the detected database product.
func (m *Manager) Product() dbcapabilities.Product { return m.product }

// RedactedDSN returns the connection string with sensitive values masked,
// safe for logs and diagnostics.
func (m *Manager) RedactedDSN() string { return m.redactedDSN }

// Topology returns the derived deployment facts.
func (m *Manager) Topology() dbcapabilities.Topology { return m.topology }

// RequestedMode returns the mode asked for at construction.
func (m *Manager) RequestedMode() Mode { return m.requested }

// Mode returns the effective mode after resolution.
func (m *Manager) Mode() Mode { return m.mode }

// Access returns the configured access restriction.
func (m *Manager) Access() AccessMode { return m.access }

// Dialect returns the detected dialect, or the SQL-92 fallback.
func (m *Manager) Dialect() dialect.Dialect { return m.dialect }

// ServerInfo returns what detection learned about the server. Never nil;
// an unrecognized engine reports Unknown with whatever version string the
// probe produced.
func (m *Manager) ServerInfo() *dialect.ServerInfo { return m.serverInfo }

// ReadCommittedSnapshotOn reports the SQL Server RCSI state observed at
// initialization; false for every other engine.
func (m *Manager) ReadCommittedSnapshotOn() bool { return m.rcsi }

// Metrics returns a point-in-time snapshot. Fields are individually
// consistent; the snapshot is not atomic across fields.
func (m *Manager) Metrics() metrics.Snapshot { return m.metrics.Snapshot() }

// Collector exposes the live collector, e.g. for a Prometheus bridge.
func (m *Manager) Collector() *metrics.Collector { return m.metrics }

// CurrentConnections returns the number of handles open right now.
func (m *Manager) CurrentConnections() int64 { return m.metrics.ConnectionsOpen() }

// PeakConnections returns the most handles ever open at once.
func (m *Manager) PeakConnections() int64 { return m.metrics.ConnectionsPeak() }

// ConnectionsCreated returns the total handles created.
func (m *Manager) ConnectionsCreated() int64 { return m.metrics.ConnectionsCreated() }

// ConnectionsReused returns the total pinned-handle reuses.
func (m *Manager) ConnectionsReused() int64 { return m.metrics.ConnectionsReused() }

// ConnectionFailures returns the total failed acquisitions.
func (m *Manager) ConnectionFailures() int64 { return m.metrics.ConnectionFailures() }

// ConnectionTimeouts returns the failed acquisitions that were timeouts.
func (m *Manager) ConnectionTimeouts() int64 { return m.metrics.ConnectionTimeouts() }

// PoolEfficiency returns reused divided by created, 0 before anything has
// been created.
func (m *Manager) PoolEfficiency() float64 { return m.metrics.PoolEfficiency() }
