// Package dialect supplies per-engine SQL behavior for the connection
// layer: session-settings batches applied to new physical connections,
// session search-path statements, identifier quoting, placeholder style,
// and the one engine-specific feature probe the session layer needs
// (read-committed snapshot on SQL Server). A generic SQL-92 dialect backs
// unknown engines.
package dialect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/logger"
)

// Querier is the single-row query surface dialect probes need. *sql.DB,
// *sql.Conn, and the connection layer's handles all satisfy it.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ServerInfo describes the engine a dialect was detected against.
type ServerInfo struct {
	Product dbcapabilities.Product
	Version string
}

// Dialect is the engine-specific behavior consumed by the connection layer.
// Implementations are stateless and safe for concurrent use.
type Dialect interface {
	// Product is the engine this dialect serves.
	Product() dbcapabilities.Product
	// Name is a short lower-case dialect name for logs.
	Name() string
	// SessionSettings is the statement batch applied once to every new
	// physical connection. The read-only form may add or change
	// statements; an empty batch is valid.
	SessionSettings(readOnly bool) []string
	// SearchPathStatement renders the statement that moves the session's
	// default schema search path, or "" when the engine has no
	// session-scoped equivalent.
	SearchPathStatement(path string) string
	// QuoteIdentifier quotes a single identifier (no dotted paths).
	QuoteIdentifier(name string) string
	// Placeholder renders the 1-based nth statement parameter marker.
	Placeholder(n int) string
	// IsReadCommittedSnapshotOn reports whether the current database has
	// read-committed snapshot semantics. False for every engine but SQL
	// Server, and false when the probe fails.
	IsReadCommittedSnapshotOn(ctx context.Context, q Querier) bool
}

// Detect identifies the engine behind a live connection and returns its
// dialect. Server metadata decides first; the driver name breaks ties when
// the server answers with nothing recognizable; (nil, nil) means detection
// cannot proceed and the caller falls back to SQL-92.
func Detect(ctx context.Context, q Querier, driverName string, log *logger.Logger) (Dialect, *ServerInfo) {
	var version string
	if q != nil {
		product, raw, ok := dbcapabilities.ProbeProduct(ctx, q)
		if ok {
			if log != nil {
				log.Debugf("dialect %s detected from server metadata %q", product, raw)
			}
			return ForProduct(product), &ServerInfo{Product: product, Version: raw}
		}
		version = raw
	}
	if product, ok := dbcapabilities.MatchDriverName(driverName); ok {
		if log != nil {
			log.Debugf("dialect %s detected from driver name %q", product, driverName)
		}
		return ForProduct(product), &ServerInfo{Product: product, Version: version}
	}
	if log != nil {
		log.Debugf("dialect detection failed for driver %q", driverName)
	}
	return nil, nil
}

// ForProduct returns the dialect for a product, or the SQL-92 fallback for
// Unknown and anything unhandled.
func ForProduct(p dbcapabilities.Product) Dialect {
	switch p {
	case dbcapabilities.PostgreSQL:
		return newPostgres()
	case dbcapabilities.CockroachDB:
		return newCockroach()
	case dbcapabilities.MySQL:
		return newMySQL()
	case dbcapabilities.MariaDB:
		return newMariaDB()
	case dbcapabilities.SQLServer:
		return newSQLServer()
	case dbcapabilities.SQLite:
		return newSQLite()
	case dbcapabilities.DuckDB:
		return newDuckDB()
	case dbcapabilities.Firebird:
		return newFirebird()
	case dbcapabilities.Oracle:
		return newOracle()
	case dbcapabilities.ClickHouse:
		return newClickHouse()
	case dbcapabilities.Snowflake:
		return newSnowflake()
	case dbcapabilities.HANA:
		return newHANA()
	case dbcapabilities.DB2:
		return newDB2()
	default:
		return NewSQL92()
	}
}

// base carries the product-independent defaults: ANSI double-quote
// identifiers, '?' placeholders, no session settings, no snapshot probe.
type base struct {
	product dbcapabilities.Product
	name    string
}

func (b base) Product() dbcapabilities.Product { return b.product }

func (b base) Name() string { return b.name }

func (base) SessionSettings(bool) []string { return nil }

func (base) SearchPathStatement(string) string { return "" }

func (base) QuoteIdentifier(name string) string { return quoteANSI(name) }

func (base) Placeholder(int) string { return "?" }

func (base) IsReadCommittedSnapshotOn(context.Context, Querier) bool { return false }

func quoteANSI(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// firstPathElement trims the first comma-separated element of a search path.
// Engines whose session default is a single schema use it.
func firstPathElement(path string) string {
	if i := strings.IndexByte(path, ','); i >= 0 {
		path = path[:i]
	}
	return strings.TrimSpace(path)
}
