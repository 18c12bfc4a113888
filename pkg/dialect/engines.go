package dialect

import (
	"strings"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// The engines below stay close to the base behavior: ANSI quoting, '?'
// placeholders, no settings batch. Those with a session-scoped default
// schema override just that one statement; connection-level options for
// all of them travel in the connection string instead.

type duckdb struct{ base }

func newDuckDB() Dialect {
	return duckdb{base{product: dbcapabilities.DuckDB, name: "duckdb"}}
}

// SearchPathStatement uses DuckDB's string-valued search_path setting,
// which takes the comma-separated list whole.
func (duckdb) SearchPathStatement(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return "SET search_path = '" + strings.ReplaceAll(path, "'", "''") + "'"
}

func newFirebird() Dialect {
	return base{product: dbcapabilities.Firebird, name: "firebird"}
}

func newClickHouse() Dialect {
	return base{product: dbcapabilities.ClickHouse, name: "clickhouse"}
}

type snowflake struct{ base }

func newSnowflake() Dialect {
	return snowflake{base{product: dbcapabilities.Snowflake, name: "snowflake"}}
}

func (d snowflake) SearchPathStatement(path string) string {
	schema := firstPathElement(path)
	if schema == "" {
		return ""
	}
	return "USE SCHEMA " + d.QuoteIdentifier(schema)
}

type hana struct{ base }

func newHANA() Dialect {
	return hana{base{product: dbcapabilities.HANA, name: "hana"}}
}

func (d hana) SearchPathStatement(path string) string {
	schema := firstPathElement(path)
	if schema == "" {
		return ""
	}
	return "SET SCHEMA " + d.QuoteIdentifier(schema)
}

type db2 struct{ base }

func newDB2() Dialect {
	return db2{base{product: dbcapabilities.DB2, name: "db2"}}
}

func (d db2) SearchPathStatement(path string) string {
	schema := firstPathElement(path)
	if schema == "" {
		return ""
	}
	return "SET CURRENT SCHEMA " + d.QuoteIdentifier(schema)
}
