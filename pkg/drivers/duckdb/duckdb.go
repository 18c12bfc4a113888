// Package duckdb registers the DuckDB driver factory. DuckDB is in-process
// only; every connection shares the one embedded instance, which the
// connection layer accounts for when it picks a strategy.
package duckdb

import (
	"database/sql/driver"

	duckdb "github.com/marcboeker/go-duckdb/v2"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.DuckDB, Factory{})
}

// Factory opens DuckDB databases, file-backed or in-memory.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "duckdb" }

// OpenConnector accepts a file path or an empty string for an in-memory
// instance.
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	return duckdb.NewConnector(dsn, nil)
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return dbcapabilities.NewAutoBuilder()
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.DuckDB }
