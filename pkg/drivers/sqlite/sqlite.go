// Package sqlite registers the SQLite driver factory, backed by the CGO-free
// modernc.org/sqlite port.
package sqlite

import (
	"database/sql/driver"

	_ "modernc.org/sqlite"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.SQLite, Factory{})
}

// Factory opens SQLite databases, file-backed or in-memory.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "sqlite" }

// OpenConnector accepts a file path, ":memory:", or a file: URI.
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	return drivers.RegisteredConnector("sqlite", dsn)
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return dbcapabilities.NewAutoBuilder()
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.SQLite }
