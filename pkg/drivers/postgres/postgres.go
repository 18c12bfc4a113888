// Package postgres registers the PostgreSQL driver factory, backed by pgx's
// database/sql driver. Importing it for side effects makes "postgres" (and
// its aliases) available to the connection layer.
package postgres

import (
	"database/sql/driver"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.PostgreSQL, Factory{})
	drivers.Register(dbcapabilities.CockroachDB, Factory{})
}

// Factory opens PostgreSQL (and CockroachDB) connections through pgx.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "pgx" }

// OpenConnector parses the DSN with pgx, accepting both URL and keyword
// forms, and returns pgx's stdlib connector.
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	return stdlib.GetConnector(*cfg), nil
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return dbcapabilities.NewAutoBuilder()
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.PostgreSQL }
