// Package mysql registers the MySQL/MariaDB driver factory, backed by
// go-sql-driver/mysql.
package mysql

import (
	"database/sql/driver"

	"github.com/go-sql-driver/mysql"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.MySQL, Factory{})
	drivers.Register(dbcapabilities.MariaDB, Factory{})
}

// Factory opens MySQL and MariaDB connections.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "mysql" }

// OpenConnector parses the native "user:pass@tcp(host:port)/db" DSN form
// and returns the driver's connector.
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return mysql.NewConnector(cfg)
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return &Builder{}
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.MySQL }
