// Package mssql registers the SQL Server driver factory, backed by
// microsoft/go-mssqldb. It covers on-prem SQL Server, Azure SQL, and
// LocalDB instances.
package mssql

import (
	"database/sql/driver"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.SQLServer, Factory{})
}

// Factory opens SQL Server connections.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "sqlserver" }

// OpenConnector accepts URL, ADO, and ODBC connection string forms; the
// driver sorts out which one it was handed.
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	return mssql.NewConnector(dsn)
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return dbcapabilities.NewAutoBuilder()
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.SQLServer }
