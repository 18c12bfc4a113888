// Package db2 registers the IBM Db2 driver factory, backed by go_ibm_db.
// go_ibm_db wraps the Db2 CLI, so binaries that pull this package in need
// CGO and the IBM client libraries at runtime.
package db2

import (
	"database/sql/driver"

	_ "github.com/ibmdb/go_ibm_db"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.DB2, Factory{})
}

// Factory opens Db2 connections.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "go_ibm_db" }

// OpenConnector accepts the CLI's semicolon keyword form, for example
// "HOSTNAME=db1;PORT=50000;DATABASE=sample;UID=u;PWD=p".
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	return drivers.RegisteredConnector("go_ibm_db", dsn)
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return dbcapabilities.NewKeyValueBuilder()
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.DB2 }
