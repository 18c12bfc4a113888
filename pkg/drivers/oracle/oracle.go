// Package oracle registers the Oracle driver factory, backed by godror.
// godror links against the Oracle client libraries, so binaries that pull
// this package in need CGO and an instant client at runtime.
package oracle

import (
	"database/sql/driver"

	"github.com/godror/godror"
	"github.com/godror/godror/dsn"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.Oracle, Factory{})
}

// Factory opens Oracle connections.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "godror" }

// OpenConnector accepts godror's logfmt form and the classic
// "user/pass@host:port/service" shorthand.
func (Factory) OpenConnector(connString string) (driver.Connector, error) {
	params, err := dsn.Parse(connString)
	if err != nil {
		return nil, err
	}
	return godror.NewConnector(params), nil
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return &Builder{}
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.Oracle }
