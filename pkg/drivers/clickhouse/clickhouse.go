// Package clickhouse registers the ClickHouse driver factory, backed by
// clickhouse-go's database/sql bindings over the native protocol.
package clickhouse

import (
	"database/sql/driver"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.ClickHouse, Factory{})
}

// Factory opens ClickHouse connections.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "clickhouse" }

// OpenConnector accepts "clickhouse://" and "http(s)://" URL forms.
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	opt, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return clickhouse.Connector(opt), nil
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return dbcapabilities.NewAutoBuilder()
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.ClickHouse }
