// Package snowflake registers the Snowflake driver factory, backed by
// gosnowflake.
package snowflake

import (
	"database/sql/driver"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.Snowflake, Factory{})
}

// Factory opens Snowflake connections.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "snowflake" }

// OpenConnector accepts the "user:pass@account/db/schema?warehouse=wh" form.
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	cfg, err := sf.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return sf.NewConnector(sf.SnowflakeDriver{}, *cfg), nil
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return &Builder{}
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.Snowflake }
