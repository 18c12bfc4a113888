// Package firebird registers the Firebird driver factory, backed by the pure
// Go nakagami/firebirdsql wire client.
package firebird

import (
	"database/sql/driver"

	_ "github.com/nakagami/firebirdsql"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

func init() {
	drivers.Register(dbcapabilities.Firebird, Factory{})
}

// Factory opens Firebird connections.
type Factory struct{}

// Name implements drivers.Factory.
func (Factory) Name() string { return "firebirdsql" }

// OpenConnector accepts the driver's "user:pass@host:port/path" form.
func (Factory) OpenConnector(dsn string) (driver.Connector, error) {
	return drivers.RegisteredConnector("firebirdsql", dsn)
}

// ConnectionStringBuilder implements drivers.Factory.
func (Factory) ConnectionStringBuilder() dbcapabilities.ConnStringBuilder {
	return dbcapabilities.NewAutoBuilder()
}

// ProductHint implements drivers.ProductHinter.
func (Factory) ProductHint() dbcapabilities.Product { return dbcapabilities.Firebird }
