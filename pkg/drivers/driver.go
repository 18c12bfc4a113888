// Package drivers defines the factory contract the connection layer uses to
// open engines, plus a process-wide registry engine packages join through
// their init functions (blank-import activation, the same pattern
// database/sql drivers use).
package drivers

import (
	"database/sql/driver"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// Factory opens connections for one database engine.
type Factory interface {
	// Name is the factory's driver name. It is matched against the driver
	// token tables when server metadata does not identify the product.
	Name() string

	// OpenConnector builds a database/sql connector for a connection
	// string. The connector is handed to sql.OpenDB; no physical
	// connection is made here.
	OpenConnector(dsn string) (driver.Connector, error)

	// ConnectionStringBuilder returns a builder that understands this
	// engine's DSN grammar. Callers fall back to the generic key/value
	// builder when Parse rejects a string.
	ConnectionStringBuilder() dbcapabilities.ConnStringBuilder
}

// ProductHinter is optionally implemented by factories that know their
// product outright. The hint is consulted after server metadata fails to
// identify the engine and before falling back to driver-name matching.
type ProductHinter interface {
	ProductHint() dbcapabilities.Product
}
