package drivers

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
)

// DSNConnector adapts a legacy driver.Driver to the connector interface for
// one fixed connection string.
type DSNConnector struct {
	dsn string
	drv driver.Driver
}

// NewDSNConnector wraps a driver and DSN as a driver.Connector.
func NewDSNConnector(dsn string, drv driver.Driver) *DSNConnector {
	return &DSNConnector{dsn: dsn, drv: drv}
}

// Connect opens a connection. Legacy drivers take no context, so
// cancellation is only honored before the dial starts.
func (c *DSNConnector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.drv.Open(c.dsn)
}

// Driver returns the wrapped driver.
func (c *DSNConnector) Driver() driver.Driver { return c.drv }

// RegisteredConnector builds a connector from a driver that registered
// itself with database/sql under name. A throwaway lazy handle surfaces the
// driver; drivers that implement driver.DriverContext get a native
// connector, the rest are wrapped with a fixed DSN.
func RegisteredConnector(name, dsn string) (driver.Connector, error) {
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("resolve driver %q: %w", name, err)
	}
	drv := db.Driver()
	if err := db.Close(); err != nil {
		return nil, err
	}
	if dc, ok := drv.(driver.DriverContext); ok {
		return dc.OpenConnector(dsn)
	}
	return NewDSNConnector(dsn, drv), nil
}
