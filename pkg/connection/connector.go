package connection

import (
	"context"
	"database/sql/driver"
	"errors"
)

// sessionConnector wraps the factory's connector so the manager's
// session-settings batch runs once on every physical connection, at the
// moment it is dialed. Before the dialect is known the batch is skipped; the
// probe handle is settled explicitly instead, and the manager drops idle
// connections opened in that window.
type sessionConnector struct {
	inner    driver.Connector
	mgr      *Manager
	readOnly bool
}

func (c *sessionConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.inner.Connect(ctx)
	if err != nil || !c.mgr.dialectReady.Load() {
		return conn, err
	}
	if c.mgr.settingsPoisoned.Load() {
		return conn, nil
	}
	settings := c.mgr.sessionSettings(c.readOnly)
	if len(settings) == 0 {
		return conn, nil
	}
	for _, stmt := range settings {
		if err := execOnDriverConn(ctx, conn, stmt); err != nil {
			c.mgr.log.Warnf("session settings failed, disabling for this manager: %v", err)
			c.mgr.settingsPoisoned.Store(true)
			break
		}
	}
	return conn, nil
}

func (c *sessionConnector) Driver() driver.Driver {
	return c.inner.Driver()
}

// execOnDriverConn runs one statement on a raw driver connection, preferring
// the ExecerContext fast path and falling back to prepare/execute for
// drivers that skip it.
func execOnDriverConn(ctx context.Context, conn driver.Conn, query string) error {
	if ec, ok := conn.(driver.ExecerContext); ok {
		_, err := ec.ExecContext(ctx, query, nil)
		if !errors.Is(err, driver.ErrSkip) {
			return err
		}
	}
	var (
		stmt driver.Stmt
		err  error
	)
	if pc, ok := conn.(driver.ConnPrepareContext); ok {
		stmt, err = pc.PrepareContext(ctx, query)
	} else {
		stmt, err = conn.Prepare(query)
	}
	if err != nil {
		return err
	}
	defer stmt.Close()
	if sec, ok := stmt.(driver.StmtExecContext); ok {
		_, err = sec.ExecContext(ctx, nil)
		return err
	}
	_, err = stmt.Exec(nil)
	return err
}
