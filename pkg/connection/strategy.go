package connection

import (
	"context"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dialect"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
	"github.com/pengdows/pengdows.crud-sub014/pkg/logger"
)

// Strategy owns the acquire/release contract for one connection mode. A
// strategy is built once, after mode resolution, and holds nothing beyond a
// back-reference to its manager.
type Strategy interface {
	// GetConnection returns a usable handle, never one in a partially
	// open state. Failures are AcquisitionErrors and feed the failure
	// counters.
	GetConnection(ctx context.Context, purpose Purpose, shared bool) (*Handle, error)

	// ReleaseConnection disposes a non-pinned handle. Releasing the
	// pinned handle or nil is a no-op; the call is idempotent.
	ReleaseConnection(h *Handle) error

	// PostInitialize consumes the initialization probe, pinning it for
	// persistent modes or returning it to the pool for ephemeral ones.
	// Ownership of the probe transfers here.
	PostInitialize(ctx context.Context, probe *Handle) error

	// DetectDialect performs one-time dialect detection against whichever
	// connection suits this strategy. (nil, nil) means detection could
	// not proceed and the caller falls back to SQL-92.
	DetectDialect(ctx context.Context, probe *Handle, f drivers.Factory, log *logger.Logger) (dialect.Dialect, *dialect.ServerInfo)
}

func buildStrategy(mode Mode, m *Manager) Strategy {
	switch mode {
	case ModeKeepAlive:
		return &keepAliveStrategy{mgr: m}
	case ModeSingleConnection:
		return &singleConnectionStrategy{mgr: m}
	case ModeSingleWriter:
		return &singleWriterStrategy{mgr: m}
	default:
		return &standardStrategy{mgr: m}
	}
}

// pinProbe makes the probe the manager's persistent handle. The pinned
// connection counts as created once; reuse is counted per acquisition.
func pinProbe(m *Manager, probe *Handle) {
	if probe == nil {
		return
	}
	probe.pinned.Store(true)
	m.pinned.Store(probe)
	m.metrics.ConnectionCreated()
}

// acquirePinned returns the pinned handle, establishing it on first use when
// initialization could not (probe open tolerated to fail for unrecognized
// products). Concurrent first acquisitions race on the pin; losers dispose
// their handle and share the winner's.
func (m *Manager) acquirePinned(ctx context.Context, purpose Purpose) (*Handle, error) {
	if h := m.pinned.Load(); h != nil {
		m.metrics.ConnectionReused()
		return h, nil
	}
	h, err := m.acquireHandle(ctx, false)
	if err != nil {
		return nil, NewAcquisitionError(purpose, err)
	}
	h.pinned.Store(true)
	if !m.pinned.CompareAndSwap(nil, h) {
		h.pinned.Store(false)
		_ = h.forceClose()
		m.metrics.ConnectionReused()
		return m.pinned.Load(), nil
	}
	m.metrics.ConnectionCreated()
	return h, nil
}
