package connection

import (
	"context"
	"fmt"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dialect"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
	"github.com/pengdows/pengdows.crud-sub014/pkg/logger"
)

// keepAliveStrategy serves fresh pooled handles like standardStrategy but
// pins the probe as a sentinel that is never handed out, keeping
// lazy-starting servers loaded between operations.
type keepAliveStrategy struct {
	mgr *Manager
}

// GetConnection fails fast: the sentinel already proved the engine
// reachable, so a handle that cannot answer a ping is an immediate error,
// not a problem deferred to first use. Partially opened handles are
// disposed before the error propagates.
func (s *keepAliveStrategy) GetConnection(ctx context.Context, purpose Purpose, shared bool) (*Handle, error) {
	h, err := s.mgr.acquireHandle(ctx, purpose == PurposeRead)
	if err != nil {
		return nil, NewAcquisitionError(purpose, err)
	}
	if err := h.conn.PingContext(ctx); err != nil {
		_ = h.forceClose()
		s.mgr.metrics.ConnectionFailed(IsTimeout(err))
		return nil, NewAcquisitionError(purpose, fmt.Errorf("validate fresh connection: %w", err))
	}
	s.mgr.metrics.ConnectionCreated()
	return h, nil
}

func (s *keepAliveStrategy) ReleaseConnection(h *Handle) error {
	return h.Close()
}

// PostInitialize pins the probe as the sentinel.
func (s *keepAliveStrategy) PostInitialize(ctx context.Context, probe *Handle) error {
	pinProbe(s.mgr, probe)
	return nil
}

// DetectDialect uses the sentinel when it is already pinned; otherwise it
// opens a throwaway connection solely for detection and disposes it.
func (s *keepAliveStrategy) DetectDialect(ctx context.Context, probe *Handle, f drivers.Factory, log *logger.Logger) (dialect.Dialect, *dialect.ServerInfo) {
	if pinned := s.mgr.pinned.Load(); pinned != nil {
		return dialect.Detect(ctx, pinned.conn, f.Name(), log)
	}
	h, err := s.mgr.acquireHandle(ctx, false)
	if err != nil {
		log.Debugf("no connection available for dialect detection: %v", err)
		return nil, nil
	}
	defer func() { _ = h.forceClose() }()
	return dialect.Detect(ctx, h.conn, f.Name(), log)
}
