package connection

import (
	"context"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dialect"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
	"github.com/pengdows/pengdows.crud-sub014/pkg/logger"
)

// singleConnectionStrategy routes every operation over the one pinned
// handle. Isolated in-memory stores and embedded engine variants cannot
// tolerate a second physical connection.
type singleConnectionStrategy struct {
	mgr *Manager
}

func (s *singleConnectionStrategy) GetConnection(ctx context.Context, purpose Purpose, shared bool) (*Handle, error) {
	return s.mgr.acquirePinned(ctx, purpose)
}

func (s *singleConnectionStrategy) ReleaseConnection(h *Handle) error {
	return h.Close()
}

// PostInitialize pins the probe; it serves all subsequent work.
func (s *singleConnectionStrategy) PostInitialize(ctx context.Context, probe *Handle) error {
	pinProbe(s.mgr, probe)
	return nil
}

// DetectDialect uses the pinned handle, or the probe that is about to
// become it.
func (s *singleConnectionStrategy) DetectDialect(ctx context.Context, probe *Handle, f drivers.Factory, log *logger.Logger) (dialect.Dialect, *dialect.ServerInfo) {
	src := s.mgr.pinned.Load()
	if src == nil {
		src = probe
	}
	if src == nil {
		return nil, nil
	}
	return dialect.Detect(ctx, src.conn, f.Name(), log)
}
