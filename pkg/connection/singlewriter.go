package connection

import (
	"context"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dialect"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
	"github.com/pengdows/pengdows.crud-sub014/pkg/logger"
)

// singleWriterStrategy serializes writes over the pinned handle while
// serving reads from ephemeral read-only handles. A read marked shared
// reuses the pinned handle instead, for callers that must observe their own
// uncommitted writes.
type singleWriterStrategy struct {
	mgr *Manager
}

func (s *singleWriterStrategy) GetConnection(ctx context.Context, purpose Purpose, shared bool) (*Handle, error) {
	if purpose == PurposeWrite || shared {
		return s.mgr.acquirePinned(ctx, purpose)
	}
	h, err := s.mgr.acquireHandle(ctx, true)
	if err != nil {
		return nil, NewAcquisitionError(purpose, err)
	}
	s.mgr.metrics.ConnectionCreated()
	return h, nil
}

func (s *singleWriterStrategy) ReleaseConnection(h *Handle) error {
	return h.Close()
}

// PostInitialize pins the probe as the writer.
func (s *singleWriterStrategy) PostInitialize(ctx context.Context, probe *Handle) error {
	pinProbe(s.mgr, probe)
	return nil
}

// DetectDialect uses the pinned handle, or the probe that is about to
// become it.
func (s *singleWriterStrategy) DetectDialect(ctx context.Context, probe *Handle, f drivers.Factory, log *logger.Logger) (dialect.Dialect, *dialect.ServerInfo) {
	src := s.mgr.pinned.Load()
	if src == nil {
		src = probe
	}
	if src == nil {
		return nil, nil
	}
	return dialect.Detect(ctx, src.conn, f.Name(), log)
}
