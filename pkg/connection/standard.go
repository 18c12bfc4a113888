package connection

import (
	"context"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dialect"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
	"github.com/pengdows/pengdows.crud-sub014/pkg/logger"
)

// standardStrategy serves every request with a fresh pooled handle. Reads
// come from the read pool with the read-only settings batch applied.
type standardStrategy struct {
	mgr *Manager
}

func (s *standardStrategy) GetConnection(ctx context.Context, purpose Purpose, shared bool) (*Handle, error) {
	h, err := s.mgr.acquireHandle(ctx, purpose == PurposeRead)
	if err != nil {
		return nil, NewAcquisitionError(purpose, err)
	}
	s.mgr.metrics.ConnectionCreated()
	return h, nil
}

func (s *standardStrategy) ReleaseConnection(h *Handle) error {
	return h.Close()
}

// PostInitialize returns the probe's physical connection to the pool; it
// already carries the session settings.
func (s *standardStrategy) PostInitialize(ctx context.Context, probe *Handle) error {
	return probe.Close()
}

// DetectDialect uses the initialization probe when present. Without one
// there is nothing to detect against.
func (s *standardStrategy) DetectDialect(ctx context.Context, probe *Handle, f drivers.Factory, log *logger.Logger) (dialect.Dialect, *dialect.ServerInfo) {
	if probe == nil {
		return nil, nil
	}
	return dialect.Detect(ctx, probe.conn, f.Name(), log)
}
