package connection

import (
	"context"

	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
	"github.com/pengdows/pengdows.crud-sub014/pkg/drivers"
)

// detectProduct identifies the database product, in order of preference:
// live connection metadata, the factory's explicit product hint, the
// factory's driver name, Unknown. The version string captured by the first
// successful probe is returned even when no product matched it.
func detectProduct(ctx context.Context, probe *Handle, f drivers.Factory) (dbcapabilities.Product, string) {
	var version string
	if probe != nil {
		p, v, ok := dbcapabilities.ProbeProduct(ctx, probe.conn)
		version = v
		if ok {
			return p, version
		}
	}
	if hinter, ok := f.(drivers.ProductHinter); ok {
		if p := hinter.ProductHint(); p != dbcapabilities.Unknown {
			return p, version
		}
	}
	if p, ok := dbcapabilities.MatchDriverName(f.Name()); ok {
		return p, version
	}
	return dbcapabilities.Unknown, version
}
