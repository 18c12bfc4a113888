package connection

import (
	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

// Resolve coerces a requested mode into one the detected engine and topology
// can support. It is pure; the Manager logs when the result differs from the
// request.
func Resolve(requested Mode, product dbcapabilities.Product, topo dbcapabilities.Topology) Mode {
	mode, _ := ResolveExplain(requested, product, topo)
	return mode
}

// ResolveExplain resolves the effective mode and names the rule that changed
// it. The reason is empty when the request was honored as-is.
//
// Rules, first match wins:
//  1. isolated in-memory embedded stores allow exactly one connection
//  2. shared in-memory embedded stores upgrade Standard to SingleWriter
//  3. file-backed embedded engines coerce pooled modes to SingleWriter
//  4. the embedded variant of a client/server engine allows one connection
//  5. lazy-starting servers need a keep-alive sentinel
//  6. server engines pool; Standard and SingleWriter pass, the rest coerce
//  7. unknown products resolve Best to Standard and honor everything else
func ResolveExplain(requested Mode, product dbcapabilities.Product, topo dbcapabilities.Topology) (Mode, string) {
	embedded := topo.Embedded && !topo.EmbeddedVariant

	switch {
	case embedded && topo.MemoryKind == dbcapabilities.MemoryIsolated:
		if requested == ModeSingleConnection {
			return requested, ""
		}
		return ModeSingleConnection, "isolated in-memory store permits a single connection"

	case embedded && topo.MemoryKind == dbcapabilities.MemoryShared:
		if requested == ModeStandard || requested == ModeBest {
			return ModeSingleWriter, "shared in-memory store serializes writers"
		}
		return requested, ""

	case embedded:
		if requested == ModeStandard || requested == ModeKeepAlive || requested == ModeBest {
			return ModeSingleWriter, "file-backed embedded engine serializes writers"
		}
		return requested, ""

	case topo.EmbeddedVariant:
		if requested == ModeSingleConnection {
			return requested, ""
		}
		return ModeSingleConnection, "embedded engine variant permits a single connection"

	case topo.LazyStart:
		if requested == ModeKeepAlive {
			return requested, ""
		}
		return ModeKeepAlive, "lazy-starting server needs a keep-alive sentinel"

	case product != dbcapabilities.Unknown:
		switch requested {
		case ModeStandard, ModeSingleWriter:
			return requested, ""
		case ModeBest:
			return ModeStandard, "server engine defaults to pooled connections"
		default:
			return ModeStandard, "server engine supports Standard and SingleWriter only"
		}

	default:
		if requested == ModeBest {
			return ModeStandard, "unknown product defaults to pooled connections"
		}
		return requested, ""
	}
}
