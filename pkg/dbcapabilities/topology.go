package dbcapabilities

import "strings"

// MemoryKind classifies an in-memory data source by its sharing semantics.
type MemoryKind int

const (
	// MemoryNone means the data source is not in-memory.
	MemoryNone MemoryKind = iota
	// MemoryIsolated means every new physical connection sees an
	// independent empty store. At most one connection may ever exist.
	MemoryIsolated
	// MemoryShared means all connections of the process observe the same
	// in-memory store.
	MemoryShared
)

// String returns a short name for the memory kind.
func (k MemoryKind) String() string {
	switch k {
	case MemoryIsolated:
		return "isolated"
	case MemoryShared:
		return "shared"
	default:
		return "none"
	}
}

// Topology holds the deployment facts of one data source that constrain safe
// connection concurrency. It is derived once from the detected product and
// the connection string and is immutable afterward.
type Topology struct {
	// Embedded reports that the engine runs in-process for this data
	// source: either the product never listens on a network, or a
	// client/server product was configured for its in-process variant.
	Embedded bool

	// EmbeddedVariant reports that Embedded was inferred for a
	// client/server product running its in-process flavor, which is a
	// stricter condition than file-backed embedded operation.
	EmbeddedVariant bool

	// LazyStart reports a LocalDB-style deployment that boots on first
	// connection and may unload between operations.
	LazyStart bool

	// MemoryKind classifies in-memory data sources.
	MemoryKind MemoryKind
}

// connection-string keys inspected for embedded-variant hints, normalized by
// normalizeKey (lower case, separators removed).
const (
	keyServerType    = "servertype"
	keyClientLibrary = "clientlibrary"
	keyDataSource    = "datasource"
	keyDatabase      = "database"
	keyServer        = "server"
	keyHost          = "host"
	keyMode          = "mode"
	keyCache         = "cache"
)

// DeriveTopology infers deployment facts from the detected product and the
// connection string. It is heuristic, not exhaustive validation, and never
// fails: a connection string that cannot be parsed yields the
// no-special-topology default.
func DeriveTopology(product Product, connectionString string) Topology {
	var topo Topology
	if cap, ok := Get(product); ok && cap.AlwaysEmbedded {
		topo.Embedded = true
	}

	cs, err := ParseConnString(connectionString)
	if err != nil {
		// An absent data source keeps embedded semantics; DuckDB opens
		// its process-wide in-memory catalog.
		if product == DuckDB {
			topo.MemoryKind = MemoryShared
		}
		return topo
	}
	lower := strings.ToLower(connectionString)

	switch product {
	case SQLite:
		topo.MemoryKind = sqliteMemoryKind(cs, lower)
	case DuckDB:
		topo.MemoryKind = duckdbMemoryKind(cs)
	case Firebird:
		if firebirdEmbedded(cs) {
			topo.Embedded = true
			topo.EmbeddedVariant = true
		}
	case SQLServer, Unknown:
		topo.LazyStart = strings.Contains(lower, "(localdb)")
	}

	return topo
}

// sqliteMemoryKind classifies a SQLite data source. A literal ":memory:"
// target (or mode=memory parameter) is private to each connection unless the
// shared-cache flag is present. The raw string is consulted as well because
// sqlite URI filenames ("file::memory:?cache=shared") parse as bare paths.
func sqliteMemoryKind(cs *ConnString, lower string) MemoryKind {
	inMemory := cs.Database == ":memory:" ||
		strings.Contains(lower, ":memory:") ||
		strings.Contains(lower, "mode=memory") ||
		paramEquals(cs, keyMode, "memory")
	if !inMemory {
		return MemoryNone
	}
	if strings.Contains(lower, "cache=shared") || paramEquals(cs, keyCache, "shared") {
		return MemoryShared
	}
	return MemoryIsolated
}

// duckdbMemoryKind classifies a DuckDB data source. An empty or ":memory:"
// path opens the process-wide in-memory catalog, which every connection of
// the pool shares.
func duckdbMemoryKind(cs *ConnString) MemoryKind {
	if cs.Database == "" || cs.Database == ":memory:" {
		return MemoryShared
	}
	return MemoryNone
}

// firebirdEmbedded reports whether a Firebird connection string selects the
// in-process engine: an explicit "embedded" server type, an embedded client
// library, or a filesystem database path with no network data source.
func firebirdEmbedded(cs *ConnString) bool {
	if v, ok := cs.Param(keyServerType); ok && strings.Contains(strings.ToLower(v), "embed") {
		return true
	}
	if v, ok := cs.Param(keyClientLibrary); ok && strings.Contains(strings.ToLower(v), "embed") {
		return true
	}

	host := cs.Host
	if host == "" {
		if v, ok := cs.Param(keyDataSource); ok {
			host = v
		} else if v, ok := cs.Param(keyServer); ok {
			host = v
		}
	}
	dbPath := cs.Database
	if dbPath == "" {
		if v, ok := cs.Param(keyDatabase); ok {
			dbPath = v
		}
	}
	// No network data source at all, but a filesystem path to open.
	return host == "" && looksLikeFilePath(dbPath)
}

// looksLikeFilePath reports whether a value names a filesystem location
// rather than a network endpoint or logical database name.
func looksLikeFilePath(s string) bool {
	if s == "" || s == ":memory:" {
		return false
	}
	if strings.ContainsAny(s, `/\`) {
		return true
	}
	// Drive-letter form, e.g. C:\data\app.fdb reduced to "C:".
	if len(s) >= 2 && s[1] == ':' {
		return true
	}
	for _, ext := range []string{".fdb", ".gdb", ".db", ".sqlite", ".sqlite3", ".duckdb", ".ddb"} {
		if strings.HasSuffix(strings.ToLower(s), ext) {
			return true
		}
	}
	return false
}

func paramEquals(cs *ConnString, key, want string) bool {
	v, ok := cs.Param(key)
	return ok && strings.EqualFold(strings.TrimSpace(v), want)
}
