package dbcapabilities

import (
	"database/sql"
	"strings"
)

// Product is the canonical identifier for a database engine this module can
// manage connections for. Use these constants to look up capability
// information.
type Product string

const (
	PostgreSQL  Product = "postgres"
	CockroachDB Product = "cockroach"
	MySQL       Product = "mysql"
	MariaDB     Product = "mariadb"
	SQLServer   Product = "sqlserver"
	SQLite      Product = "sqlite"
	DuckDB      Product = "duckdb"
	Firebird    Product = "firebird"
	Oracle      Product = "oracle"
	ClickHouse  Product = "clickhouse"
	Snowflake   Product = "snowflake"
	HANA        Product = "hana"
	DB2         Product = "db2"

	// Unknown is the fallback when neither server metadata nor the driver
	// name identifies the engine. It is a valid steady state: an Unknown
	// product runs with the SQL-92 dialect and conservative policies.
	Unknown Product = "unknown"
)

// String returns the canonical id.
func (p Product) String() string { return string(p) }

// Capability describes the connection-policy traits of one engine in a way
// the detector, mode resolver, and dialect layer consume uniformly.
type Capability struct {
	// Human-friendly vendor or product name, e.g., "PostgreSQL".
	Name string `json:"name"`

	// Canonical ID used across the codebase (see Product constants).
	ID Product `json:"id"`

	// AlwaysEmbedded marks engines that run in-process for every
	// deployment (no network listener exists at all), e.g. SQLite.
	AlwaysEmbedded bool `json:"alwaysEmbedded"`

	// HasEmbeddedVariant marks client/server engines that can also run
	// in-process when the connection string asks for it, e.g. Firebird
	// with an embedded client library.
	HasEmbeddedVariant bool `json:"hasEmbeddedVariant,omitempty"`

	// SharedMemoryStore reports that an in-memory data source is shared by
	// all connections of the process rather than private to each physical
	// connection.
	SharedMemoryStore bool `json:"sharedMemoryStore,omitempty"`

	// SupportsLazyStart marks engines with a LocalDB-style deployment that
	// boots lazily on first connection and unloads when idle.
	SupportsLazyStart bool `json:"supportsLazyStart,omitempty"`

	// DefaultPort is used when a network connection string omits the port.
	// Zero for engines with no network listener.
	DefaultPort int `json:"defaultPort,omitempty"`

	// IsolationLevels an explicit BeginTransaction request may name for
	// this engine. sql.LevelDefault is always accepted and is not listed.
	IsolationLevels []sql.IsolationLevel `json:"-"`

	// MetadataTokens are matched case-insensitively against server version
	// metadata. DriverTokens are matched against driver/factory names.
	// Matching order across products is fixed by DetectionOrder, not by
	// this struct.
	MetadataTokens []string `json:"metadataTokens,omitempty"`
	DriverTokens   []string `json:"driverTokens,omitempty"`

	// Common aliases (directory names, drivers, env labels) that map to
	// this product in ParseProduct.
	Aliases []string `json:"aliases,omitempty"`
}

// All is a registry of capabilities keyed by the canonical product ID.
var All = map[Product]Capability{
	PostgreSQL: {
		Name:            "PostgreSQL",
		ID:              PostgreSQL,
		DefaultPort:     5432,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadUncommitted, sql.LevelReadCommitted, sql.LevelRepeatableRead, sql.LevelSerializable},
		MetadataTokens:  []string{"postgresql", "postgres"},
		DriverTokens:    []string{"pgx", "postgres", "pq"},
		Aliases:         []string{"postgresql", "pgsql", "pg"},
	},
	CockroachDB: {
		Name:            "CockroachDB",
		ID:              CockroachDB,
		DefaultPort:     26257,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadCommitted, sql.LevelSerializable},
		MetadataTokens:  []string{"cockroach"},
		DriverTokens:    []string{"cockroach", "crdb"},
		Aliases:         []string{"cockroachdb", "crdb"},
	},
	MySQL: {
		Name:            "MySQL",
		ID:              MySQL,
		DefaultPort:     3306,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadUncommitted, sql.LevelReadCommitted, sql.LevelRepeatableRead, sql.LevelSerializable},
		MetadataTokens:  []string{"mysql"},
		DriverTokens:    []string{"mysql"},
		Aliases:         []string{"aurora-mysql"},
	},
	MariaDB: {
		Name:            "MariaDB",
		ID:              MariaDB,
		DefaultPort:     3306,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadUncommitted, sql.LevelReadCommitted, sql.LevelRepeatableRead, sql.LevelSerializable},
		MetadataTokens:  []string{"mariadb"},
		DriverTokens:    []string{"mariadb"},
	},
	SQLServer: {
		Name:              "Microsoft SQL Server",
		ID:                SQLServer,
		SupportsLazyStart: true,
		DefaultPort:       1433,
		IsolationLevels:   []sql.IsolationLevel{sql.LevelReadUncommitted, sql.LevelReadCommitted, sql.LevelRepeatableRead, sql.LevelSnapshot, sql.LevelSerializable},
		MetadataTokens:    []string{"sql server", "sqlserver", "microsoft sql"},
		DriverTokens:      []string{"sqlserver", "mssql"},
		Aliases:           []string{"mssql", "azure-sql"},
	},
	SQLite: {
		Name:            "SQLite",
		ID:              SQLite,
		AlwaysEmbedded:  true,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadUncommitted, sql.LevelSerializable},
		MetadataTokens:  []string{"sqlite"},
		DriverTokens:    []string{"sqlite"},
		Aliases:         []string{"sqlite3"},
	},
	DuckDB: {
		Name:              "DuckDB",
		ID:                DuckDB,
		AlwaysEmbedded:    true,
		SharedMemoryStore: true,
		IsolationLevels:   []sql.IsolationLevel{sql.LevelSnapshot, sql.LevelSerializable},
		MetadataTokens:    []string{"duckdb"},
		DriverTokens:      []string{"duckdb"},
	},
	Firebird: {
		Name:               "Firebird",
		ID:                 Firebird,
		HasEmbeddedVariant: true,
		DefaultPort:        3050,
		IsolationLevels:    []sql.IsolationLevel{sql.LevelReadCommitted, sql.LevelSnapshot, sql.LevelSerializable},
		MetadataTokens:     []string{"firebird", "interbase"},
		DriverTokens:       []string{"firebird"},
		Aliases:            []string{"firebirdsql"},
	},
	Oracle: {
		Name:            "Oracle Database",
		ID:              Oracle,
		DefaultPort:     1521,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadCommitted, sql.LevelSerializable},
		MetadataTokens:  []string{"oracle"},
		DriverTokens:    []string{"godror", "oracle", "oci"},
	},
	ClickHouse: {
		Name:            "ClickHouse",
		ID:              ClickHouse,
		DefaultPort:     9000,
		IsolationLevels: nil,
		MetadataTokens:  []string{"clickhouse"},
		DriverTokens:    []string{"clickhouse"},
	},
	Snowflake: {
		Name:            "Snowflake",
		ID:              Snowflake,
		DefaultPort:     443,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadCommitted},
		MetadataTokens:  []string{"snowflake"},
		DriverTokens:    []string{"snowflake"},
	},
	HANA: {
		Name:            "SAP HANA",
		ID:              HANA,
		DefaultPort:     30015,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadCommitted, sql.LevelRepeatableRead, sql.LevelSerializable},
		MetadataTokens:  []string{"hana", "hdb"},
		DriverTokens:    []string{"hdb", "hana"},
		Aliases:         []string{"sap-hana", "hdb"},
	},
	DB2: {
		Name:            "IBM Db2",
		ID:              DB2,
		DefaultPort:     50000,
		IsolationLevels: []sql.IsolationLevel{sql.LevelReadUncommitted, sql.LevelReadCommitted, sql.LevelRepeatableRead, sql.LevelSerializable},
		MetadataTokens:  []string{"db2"},
		DriverTokens:    []string{"go_ibm_db", "db2"},
		Aliases:         []string{"ibm-db2"},
	},
}

// nameToProduct is a normalized lookup index from any known name/alias to the
// canonical Product.
var nameToProduct map[string]Product

func init() {
	nameToProduct = make(map[string]Product, len(All)*2)
	for id, cap := range All {
		nameToProduct[strings.ToLower(string(id))] = id
		if cap.Name != "" {
			nameToProduct[strings.ToLower(strings.TrimSpace(cap.Name))] = id
		}
		for _, a := range cap.Aliases {
			if a == "" {
				continue
			}
			nameToProduct[strings.ToLower(a)] = id
		}
	}
}

// ParseProduct attempts to resolve an arbitrary engine name (canonical id,
// alias, or product name) to a canonical Product. Returns false if unknown.
func ParseProduct(name string) (Product, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Unknown, false
	}
	id, ok := nameToProduct[n]
	if !ok {
		return Unknown, false
	}
	return id, ok
}

// Get returns capabilities for the given product and a boolean indicating
// existence. Unknown has no capability entry.
func Get(id Product) (Capability, bool) {
	c, ok := All[id]
	return c, ok
}

// MustGet returns capabilities for the given product and panics if not found.
func MustGet(id Product) Capability {
	c, ok := Get(id)
	if !ok {
		panic("dbcapabilities: unknown product id: " + string(id))
	}
	return c
}

// GetByName returns the Capability by looking up a free-form name (id or alias).
func GetByName(name string) (Capability, bool) {
	if id, ok := ParseProduct(name); ok {
		return Get(id)
	}
	return Capability{}, false
}

// Products returns the list of all known product IDs, excluding Unknown.
func Products() []Product {
	out := make([]Product, 0, len(All))
	for id := range All {
		out = append(out, id)
	}
	return out
}

// DisplayName returns the vendor name for a product, or "Unknown" when the
// product has no capability entry.
func DisplayName(id Product) string {
	if c, ok := Get(id); ok {
		return strings.TrimSpace(c.Name)
	}
	return "Unknown"
}

// IsEmbeddedOnly reports whether the engine never listens on a network.
func IsEmbeddedOnly(id Product) bool {
	c, ok := Get(id)
	return ok && c.AlwaysEmbedded
}

// SupportsIsolation reports whether an explicit isolation level may be
// requested for the product. sql.LevelDefault is always accepted; for an
// unknown product every level is accepted (the engine itself will reject
// what it cannot honor).
func SupportsIsolation(id Product, level sql.IsolationLevel) bool {
	if level == sql.LevelDefault {
		return true
	}
	c, ok := Get(id)
	if !ok {
		return true
	}
	for _, l := range c.IsolationLevels {
		if l == level {
			return true
		}
	}
	return false
}
