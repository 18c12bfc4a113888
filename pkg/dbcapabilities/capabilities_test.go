package dbcapabilities

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProduct(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Product
		ok    bool
	}{
		{name: "canonical id", input: "postgres", want: PostgreSQL, ok: true},
		{name: "alias", input: "postgresql", want: PostgreSQL, ok: true},
		{name: "short alias", input: "pg", want: PostgreSQL, ok: true},
		{name: "vendor name", input: "Microsoft SQL Server", want: SQLServer, ok: true},
		{name: "mssql alias", input: "mssql", want: SQLServer, ok: true},
		{name: "case and spacing", input: "  CockroachDB  ", want: CockroachDB, ok: true},
		{name: "sqlite3", input: "sqlite3", want: SQLite, ok: true},
		{name: "hdb", input: "hdb", want: HANA, ok: true},
		{name: "unknown", input: "dbase", want: Unknown, ok: false},
		{name: "empty", input: "", want: Unknown, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseProduct(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestGet(t *testing.T) {
	c, ok := Get(DuckDB)
	require.True(t, ok)
	assert.Equal(t, "DuckDB", c.Name)
	assert.True(t, c.AlwaysEmbedded)
	assert.True(t, c.SharedMemoryStore)

	_, ok = Get(Unknown)
	assert.False(t, ok)

	assert.Panics(t, func() { MustGet(Unknown) })
	assert.NotPanics(t, func() { MustGet(Oracle) })
}

func TestGetByName(t *testing.T) {
	c, ok := GetByName("firebirdsql")
	require.True(t, ok)
	assert.Equal(t, Firebird, c.ID)
	assert.True(t, c.HasEmbeddedVariant)

	_, ok = GetByName("no such engine")
	assert.False(t, ok)
}

func TestProducts(t *testing.T) {
	products := Products()
	assert.Len(t, products, len(All))
	assert.NotContains(t, products, Unknown)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "IBM Db2", DisplayName(DB2))
	assert.Equal(t, "Unknown", DisplayName(Unknown))
	assert.Equal(t, "Unknown", DisplayName(Product("nonsense")))
}

func TestIsEmbeddedOnly(t *testing.T) {
	assert.True(t, IsEmbeddedOnly(SQLite))
	assert.True(t, IsEmbeddedOnly(DuckDB))
	assert.False(t, IsEmbeddedOnly(Firebird))
	assert.False(t, IsEmbeddedOnly(PostgreSQL))
	assert.False(t, IsEmbeddedOnly(Unknown))
}

func TestSupportsIsolation(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		level   sql.IsolationLevel
		want    bool
	}{
		{name: "default always accepted", product: Snowflake, level: sql.LevelDefault, want: true},
		{name: "postgres serializable", product: PostgreSQL, level: sql.LevelSerializable, want: true},
		{name: "postgres snapshot rejected", product: PostgreSQL, level: sql.LevelSnapshot, want: false},
		{name: "sqlserver snapshot", product: SQLServer, level: sql.LevelSnapshot, want: true},
		{name: "snowflake read committed only", product: Snowflake, level: sql.LevelSerializable, want: false},
		{name: "clickhouse rejects explicit levels", product: ClickHouse, level: sql.LevelReadCommitted, want: false},
		{name: "unknown accepts anything", product: Unknown, level: sql.LevelLinearizable, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SupportsIsolation(tt.product, tt.level))
		})
	}
}
