package dbcapabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchProductName(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		want     Product
		ok       bool
	}{
		{
			name:     "postgres version string",
			metadata: "PostgreSQL 16.2 on x86_64-pc-linux-gnu, compiled by gcc",
			want:     PostgreSQL,
			ok:       true,
		},
		{
			name:     "cockroach before postgres",
			metadata: "CockroachDB CCL v23.1.11 (PostgreSQL compatible)",
			want:     CockroachDB,
			ok:       true,
		},
		{
			name:     "mariadb before mysql",
			metadata: "10.11.6-MariaDB (compatible with MySQL)",
			want:     MariaDB,
			ok:       true,
		},
		{
			name:     "sql server banner",
			metadata: "Microsoft SQL Server 2022 (RTM) - 16.0.1000.6",
			want:     SQLServer,
			ok:       true,
		},
		{
			name:     "mysql version comment",
			metadata: "MySQL Community Server - GPL",
			want:     MySQL,
			ok:       true,
		},
		{
			name:     "hana probe",
			metadata: "HDB 2.00.076.00",
			want:     HANA,
			ok:       true,
		},
		{
			name:     "bare version number",
			metadata: "8.4.0",
			want:     Unknown,
			ok:       false,
		},
		{
			name:     "empty",
			metadata: "   ",
			want:     Unknown,
			ok:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchProductName(tt.metadata)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestMatchProductNameOrder(t *testing.T) {
	// When metadata carries two recognized tokens, the product earlier in
	// DetectionOrder wins no matter where the tokens sit in the string.
	a, _ := MatchProductName("postgresql wire protocol served by cockroachdb")
	b, _ := MatchProductName("cockroachdb speaking postgresql wire protocol")
	assert.Equal(t, CockroachDB, a)
	assert.Equal(t, CockroachDB, b)
}

func TestMatchDriverName(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		want   Product
		ok     bool
	}{
		{name: "pgx", driver: "pgx/v5", want: PostgreSQL, ok: true},
		{name: "mysql", driver: "go-sql-driver/mysql", want: MySQL, ok: true},
		{name: "mssql", driver: "mssql", want: SQLServer, ok: true},
		{name: "modernc sqlite", driver: "modernc.org/sqlite", want: SQLite, ok: true},
		{name: "godror", driver: "godror", want: Oracle, ok: true},
		{name: "ibm db2", driver: "go_ibm_db", want: DB2, ok: true},
		{name: "hdb", driver: "hdb", want: HANA, ok: true},
		{name: "unrecognized", driver: "fake", want: Unknown, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchDriverName(tt.driver)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestDetectionOrderCoversAllProducts(t *testing.T) {
	assert.Len(t, DetectionOrder, len(All))
	seen := make(map[Product]bool, len(DetectionOrder))
	for _, id := range DetectionOrder {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
		assert.Contains(t, All, id)
	}
}
