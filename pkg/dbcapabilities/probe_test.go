package dbcapabilities_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pengdows/pengdows.crud-sub014/internal/fakedb"
	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

func probeDB(t *testing.T, e *fakedb.Engine) *sql.DB {
	t.Helper()
	connector, err := e.OpenConnector("fake://probe")
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestProbeProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstProbeMatches", func(t *testing.T) {
		e := fakedb.New("fake", fakedb.WithVersionString("PostgreSQL 16.2 on x86_64-pc-linux-gnu"))
		product, version, ok := dbcapabilities.ProbeProduct(ctx, probeDB(t, e))
		assert.True(t, ok)
		assert.Equal(t, dbcapabilities.PostgreSQL, product)
		assert.Equal(t, "PostgreSQL 16.2 on x86_64-pc-linux-gnu", version)
	})

	t.Run("ContinuesPastUnmatchedOutput", func(t *testing.T) {
		// MySQL answers version() with a bare number that names nothing;
		// the version comment a few probes later names the product. The
		// raw string from the first success stays as the version.
		e := fakedb.New("fake",
			fakedb.WithProbeResponse("SELECT version()", "8.4.0"),
			fakedb.WithProbeResponse("SELECT @@version_comment", "MySQL Community Server - GPL"),
		)
		product, version, ok := dbcapabilities.ProbeProduct(ctx, probeDB(t, e))
		assert.True(t, ok)
		assert.Equal(t, dbcapabilities.MySQL, product)
		assert.Equal(t, "8.4.0", version)
	})

	t.Run("SucceedsWithoutMatching", func(t *testing.T) {
		e := fakedb.New("fake", fakedb.WithProbeResponse("SELECT sqlite_version()", "3.45.1"))
		product, version, ok := dbcapabilities.ProbeProduct(ctx, probeDB(t, e))
		assert.False(t, ok)
		assert.Equal(t, dbcapabilities.Unknown, product)
		assert.Equal(t, "3.45.1", version)
	})

	t.Run("AllProbesFail", func(t *testing.T) {
		e := fakedb.New("fake", fakedb.WithProbeError(assert.AnError))
		product, version, ok := dbcapabilities.ProbeProduct(ctx, probeDB(t, e))
		assert.False(t, ok)
		assert.Equal(t, dbcapabilities.Unknown, product)
		assert.Empty(t, version)
	})
}
