package drivers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pengdows/pengdows.crud-sub014/internal/fakedb"
	"github.com/pengdows/pengdows.crud-sub014/pkg/dbcapabilities"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	pg := fakedb.New("pgx")
	lite := fakedb.New("sqlite")

	r.Register(dbcapabilities.PostgreSQL, pg)
	r.Register(dbcapabilities.SQLite, lite)

	t.Run("Get", func(t *testing.T) {
		f, err := r.Get(dbcapabilities.PostgreSQL)
		require.NoError(t, err)
		assert.Equal(t, "pgx", f.Name())

		_, err = r.Get(dbcapabilities.Oracle)
		assert.ErrorIs(t, err, ErrFactoryNotFound)
	})

	t.Run("GetByName", func(t *testing.T) {
		f, err := r.GetByName("postgresql")
		require.NoError(t, err)
		assert.Equal(t, "pgx", f.Name())

		f, err = r.GetByName("sqlite3")
		require.NoError(t, err)
		assert.Equal(t, "sqlite", f.Name())

		// Driver-name tokens work when the name is not a product alias.
		f, err = r.GetByName("pgx/v5")
		require.NoError(t, err)
		assert.Equal(t, "pgx", f.Name())

		_, err = r.GetByName("not-a-database")
		assert.ErrorIs(t, err, ErrFactoryNotFound)
	})

	t.Run("IsRegisteredAndList", func(t *testing.T) {
		assert.True(t, r.IsRegistered(dbcapabilities.SQLite))
		assert.False(t, r.IsRegistered(dbcapabilities.DB2))
		assert.ElementsMatch(t,
			[]dbcapabilities.Product{dbcapabilities.PostgreSQL, dbcapabilities.SQLite},
			r.ListRegistered(),
		)
	})

	t.Run("ReplaceAndUnregister", func(t *testing.T) {
		other := fakedb.New("postgres")
		r.Register(dbcapabilities.PostgreSQL, other)
		f, err := r.Get(dbcapabilities.PostgreSQL)
		require.NoError(t, err)
		assert.Equal(t, "postgres", f.Name())

		r.Unregister(dbcapabilities.PostgreSQL)
		assert.False(t, r.IsRegistered(dbcapabilities.PostgreSQL))
	})
}

func TestRegisteredConnector(t *testing.T) {
	// fakedb connectors come from the engine directly; this exercises the
	// DSN wrapper path with a plain driver.
	e := fakedb.New("fake")
	base, err := e.OpenConnector("fake://one")
	require.NoError(t, err)

	wrapped := NewDSNConnector("fake://one", base.Driver())
	conn, err := wrapped.Connect(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conn)
	require.NoError(t, conn.Close())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = wrapped.Connect(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
