package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Run("ComponentsAndParams", func(t *testing.T) {
		b := &Builder{}
		require.NoError(t, b.Parse("app:s3cret@myorg-acct/analytics/public?warehouse=wh1"))

		for key, want := range map[string]string{
			"user":      "app",
			"password":  "s3cret",
			"account":   "myorg-acct",
			"database":  "analytics",
			"schema":    "public",
			"warehouse": "wh1",
		} {
			got, ok := b.Get(key)
			require.True(t, ok, key)
			assert.Equal(t, want, got, key)
		}

		b.Set("role", "reporting")
		b.Set("client_session_keep_alive", "true")
		dsn := b.String()
		assert.Contains(t, dsn, "role=reporting")
		assert.Contains(t, dsn, "client_session_keep_alive=true")

		got, ok := b.Get("client_session_keep_alive")
		require.True(t, ok)
		assert.Equal(t, "true", got)
	})

	t.Run("Redacted", func(t *testing.T) {
		b := &Builder{}
		require.NoError(t, b.Parse("app:s3cret@myorg-acct/analytics/public?warehouse=wh1"))

		redacted := b.Redacted()
		assert.NotContains(t, redacted, "s3cret")
		assert.Contains(t, redacted, "%2A%2A%2A%2A%2A")
		assert.Contains(t, b.String(), "s3cret")
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		b := &Builder{}
		assert.Error(t, b.Parse("no-account-here"))
	})
}
