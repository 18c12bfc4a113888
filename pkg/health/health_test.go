package health

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker(t *testing.T) {
	pass := func() error { return nil }
	fail := func() error { return errors.New("ping: connection refused") }

	t.Run("EmptyCheckerIsHealthy", func(t *testing.T) {
		c := NewChecker()
		assert.Equal(t, StatusHealthy, c.GetOverallStatus())
	})

	t.Run("AllPassing", func(t *testing.T) {
		c := NewChecker()
		c.RunCheck("db", pass)
		c.RunCheck("cache", pass)

		assert.Equal(t, StatusHealthy, c.GetOverallStatus())
		for _, check := range c.GetAllChecks() {
			assert.Equal(t, StatusHealthy, check.Status)
			assert.Equal(t, "OK", check.Message)
		}
	})

	t.Run("MixedIsDegraded", func(t *testing.T) {
		c := NewChecker()
		c.RunCheck("db", pass)
		c.RunCheck("cache", fail)

		assert.Equal(t, StatusDegraded, c.GetOverallStatus())
	})

	t.Run("AllFailingIsUnhealthy", func(t *testing.T) {
		c := NewChecker()
		c.RunCheck("db", fail)

		assert.Equal(t, StatusUnhealthy, c.GetOverallStatus())
		checks := c.GetAllChecks()
		require.Len(t, checks, 1)
		assert.Equal(t, "ping: connection refused", checks[0].Message)
	})

	t.Run("RerunReplacesResult", func(t *testing.T) {
		c := NewChecker()
		c.RunCheck("db", fail)
		assert.Equal(t, StatusUnhealthy, c.GetOverallStatus())

		c.RunCheck("db", pass)
		assert.Equal(t, StatusHealthy, c.GetOverallStatus())
		assert.Len(t, c.GetAllChecks(), 1)
	})

	t.Run("LastHealthyAdvances", func(t *testing.T) {
		c := NewChecker()
		before := c.GetLastHealthyTime()

		time.Sleep(10 * time.Millisecond)
		c.RunCheck("db", pass)
		assert.True(t, c.GetLastHealthyTime().After(before))

		// A failing check freezes the timestamp.
		frozen := c.GetLastHealthyTime()
		time.Sleep(10 * time.Millisecond)
		c.RunCheck("db", fail)
		assert.Equal(t, frozen, c.GetLastHealthyTime())
	})

	t.Run("StatusString", func(t *testing.T) {
		assert.Equal(t, "healthy", StatusHealthy.String())
		assert.Equal(t, "degraded", StatusDegraded.String())
		assert.Equal(t, "unhealthy", StatusUnhealthy.String())
		assert.Equal(t, "unknown", Status(42).String())
	})
}
