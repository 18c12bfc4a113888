package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusBridge(t *testing.T) {
	c := NewCollector(Options{})
	c.ConnectionCreated()
	c.ConnectionCreated()
	c.ConnectionOpened()
	c.ConnectionReused()
	c.CommandSucceeded(10 * time.Millisecond)

	bridge := NewPrometheusBridge(c, "")
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(bridge))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 26)

	values := make(map[string]float64, len(families))
	for _, mf := range families {
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			values[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			values[mf.GetName()] = m.GetGauge().GetValue()
		}
	}

	assert.Equal(t, 2.0, values["dbconn_connections_created_total"])
	assert.Equal(t, 1.0, values["dbconn_connections_reused_total"])
	assert.Equal(t, 1.0, values["dbconn_connections_open"])
	assert.Equal(t, 0.5, values["dbconn_pool_efficiency_ratio"])
	assert.Equal(t, 1.0, values["dbconn_commands_executed_total"])
	assert.Equal(t, 0.01, values["dbconn_command_duration_avg_seconds"])
}

func TestPrometheusBridgeNamespace(t *testing.T) {
	c := NewCollector(Options{})
	bridge := NewPrometheusBridge(c, "sessiondb")

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(bridge))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	for _, mf := range families {
		assert.Contains(t, mf.GetName(), "sessiondb_")
	}
}
