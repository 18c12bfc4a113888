package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Level
	}{
		{name: "debug lower case", in: "debug", want: LevelDebug},
		{name: "info mixed case", in: "Info", want: LevelInfo},
		{name: "warn", in: "WARN", want: LevelWarn},
		{name: "warning alias", in: "warning", want: LevelWarn},
		{name: "error with spaces", in: "  error ", want: LevelError},
		{name: "fatal", in: "fatal", want: LevelFatal},
		{name: "unknown defaults to info", in: "verbose", want: LevelInfo},
		{name: "empty defaults to info", in: "", want: LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
}

func TestSubscribeReceivesEntries(t *testing.T) {
	l := New("test", "0.0.1")
	l.DisableConsoleOutput()

	ch := l.Subscribe()
	l.Infof("connection %s resolved", "abc")

	select {
	case entry := <-ch:
		assert.Equal(t, LevelInfo, entry.Level)
		assert.Equal(t, "connection abc resolved", entry.Message)
	case <-time.After(time.Second):
		t.Fatal("expected a log entry on the subscriber channel")
	}
}

func TestLevelThresholdFiltersEntries(t *testing.T) {
	l := New("test", "0.0.1")
	l.DisableConsoleOutput()
	l.SetLevel(LevelWarn)

	ch := l.Subscribe()
	l.Debugf("dropped")
	l.Infof("dropped too")
	l.Warnf("kept")

	select {
	case entry := <-ch:
		assert.Equal(t, LevelWarn, entry.Level)
		assert.Equal(t, "kept", entry.Message)
	case <-time.After(time.Second):
		t.Fatal("expected the warn entry to pass the threshold")
	}

	select {
	case entry := <-ch:
		t.Fatalf("unexpected extra entry: %+v", entry)
	default:
	}
}

func TestWithFieldsAttachesFields(t *testing.T) {
	l := New("test", "0.0.1")
	l.DisableConsoleOutput()

	ch := l.Subscribe()
	l.WithFields(map[string]string{"mode": "single_writer"}).Info("coerced")

	select {
	case entry := <-ch:
		require.NotNil(t, entry.Fields)
		assert.Equal(t, "single_writer", entry.Fields["mode"])
	case <-time.After(time.Second):
		t.Fatal("expected a log entry on the subscriber channel")
	}
}

func TestNopLoggerDropsEverything(t *testing.T) {
	l := NewNop()
	ch := l.Subscribe()
	l.Errorf("should not appear")

	select {
	case entry := <-ch:
		t.Fatalf("nop logger emitted entry: %+v", entry)
	default:
	}
}
