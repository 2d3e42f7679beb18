package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_Constants(t *testing.T) {
	assert.Equal(t, Level(0), LevelDebug)
	assert.Equal(t, Level(1), LevelInfo)
	assert.Equal(t, Level(2), LevelWarn)
	assert.Equal(t, Level(3), LevelError)
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"0", VerbosityQuiet},
		{"1", VerbosityNormal},
		{"2", VerbosityDebug},
		{" 2 ", VerbosityDebug},
		{"", VerbosityNormal},
		{"3", VerbosityNormal},
		{"-1", VerbosityNormal},
		{"loud", VerbosityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseVerbosity(tt.input))
		})
	}
}

func TestVerbosityFromEnv(t *testing.T) {
	t.Setenv(VerbosityEnv, "2")
	assert.Equal(t, VerbosityDebug, VerbosityFromEnv())

	t.Setenv(VerbosityEnv, "garbage")
	assert.Equal(t, VerbosityNormal, VerbosityFromEnv())
}

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, "error", LevelForVerbosity(VerbosityQuiet))
	assert.Equal(t, "info", LevelForVerbosity(VerbosityNormal))
	assert.Equal(t, "debug", LevelForVerbosity(VerbosityDebug))
}

func TestNew(t *testing.T) {
	logger := New("test-service")

	require.NotNil(t, logger)
	assert.Equal(t, "test-service", logger.Name())
}

func TestNewLogger_WritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "unit",
		Level:       "debug",
		Output:      &buf,
	})

	logger.Debug("debug message", "key", "value")
	logger.Info("info message")

	out := buf.String()
	assert.Contains(t, out, "debug message")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "info message")
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "unit", Level: "warn", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "unit", Level: "info", Format: "json", Output: &buf})

	logger.WithField("component", "parser").Info("parsed", "count", 2)

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "parsed", entry["msg"])
	assert.Equal(t, "parser", entry["component"])
}

func TestLogger_AdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:             "info",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	})

	logger.Info("fan out")

	assert.Contains(t, primary.String(), "fan out")
	assert.Contains(t, extra.String(), "fan out")
}

func TestLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "test", Level: "info", Output: &buf})
	debug := logger.WithLevel(LevelDebug)

	assert.Equal(t, "test", debug.Name())
	assert.True(t, debug.IsDebug())
	assert.False(t, logger.IsDebug())

	debug.Debug("child debug")
	logger.Debug("parent debug")
	assert.Contains(t, buf.String(), "child debug")
	assert.NotContains(t, buf.String(), "parent debug")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "info", Output: &buf})

	logger.WithFields(Fields{"b": 2, "a": 1}).Info("fields")

	out := buf.String()
	assert.Contains(t, out, "a=1")
	assert.Contains(t, out, "b=2")
	assert.Less(t, strings.Index(out, "a=1"), strings.Index(out, "b=2"))
}

func TestLogger_OddKeyValues(t *testing.T) {
	logger := Discard()

	// Should not panic with an odd number of key-values
	logger.Info("message", "key1", "value1", "orphan")
	logger.Info("message without key-values")
}

func TestDefault(t *testing.T) {
	original := Default()
	require.NotNil(t, original)

	replacement := Discard()
	SetDefault(replacement)
	defer SetDefault(original)

	assert.Same(t, replacement, Default())
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "debug", Output: &buf})

	timer := logger.StartTimer("parse")
	timer.Checkpoint("tokenized")
	d := timer.Stop()

	assert.GreaterOrEqual(t, d, time.Duration(0))
	assert.False(t, timer.StartTime().IsZero())
	assert.Contains(t, buf.String(), "tokenized")
	assert.Contains(t, buf.String(), "operation completed")

	// A stopped timer does not log again
	buf.Reset()
	timer.StopWithError(errors.New("late"))
	timer.Checkpoint("late")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected charmlog.Level
	}{
		{"debug", charmlog.DebugLevel},
		{"trace", charmlog.DebugLevel},
		{"info", charmlog.InfoLevel},
		{"warn", charmlog.WarnLevel},
		{"warning", charmlog.WarnLevel},
		{"error", charmlog.ErrorLevel},
		{"invalid", charmlog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}
