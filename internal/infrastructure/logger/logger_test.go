package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := New(&Config{Level: "info", Format: "json", Output: path},
		WithFields(zap.String("service", "groupbuy")))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("hello", zap.Int("n", 1))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "groupbuy", entry["service"])
	assert.EqualValues(t, 1, entry["n"])
}

func TestNew_TeesIntoExtraCore(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	l, err := New(&Config{Level: "warn", Format: "console", Output: "stderr"}, WithCore(core))
	require.NoError(t, err)

	l.Warn("disk almost full")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "disk almost full", recorded.All()[0].Message)
}

func TestNew_BadOutputPath(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
