package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.WarnLevel,
		"debug": zapcore.DebugLevel,
		"TRACE": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "info", Console: &buf, NoColor: true})
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("shown", zap.Int("rules", 3))
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, `"rules": 3`)
}

func TestNew_FileCore(t *testing.T) {
	p := filepath.Join(t.TempDir(), "camel-leaked.log")
	log, err := New(Options{Level: "debug", File: p, JSON: true, Console: &bytes.Buffer{}})
	require.NoError(t, err)
	log.Debug("to file", zap.String("k", "v"))
	require.NoError(t, log.Sync())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	line := strings.TrimSpace(string(b))
	assert.Contains(t, line, `"msg":"to file"`)
	assert.Contains(t, line, `"k":"v"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "nope"})
	assert.Error(t, err)
}
