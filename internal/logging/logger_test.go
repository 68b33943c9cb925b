package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"trace": TRACE, "DEBUG": DEBUG, "": INFO, "warning": WARN, " error ": ERROR,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("game", &buf, WARN)

	l.Info("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Warn("queue depth %d", 7)
	out := buf.String()
	assert.Contains(t, out, "queue depth 7")
	assert.Contains(t, out, "component=game")
	assert.Contains(t, out, "level=warning")
}

func TestDefaultLoggerSwap(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDefaultLogger(NewWriterLogger("test", &buf, DEBUG))
	defer SetDefaultLogger(prev)

	Debug("drain %s", "ok")
	assert.Contains(t, buf.String(), "drain ok")
}

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_DIR", dir)

	l, err := NewLogger("build")
	require.NoError(t, err)
	l.Debug("committed %d", 3)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "build_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "committed 3")
}

func TestManagerReusesLoggers(t *testing.T) {
	m := &LoggerManager{loggers: make(map[string]*Logger)}
	a, err := m.GetLogger("api")
	require.NoError(t, err)
	b, err := m.GetLogger("api")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, []string{"api"}, m.ListComponents())

	require.NoError(t, m.SetLogLevel("api", ERROR, ERROR))
	assert.Error(t, m.SetLogLevel("missing", ERROR, ERROR))
	require.NoError(t, m.CloseAll())
	assert.Empty(t, m.ListComponents())
}
