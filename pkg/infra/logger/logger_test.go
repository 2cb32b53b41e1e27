package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	l, closeFn := NewLogger("api", Options{Level: "debug"})
	defer closeFn()
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l, closeFn = NewLogger("api", Options{Level: "nonsense"})
	defer closeFn()
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestNewLogger_FileSink(t *testing.T) {
	dir := t.TempDir()
	l, closeFn := NewLogger("worker", Options{Level: "info", FileDir: dir})
	l.WithField("job_id", "j1").Info("dispatched")
	closeFn()

	raw, err := os.ReadFile(filepath.Join(dir, "worker.log"))
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(raw), &entry))
	assert.Equal(t, "dispatched", entry["msg"])
	assert.Equal(t, "j1", entry["job_id"])
	assert.Contains(t, entry, "time")
}

func TestConsoleHook(t *testing.T) {
	var buf bytes.Buffer
	l := Discard()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.AddHook(NewConsoleHook(&buf))

	l.Warn("fail open")

	assert.Contains(t, buf.String(), "fail open")
}
