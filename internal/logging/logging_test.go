package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevelAndTagsService(t *testing.T) {
	logger := New("api", "debug", "")
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "api", entry["service"])
	require.Equal(t, "hello", entry["msg"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	logger := New("", "verbose", "")
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger := New("api", "info", path)
	logger.Warn("written to disk")

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "written to disk")
}
