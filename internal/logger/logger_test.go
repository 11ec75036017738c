package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndFormat(t *testing.T) {
	l, err := New(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	l, err = New(Config{Level: "nonsense"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestNew_WritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fungarium.log")
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.File = path

	l, err := New(cfg)
	require.NoError(t, err)
	Component(l, "registry").WithField("key", "dna_pass").Info("field saved")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(b))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "registry", entry["component"])
	assert.Equal(t, "dna_pass", entry["key"])
	assert.Equal(t, "field saved", entry["message"])
}
